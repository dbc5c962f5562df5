package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mfield/notebox/internal/api/handler"
	"github.com/mfield/notebox/internal/api/middleware"
	"github.com/mfield/notebox/internal/config"
	"github.com/mfield/notebox/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	notes *service.NoteService,
	attachments *service.AttachmentService,
	dispatcher *service.ArchiveDispatcher,
	status *service.ArchiveStatusService,
	files *service.ArchiveFileService,
	cfg *config.ServerConfig,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	noteHandler := handler.NewNoteHandler(notes)
	attachmentHandler := handler.NewAttachmentHandler(attachments)
	archiveHandler := handler.NewArchiveHandler(dispatcher, status, files)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Notes
		v1.POST("/notes", noteHandler.CreateNote)
		v1.GET("/notes", noteHandler.ListNotes)
		v1.GET("/notes/:id", noteHandler.GetNote)
		v1.PUT("/notes/:id", noteHandler.UpdateNote)
		v1.DELETE("/notes/:id", noteHandler.DeleteNote)

		// Attachments
		v1.POST("/notes/:id/attachments", attachmentHandler.Upload)
		v1.GET("/notes/:id/attachments", attachmentHandler.List)
		v1.GET("/notes/:id/attachments/:key", attachmentHandler.Download)
		v1.DELETE("/notes/:id/attachments/:key", attachmentHandler.Delete)

		// Archives
		v1.POST("/notes/:id/archives", archiveHandler.Request)
		v1.GET("/notes/:id/archives/jobs", archiveHandler.ListStatuses)
		v1.GET("/notes/:id/archives/:jobId/status", archiveHandler.GetStatus)
		v1.GET("/notes/:id/archives/:jobId", archiveHandler.Download)
		v1.DELETE("/notes/:id/archives/:jobId", archiveHandler.Delete)
	}

	return r
}
