package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfield/notebox/internal/api"
	"github.com/mfield/notebox/internal/config"
	"github.com/mfield/notebox/internal/logger"
	"github.com/mfield/notebox/internal/queue"
	"github.com/mfield/notebox/internal/repository"
	"github.com/mfield/notebox/internal/service"
	"github.com/mfield/notebox/internal/storage"
)

func main() {
	// Initialize logger first
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	noteRepo := repository.NewNoteRepository(db)
	jobRepo := repository.NewArchiveJobRepository(db)

	// Initialize object storage
	objectStore, err := storage.NewStore(cfg.Storage.Driver, &storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Region:    cfg.Storage.Region,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	// Initialize queue
	archiveQueue, err := queue.NewQueue(cfg.Queue.Driver, &queue.SQSConfig{
		Endpoint:    cfg.Queue.Endpoint,
		Name:        cfg.Queue.Name,
		Region:      cfg.Queue.Region,
		AccessKey:   cfg.Queue.AccessKey,
		SecretKey:   cfg.Queue.SecretKey,
		WaitSeconds: cfg.Queue.WaitSeconds,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize queue")
	}

	// Initialize services
	noteService := service.NewNoteService(noteRepo, jobRepo, objectStore, &service.NoteConfig{
		MaxCount: cfg.Notes.MaxCount,
	})
	attachmentService := service.NewAttachmentService(noteRepo, objectStore)
	dispatcher := service.NewArchiveDispatcher(noteRepo, jobRepo, archiveQueue)
	statusService := service.NewArchiveStatusService(noteRepo, jobRepo)
	fileService := service.NewArchiveFileService(noteRepo, objectStore)

	// Setup router
	router := api.SetupRouter(noteService, attachmentService, dispatcher, statusService, fileService, &cfg.Server)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
