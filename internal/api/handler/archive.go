package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mfield/notebox/internal/service"
)

// ArchiveHandler handles archive request, status polling and download
// endpoints.
type ArchiveHandler struct {
	dispatcher *service.ArchiveDispatcher
	status     *service.ArchiveStatusService
	files      *service.ArchiveFileService
}

// NewArchiveHandler creates a new archive handler.
// Parameters:
//   - dispatcher: archive job dispatcher.
//   - status: status query service.
//   - files: archive file service.
// Returns:
//   - *ArchiveHandler: initialized handler.
func NewArchiveHandler(
	dispatcher *service.ArchiveDispatcher,
	status *service.ArchiveStatusService,
	files *service.ArchiveFileService,
) *ArchiveHandler {
	return &ArchiveHandler{
		dispatcher: dispatcher,
		status:     status,
		files:      files,
	}
}

// Request handles POST /api/v1/notes/:id/archives. Responds 202
// Accepted with a Location header pointing at the eventual archive
// download; the build itself happens out of process.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ArchiveHandler) Request(c *gin.Context) {
	ticket, err := h.dispatcher.RequestArchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", ticket.ArchiveURL)
	c.JSON(http.StatusAccepted, ticket)
}

// GetStatus handles GET /api/v1/notes/:id/archives/:jobId/status.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ArchiveHandler) GetStatus(c *gin.Context) {
	job, err := h.status.GetOne(c.Request.Context(), c.Param("id"), c.Param("jobId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListStatuses handles GET /api/v1/notes/:id/archives/jobs. An owner
// with no status records at all gets 404, not an empty list.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ArchiveHandler) ListStatuses(c *gin.Context) {
	jobs, err := h.status.GetAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// Download handles GET /api/v1/notes/:id/archives/:jobId. Returns 404
// until the worker has produced the archive.
// Parameters:
//   - c: Gin request context.
// Returns: none (streams the archive).
func (h *ArchiveHandler) Download(c *gin.Context) {
	body, err := h.files.Fetch(c.Request.Context(), c.Param("id"), c.Param("jobId"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Type", service.ArchiveContentType)
	c.Header("Content-Disposition", `attachment; filename="`+c.Param("jobId")+`"`)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, body)
}

// Delete handles DELETE /api/v1/notes/:id/archives/:jobId.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes status).
func (h *ArchiveHandler) Delete(c *gin.Context) {
	if err := h.files.Delete(c.Request.Context(), c.Param("id"), c.Param("jobId")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
