package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mfield/notebox/internal/service"
)

// AttachmentHandler handles attachment endpoints.
type AttachmentHandler struct {
	attachments *service.AttachmentService
}

// NewAttachmentHandler creates a new attachment handler.
// Parameters:
//   - attachments: attachment service instance.
// Returns:
//   - *AttachmentHandler: initialized handler.
func NewAttachmentHandler(attachments *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload handles POST /api/v1/notes/:id/attachments. Expects a
// multipart form with a "file" part; the file name becomes the object
// key.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AttachmentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file: " + err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open file: " + err.Error()})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	err = h.attachments.Upload(
		c.Request.Context(),
		c.Param("id"),
		fileHeader.Filename,
		file,
		fileHeader.Size,
		contentType,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"key":  fileHeader.Filename,
		"size": fileHeader.Size,
	})
}

// List handles GET /api/v1/notes/:id/attachments.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AttachmentHandler) List(c *gin.Context) {
	objects, err := h.attachments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	type attachment struct {
		Key  string `json:"key"`
		Size int64  `json:"size"`
	}
	out := make([]attachment, 0, len(objects))
	for _, obj := range objects {
		out = append(out, attachment{Key: obj.Key, Size: obj.Size})
	}

	c.JSON(http.StatusOK, gin.H{"attachments": out, "count": len(out)})
}

// Download handles GET /api/v1/notes/:id/attachments/:key.
// Parameters:
//   - c: Gin request context.
// Returns: none (streams the attachment).
func (h *AttachmentHandler) Download(c *gin.Context) {
	body, err := h.attachments.Download(c.Request.Context(), c.Param("id"), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", `attachment; filename="`+c.Param("key")+`"`)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, body)
}

// Delete handles DELETE /api/v1/notes/:id/attachments/:key.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes status).
func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.attachments.Delete(c.Request.Context(), c.Param("id"), c.Param("key")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
