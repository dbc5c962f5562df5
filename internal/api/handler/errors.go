package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mfield/notebox/internal/service"
)

// respondError maps service errors onto the API's error taxonomy:
// expected absences become 404, conflicts 409, anything else 500 with
// the top-level message only.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound),
		errors.Is(err, service.ErrAttachmentNotFound),
		errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, service.ErrArchiveNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrArchiveInProgress),
		errors.Is(err, service.ErrNoteLimitReached):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
