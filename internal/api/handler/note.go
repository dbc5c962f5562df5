package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mfield/notebox/internal/service"
)

// NoteHandler handles note CRUD endpoints.
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler creates a new note handler.
// Parameters:
//   - notes: note service instance.
// Returns:
//   - *NoteHandler: initialized handler.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type noteRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// CreateNote handles POST /api/v1/notes.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	note, err := h.notes.Create(c.Request.Context(), req.Title, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, note)
}

// ListNotes handles GET /api/v1/notes.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *NoteHandler) ListNotes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notes, err := h.notes.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes, "count": len(notes)})
}

// GetNote handles GET /api/v1/notes/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *NoteHandler) GetNote(c *gin.Context) {
	note, err := h.notes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// UpdateNote handles PUT /api/v1/notes/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	note, err := h.notes.Update(c.Request.Context(), c.Param("id"), req.Title, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// DeleteNote handles DELETE /api/v1/notes/:id. Refused with 409 while
// an archive build for the note is in progress.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
