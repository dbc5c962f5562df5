package repository

import (
	"context"

	"github.com/mfield/notebox/internal/domain"
	"gorm.io/gorm"
)

// NoteRepository handles note data operations.
type NoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new NoteRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *NoteRepository: repository instance bound to db.
func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a new note record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - note: note record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// GetByID retrieves a note by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: note ID.
// Returns:
//   - *domain.Note: note record if found.
//   - error: gorm.ErrRecordNotFound if absent, other errors on failure.
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	var note domain.Note
	if err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// Exists checks whether a note with the given ID exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: note ID.
// Returns:
//   - bool: true if a record exists.
//   - error: non-nil if the lookup fails.
func (r *NoteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Note{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves notes ordered by creation time, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Note: matching note records.
//   - error: non-nil if the query fails.
func (r *NoteRepository) List(ctx context.Context, limit, offset int) ([]domain.Note, error) {
	var notes []domain.Note
	if err := r.db.WithContext(ctx).
		Limit(limit).
		Offset(offset).
		Order("created_at DESC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// Update updates an existing note record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - note: note record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *NoteRepository) Update(ctx context.Context, note *domain.Note) error {
	return r.db.WithContext(ctx).Save(note).Error
}

// Delete removes a note by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: note ID to delete.
// Returns:
//   - error: non-nil if the delete fails.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Note{}, "id = ?", id).Error
}

// Count returns the total number of notes.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of note records.
//   - error: non-nil if the query fails.
func (r *NoteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Note{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
