package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mfield/notebox/internal/domain"
	"github.com/mfield/notebox/internal/logger"
	"github.com/mfield/notebox/internal/storage"
	"gorm.io/gorm"
)

// NoteService handles note CRUD and owns the deletion protocol that
// spans the relational store, both object namespaces and the status
// table.
type NoteService struct {
	notes    NotesRepo
	jobs     StatusStore
	store    storage.ObjectStore
	maxNotes int64
}

// NoteConfig holds configuration for the note service.
type NoteConfig struct {
	MaxCount int64
}

// NewNoteService creates a new note service.
// Parameters:
//   - notes: note repository.
//   - jobs: archive job status store.
//   - store: object storage for attachment namespaces.
//   - cfg: note limits.
// Returns:
//   - *NoteService: initialized service.
func NewNoteService(notes NotesRepo, jobs StatusStore, store storage.ObjectStore, cfg *NoteConfig) *NoteService {
	return &NoteService{
		notes:    notes,
		jobs:     jobs,
		store:    store,
		maxNotes: cfg.MaxCount,
	}
}

// Create inserts a new note, enforcing the configured note limit.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - title: note title, required.
//   - body: note body.
// Returns:
//   - *domain.Note: created note.
//   - error: ErrNoteLimitReached when at capacity, other errors on failure.
func (s *NoteService) Create(ctx context.Context, title, body string) (*domain.Note, error) {
	if s.maxNotes > 0 {
		count, err := s.notes.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count notes: %w", err)
		}
		if count >= s.maxNotes {
			return nil, ErrNoteLimitReached
		}
	}

	note := &domain.Note{
		ID:    uuid.New().String(),
		Title: title,
		Body:  body,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// Get retrieves a note by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: note ID.
// Returns:
//   - *domain.Note: note if found.
//   - error: ErrNoteNotFound if absent, other errors on failure.
func (s *NoteService) Get(ctx context.Context, id string) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// List retrieves notes with pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Note: note records.
//   - error: non-nil if the query fails.
func (s *NoteService) List(ctx context.Context, limit, offset int) ([]domain.Note, error) {
	return s.notes.List(ctx, limit, offset)
}

// Update replaces a note's title and body.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: note ID.
//   - title: new title.
//   - body: new body.
// Returns:
//   - *domain.Note: updated note.
//   - error: ErrNoteNotFound if absent, other errors on failure.
func (s *NoteService) Update(ctx context.Context, id, title, body string) (*domain.Note, error) {
	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	note.Title = title
	note.Body = body
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

// Delete removes a note together with its attachment namespace, its
// archive namespace and all status records. Refuses while any archive
// build for the note is in progress.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: note ID.
// Returns:
//   - error: ErrNoteNotFound if absent, ErrArchiveInProgress if a build
//     is running, other errors on failure.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	exists, err := s.notes.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check note existence: %w", err)
	}
	if !exists {
		return ErrNoteNotFound
	}

	busy, err := s.jobs.AnyInState(ctx, id, domain.JobStateInProgress)
	if err != nil {
		return fmt.Errorf("failed to check archive jobs: %w", err)
	}
	if busy {
		return ErrArchiveInProgress
	}

	for _, ns := range []string{id, domain.ArchiveNamespace(id)} {
		nsExists, err := s.store.NamespaceExists(ctx, ns)
		if err != nil {
			return fmt.Errorf("failed to check namespace %s: %w", ns, err)
		}
		if !nsExists {
			continue
		}
		if err := s.store.DeleteNamespace(ctx, ns); err != nil {
			return fmt.Errorf("failed to delete namespace %s: %w", ns, err)
		}
	}

	if err := s.jobs.DeleteByOwner(ctx, id); err != nil {
		return fmt.Errorf("failed to delete status records: %w", err)
	}

	if err := s.notes.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	logger.CtxInfo(ctx, "Deleted note %s with namespaces and status records", id)
	return nil
}
