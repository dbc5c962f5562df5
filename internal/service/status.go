package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfield/notebox/internal/domain"
	"gorm.io/gorm"
)

// ArchiveStatusService is the read-only query surface over status
// records. It never mutates state; a result is a snapshot that may
// trail concurrent worker writes.
type ArchiveStatusService struct {
	notes NotesRepo
	jobs  StatusStore
}

// NewArchiveStatusService creates a new status query service.
// Parameters:
//   - notes: note repository, used for owner existence checks.
//   - jobs: archive job status store.
// Returns:
//   - *ArchiveStatusService: initialized service.
func NewArchiveStatusService(notes NotesRepo, jobs StatusStore) *ArchiveStatusService {
	return &ArchiveStatusService{notes: notes, jobs: jobs}
}

// ownerExists maps a missing owner to ErrNoteNotFound
func (s *ArchiveStatusService) ownerExists(ctx context.Context, ownerID string) error {
	exists, err := s.notes.Exists(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to check note existence: %w", err)
	}
	if !exists {
		return ErrNoteNotFound
	}
	return nil
}

// GetOne retrieves a single status record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning note ID.
//   - jobID: archive job ID.
// Returns:
//   - *domain.ArchiveJob: record if found.
//   - error: ErrNoteNotFound or ErrJobNotFound on absence.
func (s *ArchiveStatusService) GetOne(ctx context.Context, ownerID, jobID string) (*domain.ArchiveJob, error) {
	if err := s.ownerExists(ctx, ownerID); err != nil {
		return nil, err
	}
	job, err := s.jobs.Get(ctx, ownerID, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get status record: %w", err)
	}
	return job, nil
}

// GetAll retrieves every status record for an owner. An owner that
// exists but never requested an archive gets ErrJobNotFound, not an
// empty list; "nothing to report" is signalled distinctly.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning note ID.
// Returns:
//   - []domain.ArchiveJob: records, newest first.
//   - error: ErrNoteNotFound or ErrJobNotFound on absence.
func (s *ArchiveStatusService) GetAll(ctx context.Context, ownerID string) ([]domain.ArchiveJob, error) {
	if err := s.ownerExists(ctx, ownerID); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status records: %w", err)
	}
	if len(jobs) == 0 {
		return nil, ErrJobNotFound
	}
	return jobs, nil
}
