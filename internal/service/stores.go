package service

import (
	"context"

	"github.com/mfield/notebox/internal/domain"
)

// NotesRepo is the relational note store as the services see it.
// Satisfied by repository.NoteRepository.
type NotesRepo interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// StatusStore is the per-owner status record table as the archive
// pipeline sees it. Satisfied by repository.ArchiveJobRepository.
// Absent records surface as gorm.ErrRecordNotFound from Get.
type StatusStore interface {
	Save(ctx context.Context, job *domain.ArchiveJob) error
	Get(ctx context.Context, ownerID, jobID string) (*domain.ArchiveJob, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.ArchiveJob, error)
	AnyInState(ctx context.Context, ownerID string, state domain.JobState) (bool, error)
	DeleteByOwner(ctx context.Context, ownerID string) error
	Delete(ctx context.Context, ownerID, jobID string) error
}
