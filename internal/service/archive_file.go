package service

import (
	"context"
	"fmt"
	"io"

	"github.com/mfield/notebox/internal/domain"
	"github.com/mfield/notebox/internal/storage"
)

// ArchiveFileService serves and deletes produced archive objects from
// an owner's archive namespace.
type ArchiveFileService struct {
	notes NotesRepo
	store storage.ObjectStore
}

// NewArchiveFileService creates a new archive file service.
// Parameters:
//   - notes: note repository, used for owner existence checks.
//   - store: object storage holding archive namespaces.
// Returns:
//   - *ArchiveFileService: initialized service.
func NewArchiveFileService(notes NotesRepo, store storage.ObjectStore) *ArchiveFileService {
	return &ArchiveFileService{notes: notes, store: store}
}

// Fetch streams a finished archive.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning note ID.
//   - jobID: archive job ID, which is also the object key.
// Returns:
//   - io.ReadCloser: archive content; caller closes.
//   - error: ErrNoteNotFound or ErrArchiveNotFound on absence (an
//     archive not yet produced reads as absent).
func (s *ArchiveFileService) Fetch(ctx context.Context, ownerID, jobID string) (io.ReadCloser, error) {
	if err := s.locate(ctx, ownerID, jobID); err != nil {
		return nil, err
	}
	body, err := s.store.Download(ctx, domain.ArchiveNamespace(ownerID), jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to download archive: %w", err)
	}
	return body, nil
}

// Delete removes a finished archive object. The status record stays;
// it is history, not the artifact.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning note ID.
//   - jobID: archive job ID.
// Returns:
//   - error: ErrNoteNotFound or ErrArchiveNotFound on absence,
//     other errors on failure.
func (s *ArchiveFileService) Delete(ctx context.Context, ownerID, jobID string) error {
	if err := s.locate(ctx, ownerID, jobID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, domain.ArchiveNamespace(ownerID), jobID); err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}
	return nil
}

// locate verifies owner, archive namespace and archive object
func (s *ArchiveFileService) locate(ctx context.Context, ownerID, jobID string) error {
	exists, err := s.notes.Exists(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to check note existence: %w", err)
	}
	if !exists {
		return ErrNoteNotFound
	}

	ns := domain.ArchiveNamespace(ownerID)
	nsExists, err := s.store.NamespaceExists(ctx, ns)
	if err != nil {
		return fmt.Errorf("failed to check archive namespace: %w", err)
	}
	if !nsExists {
		return ErrArchiveNotFound
	}

	objExists, err := s.store.Exists(ctx, ns, jobID)
	if err != nil {
		return fmt.Errorf("failed to check archive existence: %w", err)
	}
	if !objExists {
		return ErrArchiveNotFound
	}
	return nil
}
