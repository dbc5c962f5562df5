package service

import (
	"context"
	"fmt"
	"io"

	"github.com/mfield/notebox/internal/storage"
)

// AttachmentService handles attachment upload/download against a
// note's primary object namespace.
type AttachmentService struct {
	notes NotesRepo
	store storage.ObjectStore
}

// NewAttachmentService creates a new attachment service.
// Parameters:
//   - notes: note repository, used for owner existence checks.
//   - store: object storage.
// Returns:
//   - *AttachmentService: initialized service.
func NewAttachmentService(notes NotesRepo, store storage.ObjectStore) *AttachmentService {
	return &AttachmentService{notes: notes, store: store}
}

// ownerExists maps a missing owner to ErrNoteNotFound
func (s *AttachmentService) ownerExists(ctx context.Context, ownerID string) error {
	exists, err := s.notes.Exists(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to check note existence: %w", err)
	}
	if !exists {
		return ErrNoteNotFound
	}
	return nil
}

// Upload stores one attachment in the note's namespace, creating the
// namespace on first use.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning note ID.
//   - key: attachment file name, used verbatim as the object key.
//   - reader: attachment content.
//   - size: content length in bytes.
//   - contentType: attachment media type.
// Returns:
//   - error: ErrNoteNotFound if the note is absent, other errors on failure.
func (s *AttachmentService) Upload(ctx context.Context, ownerID, key string, reader io.Reader, size int64, contentType string) error {
	if err := s.ownerExists(ctx, ownerID); err != nil {
		return err
	}
	if err := s.store.EnsureNamespace(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to ensure namespace: %w", err)
	}
	if err := s.store.Upload(ctx, ownerID, key, reader, size, contentType); err != nil {
		return fmt.Errorf("failed to upload attachment: %w", err)
	}
	return nil
}

// Download streams one attachment.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning note ID.
//   - key: attachment file name.
// Returns:
//   - io.ReadCloser: attachment content; caller closes.
//   - error: ErrNoteNotFound or ErrAttachmentNotFound on absence.
func (s *AttachmentService) Download(ctx context.Context, ownerID, key string) (io.ReadCloser, error) {
	if err := s.ownerExists(ctx, ownerID); err != nil {
		return nil, err
	}
	if err := s.exists(ctx, ownerID, key); err != nil {
		return nil, err
	}
	body, err := s.store.Download(ctx, ownerID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	return body, nil
}

// List enumerates a note's attachments. A note that never had an
// attachment uploaded has no namespace yet; that reads as zero
// attachments, not an error.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning note ID.
// Returns:
//   - []storage.ObjectInfo: attachment metadata.
//   - error: ErrNoteNotFound if the note is absent, other errors on failure.
func (s *AttachmentService) List(ctx context.Context, ownerID string) ([]storage.ObjectInfo, error) {
	if err := s.ownerExists(ctx, ownerID); err != nil {
		return nil, err
	}
	nsExists, err := s.store.NamespaceExists(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check namespace: %w", err)
	}
	if !nsExists {
		return []storage.ObjectInfo{}, nil
	}
	objects, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return objects, nil
}

// Delete removes one attachment.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning note ID.
//   - key: attachment file name.
// Returns:
//   - error: ErrNoteNotFound or ErrAttachmentNotFound on absence,
//     other errors on failure.
func (s *AttachmentService) Delete(ctx context.Context, ownerID, key string) error {
	if err := s.ownerExists(ctx, ownerID); err != nil {
		return err
	}
	if err := s.exists(ctx, ownerID, key); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, ownerID, key); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

// exists maps a missing object to ErrAttachmentNotFound
func (s *AttachmentService) exists(ctx context.Context, ownerID, key string) error {
	nsExists, err := s.store.NamespaceExists(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to check namespace: %w", err)
	}
	if !nsExists {
		return ErrAttachmentNotFound
	}
	objExists, err := s.store.Exists(ctx, ownerID, key)
	if err != nil {
		return fmt.Errorf("failed to check attachment existence: %w", err)
	}
	if !objExists {
		return ErrAttachmentNotFound
	}
	return nil
}
