package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mfield/notebox/internal/logger"
	"github.com/mfield/notebox/internal/storage"
)

// ArchiveContentType is the media type of produced archives.
const ArchiveContentType = "application/zip"

// ArchiveBuilder streams every object in a source namespace into a
// single zip and publishes it to a destination namespace. The zip
// writer feeds the upload through a pipe, so the archive is compressed
// and transmitted without buffering the whole result.
type ArchiveBuilder struct {
	store storage.ObjectStore
}

// NewArchiveBuilder creates a new archive builder.
// Parameters:
//   - store: object storage holding source objects and receiving the archive.
// Returns:
//   - *ArchiveBuilder: initialized builder.
func NewArchiveBuilder(store storage.ObjectStore) *ArchiveBuilder {
	return &ArchiveBuilder{store: store}
}

// Build assembles the archive. Entries are written strictly one at a
// time; the listing is a snapshot, objects added to the source
// namespace afterwards may or may not appear. An empty source
// namespace produces a valid zero-entry archive.
// Parameters:
//   - ctx: context; cancellation aborts the build between entries.
//   - sourceNS: namespace whose objects become entries.
//   - destKey: object key of the produced archive (the job id).
//   - destNS: namespace receiving the archive.
// Returns:
//   - error: non-nil on any I/O fault partway through.
func (b *ArchiveBuilder) Build(ctx context.Context, sourceNS, destKey, destNS string) error {
	start := time.Now()

	objects, err := b.store.List(ctx, sourceNS)
	if err != nil {
		return fmt.Errorf("failed to list source namespace %s: %w", sourceNS, err)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(b.writeEntries(ctx, pw, sourceNS, objects))
	}()

	uploadErr := b.store.Upload(ctx, destNS, destKey, pr, -1, ArchiveContentType)
	// Unblock the writer goroutine if the upload died mid-stream.
	pr.CloseWithError(uploadErr)
	if uploadErr != nil {
		return fmt.Errorf("failed to build archive %s: %w", destKey, uploadErr)
	}

	logger.With(logger.Fields{
		logger.FieldCount:      len(objects),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(ctx, "Built archive %s/%s", destNS, destKey)

	return nil
}

// writeEntries copies each source object into its own zip entry,
// closing the archive when done. Entry names are the object keys,
// verbatim.
func (b *ArchiveBuilder) writeEntries(ctx context.Context, pw *io.PipeWriter, sourceNS string, objects []storage.ObjectInfo) error {
	zw := zip.NewWriter(pw)

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, err := zw.Create(obj.Key)
		if err != nil {
			return fmt.Errorf("failed to create entry %s: %w", obj.Key, err)
		}

		body, err := b.store.Download(ctx, sourceNS, obj.Key)
		if err != nil {
			return fmt.Errorf("failed to download %s/%s: %w", sourceNS, obj.Key, err)
		}
		_, err = io.Copy(entry, body)
		body.Close()
		if err != nil {
			return fmt.Errorf("failed to copy %s into archive: %w", obj.Key, err)
		}
	}

	// Flushes the central directory; without it the zip is unreadable.
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}
