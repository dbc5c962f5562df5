package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mfield/notebox/internal/domain"
	"github.com/mfield/notebox/internal/logger"
	"github.com/mfield/notebox/internal/queue"
)

// ArchiveTicket is what a successful archive request returns: the
// minted job id plus the two URLs the client will use afterwards.
type ArchiveTicket struct {
	JobID      string `json:"zipFileId"`
	StatusURL  string `json:"statusUrl"`
	ArchiveURL string `json:"archiveUrl"`
}

// ArchiveDispatcher is the API-side intake for archive jobs. It mints
// the job id, writes the initial Queued record and publishes the work
// request — in that order, so a consumer never sees a message without
// a status record.
type ArchiveDispatcher struct {
	notes NotesRepo
	jobs  StatusStore
	queue queue.Queue
}

// NewArchiveDispatcher creates a new dispatcher.
// Parameters:
//   - notes: note repository, used for owner existence checks.
//   - jobs: archive job status store.
//   - q: archive request queue.
// Returns:
//   - *ArchiveDispatcher: initialized dispatcher.
func NewArchiveDispatcher(notes NotesRepo, jobs StatusStore, q queue.Queue) *ArchiveDispatcher {
	return &ArchiveDispatcher{notes: notes, jobs: jobs, queue: q}
}

// RequestArchive enqueues an archive build for all of a note's
// attachments. Accepted semantics: it returns as soon as the request
// is queued, without waiting for the build.
//
// If the status write succeeds but publication fails, a Queued record
// is left behind with no worker invocation. That gap is accepted; the
// client re-requests and gets a fresh job id.
//
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: note whose attachments should be archived.
// Returns:
//   - *ArchiveTicket: job id and polling/download URLs.
//   - error: ErrNoteNotFound for an unknown owner, other errors on failure.
func (d *ArchiveDispatcher) RequestArchive(ctx context.Context, ownerID string) (*ArchiveTicket, error) {
	exists, err := d.notes.Exists(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check note existence: %w", err)
	}
	if !exists {
		return nil, ErrNoteNotFound
	}

	if err := d.queue.EnsureQueue(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure queue: %w", err)
	}

	jobID := uuid.New().String() + ".zip"
	req := domain.ArchiveRequest{OwnerID: ownerID, JobID: jobID}

	// Status record first, then publish: ordering matters so the worker
	// always finds a record to advance.
	job := &domain.ArchiveJob{
		OwnerID: ownerID,
		JobID:   jobID,
		State:   domain.JobStateQueued,
		Details: req.Detail(),
	}
	if err := d.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to write status record: %w", err)
	}

	if err := d.queue.Publish(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to publish archive request: %w", err)
	}

	logger.CtxInfo(ctx, "Queued archive job %s for note %s", jobID, ownerID)

	return &ArchiveTicket{
		JobID:      jobID,
		StatusURL:  fmt.Sprintf("/api/v1/notes/%s/archives/%s/status", ownerID, jobID),
		ArchiveURL: fmt.Sprintf("/api/v1/notes/%s/archives/%s", ownerID, jobID),
	}, nil
}
