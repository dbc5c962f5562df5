package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/mfield/notebox/internal/domain"
	"github.com/mfield/notebox/internal/logger"
	"github.com/mfield/notebox/internal/queue"
	"github.com/mfield/notebox/internal/service"
	"github.com/mfield/notebox/internal/storage"
)

// Worker consumes archive requests and drives each job through its
// status lifecycle: InProgress, then Completed or Failed. Delivery is
// at-least-once, so every step tolerates running again for the same
// job; the terminal state is the same either way.
type Worker struct {
	jobs    service.StatusStore
	store   storage.ObjectStore
	queue   queue.Queue
	builder *service.ArchiveBuilder
	batch   int32
}

// Config holds worker configuration.
type Config struct {
	BatchSize int32
}

// New creates a new archive worker.
// Parameters:
//   - jobs: archive job status store.
//   - store: object storage.
//   - q: archive request queue.
//   - builder: archive builder.
//   - cfg: batch settings.
// Returns:
//   - *Worker: initialized worker.
func New(jobs service.StatusStore, store storage.ObjectStore, q queue.Queue, builder *service.ArchiveBuilder, cfg *Config) *Worker {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 1
	}
	return &Worker{
		jobs:    jobs,
		store:   store,
		queue:   q,
		builder: builder,
		batch:   batch,
	}
}

// Run receives and processes messages until ctx is cancelled. Each
// delivered message is processed in its own goroutine and acknowledged
// after ProcessOne returns, success or not; there is no broker-level
// retry.
// Parameters:
//   - ctx: context; cancellation stops the loop.
// Returns:
//   - error: ctx.Err() once cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.queue.EnsureQueue(ctx); err != nil {
		return err
	}

	logger.CtxInfo(ctx, "Archive worker started, batch size %d", w.batch)

	for {
		messages, err := w.queue.Receive(ctx, w.batch)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.CtxError(ctx, "Failed to receive messages: %v", err)
			continue
		}

		var wg sync.WaitGroup
		for _, msg := range messages {
			wg.Add(1)
			go func(msg queue.Message) {
				defer wg.Done()
				w.ProcessOne(ctx, msg.Request)
				if err := w.queue.Delete(ctx, msg.Handle); err != nil {
					logger.CtxError(ctx, "Failed to acknowledge message for job %s: %v", msg.Request.JobID, err)
				}
			}(msg)
		}
		wg.Wait()
	}
}

// ProcessOne runs a single archive job to a terminal state. Faults
// never propagate: everything after the InProgress write is recorded
// in the status record and swallowed, because the worker has no caller
// to report to.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: the dequeued archive request.
func (w *Worker) ProcessOne(ctx context.Context, req domain.ArchiveRequest) {
	ctx = logger.SetJobID(logger.SetOwnerID(ctx, req.OwnerID), req.JobID)
	logger.CtxInfo(ctx, "Processing archive request")

	// Upsert, not create: a redelivered message finds the record
	// already past Queued and simply rewrites it.
	if err := w.setState(ctx, req, domain.JobStateInProgress, req.Detail()); err != nil {
		logger.CtxError(ctx, "Failed to write InProgress record: %v", err)
		return
	}

	srcExists, err := w.store.NamespaceExists(ctx, req.OwnerID)
	if err != nil {
		w.fail(ctx, req, err)
		return
	}
	if !srcExists {
		// Note deleted between dispatch and processing. Terminal Failed
		// record so the job never reads as stuck.
		logger.CtxWarn(ctx, "Source namespace %s missing", req.OwnerID)
		w.failf(ctx, req, "attachment container %s no longer exists", req.OwnerID)
		return
	}

	destNS := domain.ArchiveNamespace(req.OwnerID)
	if err := w.store.EnsureNamespace(ctx, destNS); err != nil {
		w.fail(ctx, req, err)
		return
	}

	if err := w.builder.Build(ctx, req.OwnerID, req.JobID, destNS); err != nil {
		w.fail(ctx, req, err)
		return
	}

	if err := w.setState(ctx, req, domain.JobStateCompleted, req.Detail()); err != nil {
		logger.CtxError(ctx, "Failed to write Completed record: %v", err)
		return
	}
	logger.CtxInfo(ctx, "Archive request completed")
}

// setState writes a full-replace status record for the job
func (w *Worker) setState(ctx context.Context, req domain.ArchiveRequest, state domain.JobState, details string) error {
	return w.jobs.Save(ctx, &domain.ArchiveJob{
		OwnerID: req.OwnerID,
		JobID:   req.JobID,
		State:   state,
		Details: details,
	})
}

// fail records a terminal Failed state with the fault's top-level message
func (w *Worker) fail(ctx context.Context, req domain.ArchiveRequest, cause error) {
	logger.CtxError(ctx, "Archive request failed: %v", cause)
	w.failf(ctx, req, "%s: %v", req.Detail(), cause)
}

func (w *Worker) failf(ctx context.Context, req domain.ArchiveRequest, format string, args ...interface{}) {
	if err := w.setState(ctx, req, domain.JobStateFailed, fmt.Sprintf(format, args...)); err != nil {
		logger.CtxError(ctx, "Failed to write Failed record: %v", err)
	}
}
