package queue

import (
	"context"

	"github.com/mfield/notebox/internal/domain"
)

// Message is one delivered archive request plus the broker handle
// needed to acknowledge it.
type Message struct {
	Request domain.ArchiveRequest
	Handle  string
}

// Queue defines the interface for the archive request queue. Delivery
// is at-least-once: consumers must tolerate the same request arriving
// more than once.
type Queue interface {
	// EnsureQueue creates the queue if it does not exist
	EnsureQueue(ctx context.Context) error

	// Publish enqueues one archive request
	Publish(ctx context.Context, req domain.ArchiveRequest) error

	// Receive waits for up to max messages, honoring ctx cancellation
	Receive(ctx context.Context, max int32) ([]Message, error)

	// Delete acknowledges a delivered message so it is not redelivered
	Delete(ctx context.Context, handle string) error
}
