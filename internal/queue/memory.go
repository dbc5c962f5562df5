package queue

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mfield/notebox/internal/domain"
)

// MemoryQueue is a channel-backed Queue for local runs and tests.
// Messages are considered in-flight after Receive until Delete is
// called; Redeliver puts an unacknowledged message back, which tests
// use to exercise at-least-once semantics.
type MemoryQueue struct {
	ch chan Message

	mu       sync.Mutex
	inflight map[string]domain.ArchiveRequest
}

// NewMemoryQueue creates an in-memory queue with the given buffer size.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{
		ch:       make(chan Message, size),
		inflight: make(map[string]domain.ArchiveRequest),
	}
}

// EnsureQueue is a no-op for the in-memory driver
func (q *MemoryQueue) EnsureQueue(ctx context.Context) error {
	return nil
}

// Publish enqueues one archive request
func (q *MemoryQueue) Publish(ctx context.Context, req domain.ArchiveRequest) error {
	msg := Message{Request: req, Handle: uuid.New().String()}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive waits for one message or ctx cancellation
func (q *MemoryQueue) Receive(ctx context.Context, max int32) ([]Message, error) {
	select {
	case msg := <-q.ch:
		q.mu.Lock()
		q.inflight[msg.Handle] = msg.Request
		q.mu.Unlock()
		return []Message{msg}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Delete acknowledges a delivered message
func (q *MemoryQueue) Delete(ctx context.Context, handle string) error {
	q.mu.Lock()
	delete(q.inflight, handle)
	q.mu.Unlock()
	return nil
}

// Redeliver requeues an in-flight message under a fresh handle.
func (q *MemoryQueue) Redeliver(handle string) bool {
	q.mu.Lock()
	req, ok := q.inflight[handle]
	if ok {
		delete(q.inflight, handle)
	}
	q.mu.Unlock()
	if !ok {
		return false
	}
	q.ch <- Message{Request: req, Handle: uuid.New().String()}
	return true
}

// Len returns the number of queued (not in-flight) messages.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}
