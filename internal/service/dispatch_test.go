package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mfield/notebox/internal/domain"
	"github.com/mfield/notebox/internal/queue"
)

func TestRequestArchiveUnknownOwner(t *testing.T) {
	status := newFakeStatus()
	q := queue.NewMemoryQueue(4)
	d := NewArchiveDispatcher(newFakeNotes(), status, q)

	_, err := d.RequestArchive(context.Background(), "ghost")
	if !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}

	// No side effects: no status record, no message
	if status.saves != 0 {
		t.Errorf("expected no status writes, got %d", status.saves)
	}
	if q.Len() != 0 {
		t.Errorf("expected no published messages, got %d", q.Len())
	}
}

func TestRequestArchiveQueuesJob(t *testing.T) {
	ctx := context.Background()
	status := newFakeStatus()
	q := queue.NewMemoryQueue(4)
	d := NewArchiveDispatcher(newFakeNotes("note-42"), status, q)

	ticket, err := d.RequestArchive(ctx, "note-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasSuffix(ticket.JobID, ".zip") {
		t.Errorf("job id %q does not carry the .zip suffix", ticket.JobID)
	}
	if !strings.Contains(ticket.StatusURL, ticket.JobID) || !strings.Contains(ticket.ArchiveURL, ticket.JobID) {
		t.Errorf("ticket URLs do not reference job id %q: %+v", ticket.JobID, ticket)
	}

	// Record exists in Queued before any worker runs
	job, err := status.Get(ctx, "note-42", ticket.JobID)
	if err != nil {
		t.Fatalf("expected a status record: %v", err)
	}
	if job.State != domain.JobStateQueued {
		t.Errorf("state = %s, want %s", job.State, domain.JobStateQueued)
	}

	// Exactly one message, correlated by owner and job id
	msgs, err := q.Receive(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Request.OwnerID != "note-42" || msgs[0].Request.JobID != ticket.JobID {
		t.Errorf("envelope = %+v, want owner note-42 job %s", msgs[0].Request, ticket.JobID)
	}
}

func TestRequestArchiveDistinctJobIDs(t *testing.T) {
	ctx := context.Background()
	d := NewArchiveDispatcher(newFakeNotes("n1"), newFakeStatus(), queue.NewMemoryQueue(4))

	first, err := d.RequestArchive(ctx, "n1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.RequestArchive(ctx, "n1")
	if err != nil {
		t.Fatal(err)
	}
	if first.JobID == second.JobID {
		t.Errorf("two requests minted the same job id %q", first.JobID)
	}
}
