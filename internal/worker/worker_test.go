package worker

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mfield/notebox/internal/domain"
	"github.com/mfield/notebox/internal/queue"
	"github.com/mfield/notebox/internal/service"
	"github.com/mfield/notebox/internal/storage"
	"gorm.io/gorm"
)

// memStatus is an in-memory StatusStore recording the sequence of
// states written for each job.
type memStatus struct {
	mu      sync.Mutex
	records map[string]domain.ArchiveJob
	history []domain.JobState
}

func newMemStatus() *memStatus {
	return &memStatus{records: make(map[string]domain.ArchiveJob)}
}

func (m *memStatus) key(ownerID, jobID string) string { return ownerID + "/" + jobID }

func (m *memStatus) Save(ctx context.Context, job *domain.ArchiveJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[m.key(job.OwnerID, job.JobID)] = *job
	m.history = append(m.history, job.State)
	return nil
}

func (m *memStatus) Get(ctx context.Context, ownerID, jobID string) (*domain.ArchiveJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[m.key(ownerID, jobID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

func (m *memStatus) ListByOwner(ctx context.Context, ownerID string) ([]domain.ArchiveJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ArchiveJob
	for _, job := range m.records {
		if job.OwnerID == ownerID {
			out = append(out, job)
		}
	}
	return out, nil
}

func (m *memStatus) AnyInState(ctx context.Context, ownerID string, state domain.JobState) (bool, error) {
	jobs, _ := m.ListByOwner(ctx, ownerID)
	for _, job := range jobs {
		if job.State == state {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStatus) DeleteByOwner(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, job := range m.records {
		if job.OwnerID == ownerID {
			delete(m.records, k)
		}
	}
	return nil
}

func (m *memStatus) Delete(ctx context.Context, ownerID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, m.key(ownerID, jobID))
	return nil
}

// brokenDownloads wraps an ObjectStore and fails every Download,
// simulating an I/O fault mid-build.
type brokenDownloads struct {
	storage.ObjectStore
}

func (b brokenDownloads) Download(ctx context.Context, namespace, key string) (io.ReadCloser, error) {
	return nil, errors.New("connection reset")
}

func newWorker(status *memStatus, store storage.ObjectStore) *Worker {
	return New(status, store, queue.NewMemoryQueue(4), service.NewArchiveBuilder(store), &Config{BatchSize: 1})
}

func seedSource(t *testing.T, store *storage.MemoryStore, owner string, files map[string]string) {
	t.Helper()
	ctx := context.Background()
	if err := store.EnsureNamespace(ctx, owner); err != nil {
		t.Fatal(err)
	}
	for key, data := range files {
		if err := store.Upload(ctx, owner, key, strings.NewReader(data), int64(len(data)), "application/octet-stream"); err != nil {
			t.Fatal(err)
		}
	}
}

func readArchive(t *testing.T, store *storage.MemoryStore, owner, jobID string) *zip.Reader {
	t.Helper()
	body, err := store.Download(context.Background(), domain.ArchiveNamespace(owner), jobID)
	if err != nil {
		t.Fatalf("archive object missing: %v", err)
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("archive is not a readable zip: %v", err)
	}
	return zr
}

func TestProcessOneCompletes(t *testing.T) {
	ctx := context.Background()
	status := newMemStatus()
	store := storage.NewMemoryStore()
	seedSource(t, store, "note-42", map[string]string{
		"a.png": "0123456789",
		"b.png": "abcdefghijklmnopqrst",
	})

	w := newWorker(status, store)
	w.ProcessOne(ctx, domain.ArchiveRequest{OwnerID: "note-42", JobID: "X.zip"})

	job, err := status.Get(ctx, "note-42", "X.zip")
	if err != nil {
		t.Fatalf("expected a status record: %v", err)
	}
	if job.State != domain.JobStateCompleted {
		t.Fatalf("state = %s, want %s (details: %s)", job.State, domain.JobStateCompleted, job.Details)
	}

	// InProgress strictly before the terminal write
	if len(status.history) != 2 || status.history[0] != domain.JobStateInProgress {
		t.Errorf("state history = %v, want [InProgress Completed]", status.history)
	}

	zr := readArchive(t, store, "note-42", "X.zip")
	if len(zr.File) != 2 {
		t.Errorf("expected 2 entries, got %d", len(zr.File))
	}
}

func TestProcessOneMissingSourceWritesFailed(t *testing.T) {
	ctx := context.Background()
	status := newMemStatus()
	store := storage.NewMemoryStore()

	w := newWorker(status, store)
	w.ProcessOne(ctx, domain.ArchiveRequest{OwnerID: "gone", JobID: "X.zip"})

	job, err := status.Get(ctx, "gone", "X.zip")
	if err != nil {
		t.Fatalf("expected a terminal status record: %v", err)
	}
	if job.State != domain.JobStateFailed {
		t.Errorf("state = %s, want %s", job.State, domain.JobStateFailed)
	}
	if !strings.Contains(job.Details, "gone") {
		t.Errorf("details %q do not name the missing container", job.Details)
	}
}

func TestProcessOneBuildFaultWritesFailed(t *testing.T) {
	ctx := context.Background()
	status := newMemStatus()
	store := storage.NewMemoryStore()
	seedSource(t, store, "n1", map[string]string{"a.txt": "data"})

	w := newWorker(status, brokenDownloads{store})
	w.ProcessOne(ctx, domain.ArchiveRequest{OwnerID: "n1", JobID: "X.zip"})

	job, err := status.Get(ctx, "n1", "X.zip")
	if err != nil {
		t.Fatal(err)
	}
	if job.State != domain.JobStateFailed {
		t.Errorf("state = %s, want %s", job.State, domain.JobStateFailed)
	}
	if !strings.Contains(job.Details, "X.zip") || !strings.Contains(job.Details, "n1") {
		t.Errorf("failure details %q do not embed job and owner ids", job.Details)
	}
}

func TestProcessOneRedelivery(t *testing.T) {
	// At-least-once delivery: a second invocation for the same job must
	// land on the same terminal state and an equivalent archive.
	ctx := context.Background()
	status := newMemStatus()
	store := storage.NewMemoryStore()
	seedSource(t, store, "n1", map[string]string{"a.txt": "hello"})

	w := newWorker(status, store)
	req := domain.ArchiveRequest{OwnerID: "n1", JobID: "X.zip"}
	w.ProcessOne(ctx, req)
	w.ProcessOne(ctx, req)

	job, err := status.Get(ctx, "n1", "X.zip")
	if err != nil {
		t.Fatal(err)
	}
	if job.State != domain.JobStateCompleted {
		t.Fatalf("state after redelivery = %s, want %s", job.State, domain.JobStateCompleted)
	}

	zr := readArchive(t, store, "n1", "X.zip")
	if len(zr.File) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(zr.File))
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != "hello" {
		t.Errorf("entry content = %q, want %q", got, "hello")
	}
}

func TestRunProcessesQueuedMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status := newMemStatus()
	store := storage.NewMemoryStore()
	seedSource(t, store, "n1", map[string]string{"a.txt": "data"})

	q := queue.NewMemoryQueue(4)
	w := New(status, store, q, service.NewArchiveBuilder(store), &Config{BatchSize: 1})

	if err := q.Publish(ctx, domain.ArchiveRequest{OwnerID: "n1", JobID: "X.zip"}); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Poll until the job reaches a terminal state, then stop the loop
	for {
		time.Sleep(time.Millisecond)
		job, err := status.Get(ctx, "n1", "X.zip")
		if err == nil && job.State.Terminal() {
			if job.State != domain.JobStateCompleted {
				t.Errorf("state = %s, want %s", job.State, domain.JobStateCompleted)
			}
			break
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}

	if q.Len() != 0 {
		t.Errorf("message was not acknowledged, %d still queued", q.Len())
	}
}
