package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mfield/notebox/internal/domain"
	"github.com/mfield/notebox/internal/storage"
	"gorm.io/gorm"
)

// fakeNotes is an in-memory NotesRepo for tests.
type fakeNotes struct {
	mu    sync.Mutex
	notes map[string]domain.Note
}

func newFakeNotes(ids ...string) *fakeNotes {
	f := &fakeNotes{notes: make(map[string]domain.Note)}
	for _, id := range ids {
		f.notes[id] = domain.Note{ID: id, Title: "note " + id}
	}
	return f
}

func (f *fakeNotes) Create(ctx context.Context, note *domain.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[note.ID] = *note
	return nil
}

func (f *fakeNotes) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	note, ok := f.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &note, nil
}

func (f *fakeNotes) Exists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.notes[id]
	return ok, nil
}

func (f *fakeNotes) List(ctx context.Context, limit, offset int) ([]domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Note
	for _, n := range f.notes {
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotes) Update(ctx context.Context, note *domain.Note) error {
	return f.Create(ctx, note)
}

func (f *fakeNotes) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notes, id)
	return nil
}

func (f *fakeNotes) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.notes)), nil
}

// fakeStatus is an in-memory StatusStore for tests.
type fakeStatus struct {
	mu      sync.Mutex
	records map[string]map[string]domain.ArchiveJob
	saves   int
}

func newFakeStatus() *fakeStatus {
	return &fakeStatus{records: make(map[string]map[string]domain.ArchiveJob)}
}

func (f *fakeStatus) Save(ctx context.Context, job *domain.ArchiveJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[job.OwnerID]; !ok {
		f.records[job.OwnerID] = make(map[string]domain.ArchiveJob)
	}
	f.records[job.OwnerID][job.JobID] = *job
	f.saves++
	return nil
}

func (f *fakeStatus) Get(ctx context.Context, ownerID, jobID string) (*domain.ArchiveJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.records[ownerID][jobID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &job, nil
}

func (f *fakeStatus) ListByOwner(ctx context.Context, ownerID string) ([]domain.ArchiveJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ArchiveJob
	for _, job := range f.records[ownerID] {
		out = append(out, job)
	}
	return out, nil
}

func (f *fakeStatus) AnyInState(ctx context.Context, ownerID string, state domain.JobState) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, job := range f.records[ownerID] {
		if job.State == state {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStatus) DeleteByOwner(ctx context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, ownerID)
	return nil
}

func (f *fakeStatus) Delete(ctx context.Context, ownerID, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records[ownerID], jobID)
	return nil
}

func TestNoteServiceCreateLimit(t *testing.T) {
	notes := newFakeNotes("n1", "n2")
	svc := NewNoteService(notes, newFakeStatus(), storage.NewMemoryStore(), &NoteConfig{MaxCount: 2})

	_, err := svc.Create(context.Background(), "over limit", "")
	if !errors.Is(err, ErrNoteLimitReached) {
		t.Fatalf("expected ErrNoteLimitReached, got %v", err)
	}

	// Room left after removing one
	if err := notes.Delete(context.Background(), "n2"); err != nil {
		t.Fatal(err)
	}
	note, err := svc.Create(context.Background(), "fits", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.ID == "" {
		t.Error("expected a generated note ID")
	}
}

func TestNoteServiceDeleteRefusedWhileInProgress(t *testing.T) {
	notes := newFakeNotes("n1")
	status := newFakeStatus()
	store := storage.NewMemoryStore()
	svc := NewNoteService(notes, status, store, &NoteConfig{MaxCount: 10})

	status.Save(context.Background(), &domain.ArchiveJob{
		OwnerID: "n1",
		JobID:   "j1.zip",
		State:   domain.JobStateInProgress,
	})

	err := svc.Delete(context.Background(), "n1")
	if !errors.Is(err, ErrArchiveInProgress) {
		t.Fatalf("expected ErrArchiveInProgress, got %v", err)
	}

	// Nothing was deleted
	if exists, _ := notes.Exists(context.Background(), "n1"); !exists {
		t.Error("note was deleted despite the in-progress guard")
	}
	if _, err := status.Get(context.Background(), "n1", "j1.zip"); err != nil {
		t.Error("status record was deleted despite the in-progress guard")
	}
}

func TestNoteServiceDeleteCleansUpEverything(t *testing.T) {
	ctx := context.Background()
	notes := newFakeNotes("n1")
	status := newFakeStatus()
	store := storage.NewMemoryStore()
	svc := NewNoteService(notes, status, store, &NoteConfig{MaxCount: 10})

	store.EnsureNamespace(ctx, "n1")
	store.Upload(ctx, "n1", "a.png", strings.NewReader("abc"), 3, "image/png")
	store.EnsureNamespace(ctx, domain.ArchiveNamespace("n1"))
	status.Save(ctx, &domain.ArchiveJob{OwnerID: "n1", JobID: "j1.zip", State: domain.JobStateCompleted})

	if err := svc.Delete(ctx, "n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exists, _ := notes.Exists(ctx, "n1"); exists {
		t.Error("note still exists")
	}
	if nsExists, _ := store.NamespaceExists(ctx, "n1"); nsExists {
		t.Error("primary namespace still exists")
	}
	if nsExists, _ := store.NamespaceExists(ctx, domain.ArchiveNamespace("n1")); nsExists {
		t.Error("archive namespace still exists")
	}
	if jobs, _ := status.ListByOwner(ctx, "n1"); len(jobs) != 0 {
		t.Errorf("expected no status records, got %d", len(jobs))
	}
}

func TestNoteServiceDeleteUnknownNote(t *testing.T) {
	svc := NewNoteService(newFakeNotes(), newFakeStatus(), storage.NewMemoryStore(), &NoteConfig{MaxCount: 10})
	if err := svc.Delete(context.Background(), "ghost"); !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}
