package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/mfield/notebox/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Note{}, &domain.ArchiveJob{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestArchiveJobSaveReplacesAndReversions(t *testing.T) {
	ctx := context.Background()
	repo := NewArchiveJobRepository(testDB(t))

	job := &domain.ArchiveJob{OwnerID: "n1", JobID: "X.zip", State: domain.JobStateQueued}
	if err := repo.Save(ctx, job); err != nil {
		t.Fatal(err)
	}
	first, err := repo.Get(ctx, "n1", "X.zip")
	if err != nil {
		t.Fatal(err)
	}
	if first.Version == "" {
		t.Fatal("expected a version token on first save")
	}

	// Full replace: same key, new state, new version
	if err := repo.Save(ctx, &domain.ArchiveJob{OwnerID: "n1", JobID: "X.zip", State: domain.JobStateInProgress}); err != nil {
		t.Fatal(err)
	}
	second, err := repo.Get(ctx, "n1", "X.zip")
	if err != nil {
		t.Fatal(err)
	}
	if second.State != domain.JobStateInProgress {
		t.Errorf("state = %s, want %s", second.State, domain.JobStateInProgress)
	}
	if second.Version == first.Version {
		t.Error("version token did not change on rewrite")
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Error("timestamp went backwards")
	}
}

func TestArchiveJobSaveIf(t *testing.T) {
	ctx := context.Background()
	repo := NewArchiveJobRepository(testDB(t))

	job := &domain.ArchiveJob{OwnerID: "n1", JobID: "X.zip", State: domain.JobStateQueued}
	if err := repo.Save(ctx, job); err != nil {
		t.Fatal(err)
	}
	current, _ := repo.Get(ctx, "n1", "X.zip")

	// Matching token succeeds
	update := &domain.ArchiveJob{OwnerID: "n1", JobID: "X.zip", State: domain.JobStateInProgress}
	if err := repo.SaveIf(ctx, update, current.Version); err != nil {
		t.Fatalf("conditional save with fresh token failed: %v", err)
	}

	// Stale token is rejected
	stale := &domain.ArchiveJob{OwnerID: "n1", JobID: "X.zip", State: domain.JobStateCompleted}
	err := repo.SaveIf(ctx, stale, current.Version)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
	got, _ := repo.Get(ctx, "n1", "X.zip")
	if got.State != domain.JobStateInProgress {
		t.Errorf("stale write changed state to %s", got.State)
	}
}

func TestArchiveJobPartitionOps(t *testing.T) {
	ctx := context.Background()
	repo := NewArchiveJobRepository(testDB(t))

	for _, j := range []domain.ArchiveJob{
		{OwnerID: "n1", JobID: "a.zip", State: domain.JobStateCompleted},
		{OwnerID: "n1", JobID: "b.zip", State: domain.JobStateInProgress},
		{OwnerID: "n2", JobID: "c.zip", State: domain.JobStateQueued},
	} {
		j := j
		if err := repo.Save(ctx, &j); err != nil {
			t.Fatal(err)
		}
	}

	busy, err := repo.AnyInState(ctx, "n1", domain.JobStateInProgress)
	if err != nil {
		t.Fatal(err)
	}
	if !busy {
		t.Error("expected an InProgress record for n1")
	}
	busy, err = repo.AnyInState(ctx, "n2", domain.JobStateInProgress)
	if err != nil {
		t.Fatal(err)
	}
	if busy {
		t.Error("n2 has no InProgress record")
	}

	if err := repo.DeleteByOwner(ctx, "n1"); err != nil {
		t.Fatal(err)
	}
	jobs, err := repo.ListByOwner(ctx, "n1")
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected empty partition after bulk delete, got %d records", len(jobs))
	}

	// Other partitions untouched
	if _, err := repo.Get(ctx, "n2", "c.zip"); err != nil {
		t.Errorf("bulk delete leaked into another partition: %v", err)
	}
}

func TestArchiveJobGetMissing(t *testing.T) {
	repo := NewArchiveJobRepository(testDB(t))
	_, err := repo.Get(context.Background(), "n1", "nope.zip")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}
