package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mfield/notebox/internal/storage"
)

func TestAttachmentUploadDownload(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewAttachmentService(newFakeNotes("n1"), store)

	if err := svc.Upload(ctx, "n1", "a.png", strings.NewReader("0123456789"), 10, "image/png"); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	body, err := svc.Download(ctx, "n1", "a.png")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	defer body.Close()
	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "0123456789" {
		t.Errorf("content = %q, want %q", got, "0123456789")
	}

	if ct := store.ContentType("n1", "a.png"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
}

func TestAttachmentUnknownOwner(t *testing.T) {
	svc := NewAttachmentService(newFakeNotes(), storage.NewMemoryStore())

	if err := svc.Upload(context.Background(), "ghost", "a.png", strings.NewReader("x"), 1, "image/png"); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Upload: expected ErrNoteNotFound, got %v", err)
	}
	if _, err := svc.List(context.Background(), "ghost"); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("List: expected ErrNoteNotFound, got %v", err)
	}
}

func TestAttachmentListBeforeFirstUpload(t *testing.T) {
	// No namespace yet reads as zero attachments, not an error
	svc := NewAttachmentService(newFakeNotes("n1"), storage.NewMemoryStore())
	objects, err := svc.List(context.Background(), "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("expected 0 attachments, got %d", len(objects))
	}
}

func TestAttachmentDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewAttachmentService(newFakeNotes("n1"), storage.NewMemoryStore())

	if err := svc.Delete(ctx, "n1", "nope.png"); !errors.Is(err, ErrAttachmentNotFound) {
		t.Fatalf("expected ErrAttachmentNotFound, got %v", err)
	}

	if err := svc.Upload(ctx, "n1", "a.png", strings.NewReader("x"), 1, "image/png"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "n1", "a.png"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Download(ctx, "n1", "a.png"); !errors.Is(err, ErrAttachmentNotFound) {
		t.Errorf("expected ErrAttachmentNotFound after delete, got %v", err)
	}
}
