package service

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/mfield/notebox/internal/storage"
)

func buildAndRead(t *testing.T, store *storage.MemoryStore, sourceNS, destKey, destNS string) *zip.Reader {
	t.Helper()

	builder := NewArchiveBuilder(store)
	if err := builder.Build(context.Background(), sourceNS, destKey, destNS); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	body, err := store.Download(context.Background(), destNS, destKey)
	if err != nil {
		t.Fatalf("downloading archive failed: %v", err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("produced archive is not a readable zip: %v", err)
	}
	return zr
}

func TestArchiveBuilderRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.EnsureNamespace(ctx, "note-42")
	store.EnsureNamespace(ctx, "note-42-archive")

	contents := map[string]string{
		"a.png": "0123456789",           // 10 bytes
		"b.png": "abcdefghijklmnopqrst", // 20 bytes
	}
	for key, data := range contents {
		if err := store.Upload(ctx, "note-42", key, strings.NewReader(data), int64(len(data)), "image/png"); err != nil {
			t.Fatal(err)
		}
	}

	zr := buildAndRead(t, store, "note-42", "X.zip", "note-42-archive")

	if len(zr.File) != len(contents) {
		t.Fatalf("expected %d entries, got %d", len(contents), len(zr.File))
	}
	for _, f := range zr.File {
		want, ok := contents[f.Name]
		if !ok {
			t.Errorf("unexpected entry %q", f.Name)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("entry %q: got %d bytes, want %d byte-equal content", f.Name, len(got), len(want))
		}
	}

	if ct := store.ContentType("note-42-archive", "X.zip"); ct != ArchiveContentType {
		t.Errorf("archive content type = %q, want %q", ct, ArchiveContentType)
	}
}

func TestArchiveBuilderEmptySource(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.EnsureNamespace(ctx, "empty-note")
	store.EnsureNamespace(ctx, "empty-note-archive")

	zr := buildAndRead(t, store, "empty-note", "E.zip", "empty-note-archive")

	// Zero entries is a valid archive, uploaded normally
	if len(zr.File) != 0 {
		t.Errorf("expected 0 entries, got %d", len(zr.File))
	}
}

func TestArchiveBuilderMissingSource(t *testing.T) {
	store := storage.NewMemoryStore()
	store.EnsureNamespace(context.Background(), "dest")

	builder := NewArchiveBuilder(store)
	if err := builder.Build(context.Background(), "nope", "X.zip", "dest"); err == nil {
		t.Fatal("expected an error for a missing source namespace")
	}
}

func TestArchiveBuilderCancelledContext(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.EnsureNamespace(ctx, "src")
	store.EnsureNamespace(ctx, "dst")
	store.Upload(ctx, "src", "a.txt", strings.NewReader("data"), 4, "text/plain")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	builder := NewArchiveBuilder(store)
	if err := builder.Build(cancelled, "src", "X.zip", "dst"); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
