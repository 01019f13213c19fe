package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestUploadThenDownload(t *testing.T) {
	s, err := newFileStorage(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("newFileStorage() error = %v", err)
	}
	ctx := context.Background()

	content := []byte("%PDF-1.4 signed")
	if err := s.Upload(ctx, content, "signed/tenant-a/req-1/contract_signed.pdf", "application/pdf"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	got, err := s.Download(ctx, "signed/tenant-a/req-1/contract_signed.pdf")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("unexpected content %q", got)
	}

	entries, err := os.ReadDir(filepath.Join(s.basePath, "signed", "tenant-a", "req-1"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestUploadOverwrites(t *testing.T) {
	s, err := newFileStorage(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("newFileStorage() error = %v", err)
	}
	ctx := context.Background()

	if err := s.Upload(ctx, []byte("v1"), "a.pdf", "application/pdf"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if err := s.Upload(ctx, []byte("v2"), "a.pdf", "application/pdf"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	got, _ := s.Download(ctx, "a.pdf")
	if string(got) != "v2" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	s, err := newFileStorage(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("newFileStorage() error = %v", err)
	}

	for _, key := range []string{"", "..", "../outside.pdf", "a/../../outside.pdf"} {
		if _, err := s.Download(context.Background(), key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestDownloadMissingObject(t *testing.T) {
	s, err := newFileStorage(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("newFileStorage() error = %v", err)
	}
	if _, err := s.Download(context.Background(), "missing.pdf"); err == nil {
		t.Fatalf("expected error for missing object")
	}
}

func TestHonoursCancelledContext(t *testing.T) {
	s, err := newFileStorage(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("newFileStorage() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Upload(ctx, []byte("x"), "a.pdf", "application/pdf"); err == nil {
		t.Fatalf("expected context error")
	}
}
