package zipwriter

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
)

func sampleLayout() domain.ArchiveLayout {
	return domain.ArchiveLayout{
		Dirs: []string{"Income", "Unsorted"},
		Entries: []domain.ArchiveEntry{
			{Path: "Overview_Summary.txt", Content: []byte("Two payslips.")},
			{Path: "Income/payslip_jan.pdf", Content: []byte("%PDF-1.4 jan")},
			{Path: "Unsorted/photo.jpg", Content: []byte{0xff, 0xd8, 0xff}},
		},
	}
}

func TestWriteRoundTrip(t *testing.T) {
	blob, err := New().Write(context.Background(), sampleLayout())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	wantNames := []string{"Income/", "Unsorted/", "Overview_Summary.txt", "Income/payslip_jan.pdf", "Unsorted/photo.jpg"}
	if len(zr.File) != len(wantNames) {
		t.Fatalf("expected %d entries, got %d", len(wantNames), len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != wantNames[i] {
			t.Fatalf("entry %d = %q, want %q", i, f.Name, wantNames[i])
		}
	}

	rc, err := zr.File[3].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "%PDF-1.4 jan" {
		t.Fatalf("entry bytes changed: %q", got)
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	first, err := New().Write(context.Background(), sampleLayout())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	second, err := New().Write(context.Background(), sampleLayout())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical archives for identical layouts")
	}
}

func TestWriteStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Write(ctx, sampleLayout()); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
