package localfs

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
)

func TestSessionStagesAndReadsBack(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	if err != nil {
		t.Fatalf("NewStager() error = %v", err)
	}
	sess, err := stager.NewSession(context.Background())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer sess.Close()

	first, err := sess.Add(context.Background(), "../../etc/passwd", strings.NewReader("root"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	second, err := sess.Add(context.Background(), "scan 1.png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if first.Index != 0 || second.Index != 1 {
		t.Fatalf("unexpected indexes %d, %d", first.Index, second.Index)
	}
	if first.Size != 4 || first.SafeName != ".._.._etc_passwd" {
		t.Fatalf("unexpected first file %+v", first)
	}
	if second.SafeName != "scan_1.png" {
		t.Fatalf("unexpected safe name %q", second.SafeName)
	}

	raw, err := sess.ReadFile(context.Background(), second)
	if err != nil || string(raw) != "png" {
		t.Fatalf("ReadFile() = %q, %v", raw, err)
	}
	if got := sess.Files(); len(got) != 2 || got[0].Key != first.Key {
		t.Fatalf("unexpected files %+v", got)
	}
}

func TestSessionCloseRemovesEverything(t *testing.T) {
	base := t.TempDir()
	stager, err := NewStager(base)
	if err != nil {
		t.Fatalf("NewStager() error = %v", err)
	}
	sess, err := stager.NewSession(context.Background())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	file, err := sess.Add(context.Background(), "a.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatalf("read base dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected staging dir to be empty, found %d entries", len(entries))
	}
	if _, err := sess.ReadFile(context.Background(), file); err == nil {
		t.Fatalf("expected read after close to fail")
	}
	if _, err := sess.Add(context.Background(), "b.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected add after close to fail")
	}
}

func TestSessionRejectsForeignKey(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	if err != nil {
		t.Fatalf("NewStager() error = %v", err)
	}
	sess, err := stager.NewSession(context.Background())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer sess.Close()

	if _, err := sess.ReadFile(context.Background(), domain.UploadedFile{Key: "../outside"}); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}
