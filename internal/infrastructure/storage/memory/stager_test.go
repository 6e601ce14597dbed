package memory

import (
	"context"
	"strings"
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	sess, err := NewStager().NewSession(context.Background())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	file, err := sess.Add(context.Background(), "Bank statement (March).pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if file.SafeName != "Bank_statement__March_.pdf" || file.Size != 4 || file.Key == "" {
		t.Fatalf("unexpected file %+v", file)
	}

	raw, err := sess.ReadFile(context.Background(), file)
	if err != nil || string(raw) != "%PDF" {
		t.Fatalf("ReadFile() = %q, %v", raw, err)
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := sess.ReadFile(context.Background(), file); err == nil {
		t.Fatalf("expected read after close to fail")
	}
	if len(sess.Files()) != 0 {
		t.Fatalf("expected no files after close")
	}
}

func TestAddHonoursCancelledContext(t *testing.T) {
	sess, _ := NewStager().NewSession(context.Background())
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sess.Add(ctx, "a.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
