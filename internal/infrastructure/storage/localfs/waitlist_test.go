package localfs

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
)

func TestWaitlistLogAppendsLines(t *testing.T) {
	log, err := NewWaitlistLog(t.TempDir())
	if err != nil {
		t.Fatalf("NewWaitlistLog() error = %v", err)
	}
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	for _, email := range []string{"ada@example.com", "lin@example.org"} {
		if err := log.Append(context.Background(), domain.WaitlistEntry{Email: email, JoinedAt: at}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	raw, err := os.ReadFile(log.Path())
	if err != nil {
		t.Fatalf("read waitlist: %v", err)
	}
	want := "2024-03-01T09:30:00Z  ada@example.com\n2024-03-01T09:30:00Z  lin@example.org\n"
	if string(raw) != want {
		t.Fatalf("unexpected waitlist content:\n%s", raw)
	}
}
