package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
)

const waitlistFile = "waitlist.txt"

// WaitlistLog appends one "<timestamp>  <email>" line per signup.
type WaitlistLog struct {
	path string
	mu   sync.Mutex
}

func NewWaitlistLog(dataDir string) (*WaitlistLog, error) {
	if dataDir == "" {
		dataDir = "./data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &WaitlistLog{path: filepath.Join(dataDir, waitlistFile)}, nil
}

func (l *WaitlistLog) Path() string {
	return l.path
}

func (l *WaitlistLog) Append(_ context.Context, entry domain.WaitlistEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open waitlist: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s  %s\n", entry.JoinedAt.UTC().Format(time.RFC3339), entry.Email)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append waitlist: %w", err)
	}
	return nil
}
