// Package memory stages uploads in process memory.
package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/core/naming"
	"github.com/kirillkom/ready-to-send/internal/core/ports"
)

type Stager struct{}

func NewStager() *Stager {
	return &Stager{}
}

func (s *Stager) NewSession(_ context.Context) (ports.StagingSession, error) {
	return &session{blobs: make(map[string][]byte)}, nil
}

type session struct {
	mu     sync.RWMutex
	files  []domain.UploadedFile
	blobs  map[string][]byte
	closed bool
}

func (s *session) Add(ctx context.Context, name string, body io.Reader) (domain.UploadedFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.UploadedFile{}, err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("read upload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.UploadedFile{}, fmt.Errorf("staging session closed")
	}
	file := domain.UploadedFile{
		Index:    len(s.files),
		Name:     name,
		SafeName: naming.SafeFilename(name),
		Size:     int64(len(raw)),
		Key:      uuid.NewString(),
	}
	s.files = append(s.files, file)
	s.blobs[file.Key] = raw
	return file, nil
}

func (s *session) Files() []domain.UploadedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UploadedFile, len(s.files))
	copy(out, s.files)
	return out
}

func (s *session) ReadFile(_ context.Context, file domain.UploadedFile) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("staging session closed")
	}
	raw, ok := s.blobs[file.Key]
	if !ok {
		return nil, fmt.Errorf("unknown staged file %q", file.Key)
	}
	return raw, nil
}

// Close drops every staged blob.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.blobs = nil
	s.files = nil
	return nil
}
