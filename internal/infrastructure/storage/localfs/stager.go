// Package localfs keeps request uploads and the waitlist on the local disk.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/core/naming"
	"github.com/kirillkom/ready-to-send/internal/core/ports"
)

// Stager spools each request's uploads into its own temporary directory.
type Stager struct {
	basePath string
}

func NewStager(basePath string) (*Stager, error) {
	if basePath == "" {
		basePath = filepath.Join(os.TempDir(), "ready-to-send")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{basePath: basePath}, nil
}

func (s *Stager) NewSession(_ context.Context) (ports.StagingSession, error) {
	dir, err := os.MkdirTemp(s.basePath, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &session{dir: dir, keys: make(map[string]struct{})}, nil
}

type session struct {
	dir string

	mu     sync.Mutex
	files  []domain.UploadedFile
	keys   map[string]struct{}
	closed bool
}

// Add writes body to a file named by a random key; the uploader's filename
// never reaches the filesystem.
func (s *session) Add(ctx context.Context, name string, body io.Reader) (domain.UploadedFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.UploadedFile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.UploadedFile{}, fmt.Errorf("staging session closed")
	}

	key := uuid.NewString()
	f, err := os.OpenFile(filepath.Join(s.dir, key), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("create staged file: %w", err)
	}
	size, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil {
		return domain.UploadedFile{}, fmt.Errorf("write staged file: %w", copyErr)
	}
	if closeErr != nil {
		return domain.UploadedFile{}, fmt.Errorf("close staged file: %w", closeErr)
	}

	file := domain.UploadedFile{
		Index:    len(s.files),
		Name:     name,
		SafeName: naming.SafeFilename(name),
		Size:     size,
		Key:      key,
	}
	s.files = append(s.files, file)
	s.keys[key] = struct{}{}
	return file, nil
}

func (s *session) Files() []domain.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UploadedFile, len(s.files))
	copy(out, s.files)
	return out
}

func (s *session) ReadFile(_ context.Context, file domain.UploadedFile) ([]byte, error) {
	s.mu.Lock()
	_, ok := s.keys[file.Key]
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("staging session closed")
	}
	if !ok {
		return nil, fmt.Errorf("unknown staged file %q", file.Key)
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, file.Key))
	if err != nil {
		return nil, fmt.Errorf("read staged file: %w", err)
	}
	return raw, nil
}

// Close removes the session directory. It is safe to call more than once.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove staging dir: %w", err)
	}
	return nil
}
