// Package zipwriter serializes an archive layout into a zip file.
package zipwriter

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
)

// ModTime is stamped on every entry so identical layouts produce identical
// archives.
var ModTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type Writer struct{}

func New() *Writer {
	return &Writer{}
}

// Write emits directories first, then entries in layout order.
func (w *Writer) Write(ctx context.Context, layout domain.ArchiveLayout) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, dir := range layout.Dirs {
		name := strings.TrimSuffix(dir, "/") + "/"
		if _, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store, Modified: ModTime}); err != nil {
			return nil, fmt.Errorf("add directory %s: %w", name, err)
		}
	}

	for _, entry := range layout.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: entry.Path, Method: zip.Deflate, Modified: ModTime})
		if err != nil {
			return nil, fmt.Errorf("add entry %s: %w", entry.Path, err)
		}
		if _, err := fw.Write(entry.Content); err != nil {
			return nil, fmt.Errorf("write entry %s: %w", entry.Path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
