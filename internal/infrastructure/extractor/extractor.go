// Package extractor turns uploaded bytes into plain text, choosing a reader
// by file extension.
package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/ready-to-send/internal/core/naming"
	"github.com/kirillkom/ready-to-send/internal/core/ports"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/extractor/xlsx"
)

type Extractor struct {
	ocr ports.OCRService
}

// New builds the dispatcher. A nil OCR service leaves images without text.
func New(ocr ports.OCRService) *Extractor {
	return &Extractor{ocr: ocr}
}

// Extract never fails for a document it cannot parse; such files yield "".
// Only the OCR branch can return an error.
func (e *Extractor) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	ext := naming.Extension(filename)
	switch ext {
	case ".pdf":
		text, err := pdf.ExtractText(content)
		if err != nil {
			slog.Debug("pdf_unreadable", "error", err)
			return "", nil
		}
		return text, nil
	case ".xlsx":
		text, err := xlsx.ExtractText(content)
		if err != nil {
			slog.Debug("xlsx_unreadable", "error", err)
			return "", nil
		}
		return text, nil
	case ".txt", ".csv", ".md":
		return plaintext.ExtractText(content), nil
	case ".png", ".jpg", ".jpeg", ".webp":
		if e.ocr == nil {
			return "", nil
		}
		text, err := e.ocr.ExtractImageText(ctx, content, ImageMIMEType(ext))
		if err != nil {
			return "", fmt.Errorf("ocr image: %w", err)
		}
		return text, nil
	default:
		return "", nil
	}
}

// ImageMIMEType reports the media type sent with an image; anything that is
// not png or webp is treated as jpeg.
func ImageMIMEType(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
