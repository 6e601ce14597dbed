// Package throttle limits how fast images are sent for OCR across all
// in-flight requests.
package throttle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/kirillkom/ready-to-send/internal/core/ports"
)

type OCR struct {
	next    ports.OCRService
	limiter *rate.Limiter
}

// NewOCR wraps next with a token bucket. A non-positive rps disables the
// limit and returns next unchanged.
func NewOCR(next ports.OCRService, rps float64, burst int) ports.OCRService {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &OCR{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (o *OCR) ExtractImageText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for ocr slot: %w", err)
	}
	return o.next.ExtractImageText(ctx, image, mimeType)
}
