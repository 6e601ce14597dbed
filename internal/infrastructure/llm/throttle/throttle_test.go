package throttle

import (
	"context"
	"testing"
	"time"
)

type ocrFake struct{ calls int }

func (f *ocrFake) ExtractImageText(context.Context, []byte, string) (string, error) {
	f.calls++
	return "text", nil
}

func TestNewOCRWithoutLimitReturnsInner(t *testing.T) {
	inner := &ocrFake{}
	if got := NewOCR(inner, 0, 5); got != inner {
		t.Fatalf("expected inner service when limit is disabled")
	}
}

func TestOCRWaitsForToken(t *testing.T) {
	inner := &ocrFake{}
	svc := NewOCR(inner, 1, 1)

	if _, err := svc.ExtractImageText(context.Background(), nil, "image/png"); err != nil {
		t.Fatalf("first call error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.ExtractImageText(ctx, nil, "image/png")
	if err == nil {
		t.Fatalf("expected second call to be throttled")
	}
	if inner.calls != 1 {
		t.Fatalf("throttled call must not reach the provider, calls=%d", inner.calls)
	}
}
