package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
)

// ContentSource reads the bytes of an uploaded file.
type ContentSource interface {
	ReadFile(ctx context.Context, file domain.UploadedFile) ([]byte, error)
}

// UploadBatch is the read side of one request's uploaded files, in upload order.
type UploadBatch interface {
	ContentSource
	Files() []domain.UploadedFile
}

// StagingSession owns the bytes of one request. Close releases everything it
// staged and must be called on every exit path.
type StagingSession interface {
	UploadBatch
	Add(ctx context.Context, name string, body io.Reader) (domain.UploadedFile, error)
	Close() error
}

// Stager opens per-request staging sessions (memory or disk).
type Stager interface {
	NewSession(ctx context.Context) (StagingSession, error)
}

// TextExtractor extracts plain text from raw file bytes.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, filename string) (string, error)
}

// OCRService reads text out of a raster image.
type OCRService interface {
	ExtractImageText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// PlanClassifier asks the reasoning service for a folder plan and returns its
// raw output, expected to be JSON.
type PlanClassifier interface {
	ClassifyPlan(ctx context.Context, fileNames []string, corpus string) (string, error)
}

// ArchiveWriter serializes an archive layout into a single blob.
type ArchiveWriter interface {
	Write(ctx context.Context, layout domain.ArchiveLayout) ([]byte, error)
}

// WaitlistStore persists waitlist signups.
type WaitlistStore interface {
	Append(ctx context.Context, entry domain.WaitlistEntry) error
}

// EventPublisher announces completed work to other services.
type EventPublisher interface {
	PublishPackageGenerated(ctx context.Context, event domain.PackageGenerated) error
	PublishWaitlistJoined(ctx context.Context, entry domain.WaitlistEntry) error
}

// PipelineObserver records pipeline measurements.
type PipelineObserver interface {
	ObserveExtraction(format, failure string)
	ObserveClassification(outcome string, duration time.Duration)
	ObservePackage(outcome string, files int, duration time.Duration)
}
