package ports

import (
	"context"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
)

// PackageOrganizer is the inbound contract for turning an uploaded batch into
// a ready-to-send archive.
type PackageOrganizer interface {
	Organize(ctx context.Context, batch UploadBatch) (*domain.PackageResult, error)
}

// WaitlistJoiner is the inbound contract for waitlist signups.
type WaitlistJoiner interface {
	Join(ctx context.Context, email string) error
}
