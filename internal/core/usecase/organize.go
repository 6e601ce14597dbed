package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/core/naming"
	"github.com/kirillkom/ready-to-send/internal/core/ports"
	"github.com/kirillkom/ready-to-send/internal/observability/logging"
)

const (
	DefaultMaxFiles        = 100
	DefaultMaxFileBytes    = 5 * 1024 * 1024
	DefaultConcurrency     = 4
	DefaultClassifyTimeout = 45 * time.Second

	msgExtractionFailed = "Failed to extract text from one or more files."
	msgTookTooLong      = "The request took too long. Please try fewer or smaller files."
)

type OrganizeOptions struct {
	MaxFiles        int
	MaxFileBytes    int64
	MaxTextChars    int
	Concurrency     int
	ClassifyTimeout time.Duration
}

func (o OrganizeOptions) normalize() OrganizeOptions {
	out := o
	if out.MaxFiles <= 0 {
		out.MaxFiles = DefaultMaxFiles
	}
	if out.MaxFileBytes <= 0 {
		out.MaxFileBytes = DefaultMaxFileBytes
	}
	if out.MaxTextChars <= 0 {
		out.MaxTextChars = DefaultMaxTextChars
	}
	if out.Concurrency <= 0 {
		out.Concurrency = DefaultConcurrency
	}
	if out.ClassifyTimeout <= 0 {
		out.ClassifyTimeout = DefaultClassifyTimeout
	}
	return out
}

type OrganizeUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.PlanClassifier
	archive    ports.ArchiveWriter
	events     ports.EventPublisher
	observer   ports.PipelineObserver
	opts       OrganizeOptions
}

func NewOrganizeUseCase(
	extractor ports.TextExtractor,
	classifier ports.PlanClassifier,
	archive ports.ArchiveWriter,
	events ports.EventPublisher,
	observer ports.PipelineObserver,
	opts OrganizeOptions,
) *OrganizeUseCase {
	if observer == nil {
		observer = nopObserver{}
	}
	return &OrganizeUseCase{
		extractor:  extractor,
		classifier: classifier,
		archive:    archive,
		events:     events,
		observer:   observer,
		opts:       opts.normalize(),
	}
}

func (uc *OrganizeUseCase) Options() OrganizeOptions {
	return uc.opts
}

func (uc *OrganizeUseCase) Organize(ctx context.Context, batch ports.UploadBatch) (*domain.PackageResult, error) {
	start := time.Now()
	result, err := uc.organize(ctx, batch)
	outcome := "success"
	switch {
	case err == nil:
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrBudgetExceeded):
		outcome = "rejected"
	case domain.IsKind(err, domain.ErrAITimeout):
		outcome = "timeout"
	default:
		outcome = "error"
	}
	files := len(batch.Files())
	uc.observer.ObservePackage(outcome, files, time.Since(start))
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, domain.PackageGenerated{
		RequestID:       logging.RequestIDFromContext(ctx),
		Files:           result.Files,
		FallbackEntries: result.FallbackEntries,
		ParseFallback:   result.ParseFallback,
		ArchiveBytes:    len(result.Archive),
		DurationMS:      time.Since(start).Milliseconds(),
		GeneratedAt:     time.Now().UTC(),
	})
	return result, nil
}

func (uc *OrganizeUseCase) organize(ctx context.Context, batch ports.UploadBatch) (*domain.PackageResult, error) {
	requestID := logging.RequestIDFromContext(ctx)
	files := batch.Files()
	if err := ValidateBatch(files, uc.opts); err != nil {
		return nil, err
	}
	files = labelFiles(files)
	slog.Info("organize_start", "request_id", requestID, "files", len(files))

	extracted, err := MapLimit(ctx, files, uc.opts.Concurrency, func(ctx context.Context, file domain.UploadedFile, _ int) (domain.ExtractionResult, error) {
		return uc.extractOne(ctx, batch, file)
	})
	if err != nil {
		slog.Error("organize_extract_error", "request_id", requestID, "error", err)
		return nil, &domain.UserError{Kind: domain.ErrExtraction, Message: msgExtractionFailed}
	}

	corpus, err := Aggregate(extracted, uc.opts.MaxTextChars)
	if err != nil {
		slog.Warn("organize_reject_text_limit", "request_id", requestID, "limit", uc.opts.MaxTextChars, "files", len(files))
		return nil, err
	}

	labels := make([]string, len(files))
	for i, file := range files {
		labels[i] = file.SafeName
	}

	raw, err := uc.classifyWithTimeout(ctx, labels, corpus)
	if err != nil {
		return nil, err
	}

	plan := Reconcile(raw, labels)
	if plan.Fallback {
		slog.Warn("plan_fallback", "request_id", requestID, "files", len(files), "raw_length", len(raw))
	}

	layout, err := Assemble(ctx, plan, files, batch)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "assemble archive", err)
	}
	archive, err := uc.archive.Write(ctx, layout)
	if err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}

	fallbackEntries := plan.Synthesized
	if plan.Fallback {
		fallbackEntries = len(plan.FilePlan)
	}
	slog.Info("organize_success",
		"request_id", requestID,
		"files", len(files),
		"fallback_entries", fallbackEntries,
		"archive_bytes", len(archive),
	)
	return &domain.PackageResult{
		Archive:         archive,
		Files:           len(files),
		FallbackEntries: fallbackEntries,
		ParseFallback:   plan.Fallback,
	}, nil
}

// ValidateBatch enforces the count and per-file size caps.
func ValidateBatch(files []domain.UploadedFile, opts OrganizeOptions) error {
	opts = opts.normalize()
	if len(files) == 0 {
		return domain.NewUserError(domain.ErrInvalidInput, "No files uploaded")
	}
	if len(files) > opts.MaxFiles {
		return TooManyFilesError(len(files), opts.MaxFiles)
	}
	for _, file := range files {
		if file.Size > opts.MaxFileBytes {
			return FileTooLargeError(file.Name, opts.MaxFileBytes)
		}
	}
	return nil
}

func TooManyFilesError(count, maxFiles int) error {
	return domain.NewUserError(
		domain.ErrInvalidInput,
		"Too many files: %d. Max %d per run. Please split into smaller batches.",
		count, maxFiles,
	)
}

func FileTooLargeError(name string, maxBytes int64) error {
	return domain.NewUserError(
		domain.ErrInvalidInput,
		"File too large: %s. Max %dMB per file.",
		name, maxBytes/(1024*1024),
	)
}

// labelFiles assigns every file a sanitized label that is unique within the
// batch, so two uploads that sanitize alike never share a plan entry.
func labelFiles(files []domain.UploadedFile) []domain.UploadedFile {
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Name
	}
	labels := naming.UniqueLabels(names)
	out := make([]domain.UploadedFile, len(files))
	for i, file := range files {
		file.SafeName = labels[i]
		out[i] = file
	}
	return out
}

// extractOne never fails for a bad document: the file keeps its bytes and is
// classified with empty text. Only losing access to the staged bytes or a
// cancelled request aborts the batch.
func (uc *OrganizeUseCase) extractOne(ctx context.Context, batch ports.UploadBatch, file domain.UploadedFile) (domain.ExtractionResult, error) {
	result := domain.ExtractionResult{File: file}
	content, err := batch.ReadFile(ctx, file)
	if err != nil {
		return result, fmt.Errorf("read staged file %d: %w", file.Index, err)
	}

	format := naming.Extension(file.SafeName)
	text, err := uc.extractor.Extract(ctx, content, file.SafeName)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		kind := FailureKind(err)
		slog.Warn("extract_failed",
			"request_id", logging.RequestIDFromContext(ctx),
			"file_index", file.Index,
			"format", format,
			"kind", kind,
		)
		result.Failure = kind
		uc.observer.ObserveExtraction(format, kind)
		return result, nil
	}

	uc.observer.ObserveExtraction(format, "")
	result.Text = text
	return result, nil
}

// FailureKind names the class of an external failure without exposing its
// message, which may echo request payloads.
func FailureKind(err error) string {
	var netErr net.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case domain.IsKind(err, domain.ErrMalformedResponse):
		return "malformed_response"
	case errors.As(err, &netErr):
		return "network"
	case domain.IsKind(err, domain.ErrTemporary):
		return "service_unavailable"
	default:
		return "service_error"
	}
}

type classifyOutcome struct {
	raw string
	err error
}

// classifyWithTimeout stops waiting once the deadline passes even if the
// classifier ignores its context.
func (uc *OrganizeUseCase) classifyWithTimeout(ctx context.Context, labels []string, corpus string) (string, error) {
	requestID := logging.RequestIDFromContext(ctx)
	callCtx, cancel := context.WithTimeout(ctx, uc.opts.ClassifyTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan classifyOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- classifyOutcome{err: fmt.Errorf("classifier panicked: %v", r)}
			}
		}()
		raw, err := uc.classifier.ClassifyPlan(callCtx, labels, corpus)
		done <- classifyOutcome{raw: raw, err: err}
	}()

	select {
	case <-callCtx.Done():
		if parentErr := ctx.Err(); parentErr != nil {
			uc.observer.ObserveClassification("cancelled", time.Since(start))
			return "", parentErr
		}
		uc.observer.ObserveClassification("timeout", time.Since(start))
		slog.Warn("classify_timeout", "request_id", requestID, "timeout_ms", uc.opts.ClassifyTimeout.Milliseconds())
		return "", &domain.UserError{Kind: domain.ErrAITimeout, Message: msgTookTooLong}
	case out := <-done:
		if out.err != nil {
			kind := FailureKind(out.err)
			uc.observer.ObserveClassification(kind, time.Since(start))
			slog.Warn("classify_failed", "request_id", requestID, "kind", kind)
			return "", &domain.UserError{Kind: domain.ErrAITimeout, Message: msgTookTooLong}
		}
		uc.observer.ObserveClassification("success", time.Since(start))
		return out.raw, nil
	}
}

func (uc *OrganizeUseCase) publish(ctx context.Context, event domain.PackageGenerated) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishPackageGenerated(ctx, event); err != nil {
		slog.Warn("publish_package_generated_failed", "request_id", event.RequestID, "error", err)
	}
}

type nopObserver struct{}

func (nopObserver) ObserveExtraction(string, string) {}

func (nopObserver) ObserveClassification(string, time.Duration) {}

func (nopObserver) ObservePackage(string, int, time.Duration) {}
