package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/kirillkom/ready-to-send/internal/config"
	"github.com/kirillkom/ready-to-send/internal/core/ports"
	"github.com/kirillkom/ready-to-send/internal/core/usecase"
	"github.com/kirillkom/ready-to-send/internal/observability/logging"
	"github.com/kirillkom/ready-to-send/internal/observability/metrics"
)

const (
	serviceName = "api"

	archiveName     = "ReadyToSend.zip"
	uploadField     = "files"
	maxNotifyBody   = 4 << 10
	multipartSlack  = 1 << 20
	processingSlack = 60 * time.Second
	msgBadRequest   = "Bad request"
	msgInvalidEmail = "Invalid email"
)

type Router struct {
	cfg       config.Config
	organizer ports.PackageOrganizer
	stager    ports.Stager
	waitlist  ports.WaitlistJoiner
	metrics   *metrics.HTTPServerMetrics
}

// NewRouter wires the HTTP surface. httpMetrics may be nil.
func NewRouter(
	cfg config.Config,
	organizer ports.PackageOrganizer,
	stager ports.Stager,
	waitlist ports.WaitlistJoiner,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		organizer: organizer,
		stager:    stager,
		waitlist:  waitlist,
		metrics:   httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	mux.Handle("/api/generate", rt.trafficControl(http.HandlerFunc(rt.generate)))
	mux.Handle("/api/notify", rt.trafficControl(http.HandlerFunc(rt.notify)))

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) trafficControl(next http.Handler) http.Handler {
	handler := backpressureMiddleware(next, rt.cfg.APIMaxInFlight, rt.cfg.BackpressureWait(), rt.reject)
	return rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.reject)
}

func (rt *Router) reject(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejection(serviceName, reason)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (rt *Router) maxFiles() int {
	if rt.cfg.MaxFiles > 0 {
		return rt.cfg.MaxFiles
	}
	return usecase.DefaultMaxFiles
}

func (rt *Router) maxFileBytes() int64 {
	if n := rt.cfg.MaxFileBytes(); n > 0 {
		return n
	}
	return usecase.DefaultMaxFileBytes
}

func (rt *Router) processingBudget() time.Duration {
	timeout := rt.cfg.ClassifyTimeout()
	if timeout <= 0 {
		timeout = usecase.DefaultClassifyTimeout
	}
	return timeout + processingSlack
}

// generate streams the multipart body into a staging session, enforcing the
// count and size limits while reading, then runs the organize pipeline.
func (rt *Router) generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	ctx := r.Context()
	maxFiles, maxBytes := rt.maxFiles(), rt.maxFileBytes()
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxFiles+1)*maxBytes+multipartSlack)

	reader, err := r.MultipartReader()
	if err != nil {
		writeText(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	session, err := rt.stager.NewSession(ctx)
	if err != nil {
		writeError(w, r, fmt.Errorf("open staging session: %w", err))
		return
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("staging_cleanup_failed", "request_id", logging.RequestIDFromContext(ctx), "error", err)
		}
	}()

	count := 0
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if count > maxFiles {
				break
			}
			writeUploadError(w, r, err)
			return
		}
		name := uploadFileName(part)
		if part.FormName() != uploadField || name == "" {
			_ = part.Close()
			continue
		}
		count++
		if count > maxFiles {
			// Keep counting so the message reports the real batch size.
			_, _ = io.Copy(io.Discard, part)
			_ = part.Close()
			continue
		}

		file, err := session.Add(ctx, name, io.LimitReader(part, maxBytes+1))
		_ = part.Close()
		if err != nil {
			writeUploadError(w, r, err)
			return
		}
		if file.Size > maxBytes {
			writeError(w, r, usecase.FileTooLargeError(file.Name, maxBytes))
			return
		}
	}
	if count > maxFiles {
		writeError(w, r, usecase.TooManyFilesError(count, maxFiles))
		return
	}

	// Bodies may take long to arrive; processing and the reply get a fresh budget.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(rt.processingBudget()))

	result, err := rt.organizer.Organize(ctx, session)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archiveName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Archive)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Archive)
}

func (rt *Router) notify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Email any `json:"email"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxNotifyBody)).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	email, ok := req.Email.(string)
	if !ok {
		writeText(w, http.StatusBadRequest, msgInvalidEmail)
		return
	}

	if err := rt.waitlist.Join(r.Context(), email); err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, "ok")
}

// uploadFileName returns the client's filename as sent. Part.FileName strips
// directories, which would make "2023/a.pdf" and "2024/a.pdf" collide; the
// sanitizer turns separators into underscores instead.
func uploadFileName(part *multipart.Part) string {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return part.FileName()
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeText(w, http.StatusBadRequest, "Upload too large.")
		return
	}
	slog.Warn("upload_read_failed", "request_id", logging.RequestIDFromContext(r.Context()), "error", err)
	writeText(w, http.StatusBadRequest, msgBadRequest)
}
