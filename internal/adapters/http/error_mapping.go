package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/observability/logging"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrBudgetExceeded):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrAITimeout):
		return http.StatusRequestTimeout
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func fallbackMessage(status int) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "Service temporarily unavailable. Please try again."
	case http.StatusBadRequest:
		return "Bad request"
	default:
		return "Something went wrong. Please try again."
	}
}

// writeError prints the error's user message when it carries one. Internal
// details only reach the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	msg, ok := domain.UserMessage(err)
	if !ok {
		msg = fallbackMessage(status)
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed", "request_id", logging.RequestIDFromContext(r.Context()), "status", status, "error", err)
	}
	writeText(w, status, msg)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
