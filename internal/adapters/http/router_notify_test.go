package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/ready-to-send/internal/config"
	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/core/usecase"
)

type waitlistStoreFake struct {
	entries []domain.WaitlistEntry
	err     error
}

func (f *waitlistStoreFake) Append(_ context.Context, entry domain.WaitlistEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func newNotifyHandler(store *waitlistStoreFake) http.Handler {
	return NewRouter(config.Config{}, nil, nil, usecase.NewWaitlistUseCase(store, nil), nil).Handler()
}

func postNotify(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestNotifyStoresValidEmail(t *testing.T) {
	store := &waitlistStoreFake{}
	res := postNotify(newNotifyHandler(store), `{"email":"  ada@example.com "}`)

	if res.Code != http.StatusOK || res.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", res.Code, res.Body.String())
	}
	if len(store.entries) != 1 || store.entries[0].Email != "ada@example.com" {
		t.Fatalf("unexpected stored entries %+v", store.entries)
	}
}

func TestNotifyRejectsInvalidEmail(t *testing.T) {
	for _, body := range []string{`{"email":"ada"}`, `{"email":""}`, `{}`, `{"email":42}`} {
		store := &waitlistStoreFake{}
		res := postNotify(newNotifyHandler(store), body)
		if res.Code != http.StatusBadRequest || res.Body.String() != "Invalid email" {
			t.Fatalf("%s: expected 400 Invalid email, got %d %q", body, res.Code, res.Body.String())
		}
		if len(store.entries) != 0 {
			t.Fatalf("%s: invalid email must not be stored", body)
		}
	}
}

func TestNotifyRejectsMalformedBody(t *testing.T) {
	res := postNotify(newNotifyHandler(&waitlistStoreFake{}), `{"email":`)
	if res.Code != http.StatusBadRequest || res.Body.String() != "Bad request" {
		t.Fatalf("expected 400 Bad request, got %d %q", res.Code, res.Body.String())
	}
}

func TestNotifyStoreFailureIs500(t *testing.T) {
	res := postNotify(newNotifyHandler(&waitlistStoreFake{err: errors.New("disk full")}), `{"email":"ada@example.com"}`)
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "disk full") {
		t.Fatalf("internal error leaked to client: %q", res.Body.String())
	}
}
