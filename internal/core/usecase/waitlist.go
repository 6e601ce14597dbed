package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/core/ports"
)

type WaitlistUseCase struct {
	store  ports.WaitlistStore
	events ports.EventPublisher
	now    func() time.Time
}

func NewWaitlistUseCase(store ports.WaitlistStore, events ports.EventPublisher) *WaitlistUseCase {
	return &WaitlistUseCase{
		store:  store,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (uc *WaitlistUseCase) Join(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !isValidEmail(email) {
		return domain.NewUserError(domain.ErrInvalidInput, "Invalid email")
	}

	entry := domain.WaitlistEntry{Email: email, JoinedAt: uc.now()}
	if err := uc.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append waitlist entry: %w", err)
	}

	if uc.events != nil {
		if err := uc.events.PublishWaitlistJoined(ctx, entry); err != nil {
			slog.Warn("publish_waitlist_joined_failed", "error", err)
		}
	}
	return nil
}

func isValidEmail(email string) bool {
	return email != "" && strings.Contains(email, "@") && strings.Contains(email, ".")
}
