package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/resilience"
)

type published struct {
	subject string
	data    []byte
}

type connFake struct {
	msgs   []published
	errs   []error
	closed bool
}

func (c *connFake) Publish(subject string, data []byte) error {
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return err
		}
	}
	c.msgs = append(c.msgs, published{subject: subject, data: data})
	return nil
}

func (c *connFake) Close() { c.closed = true }

func TestPublishPackageGeneratedUsesPrefixedSubject(t *testing.T) {
	fake := &connFake{}
	pub := newPublisher(fake, "rts.", nil)

	err := pub.PublishPackageGenerated(context.Background(), domain.PackageGenerated{
		RequestID: "req-1",
		Files:     3,
	})
	if err != nil {
		t.Fatalf("PublishPackageGenerated() error = %v", err)
	}
	if len(fake.msgs) != 1 || fake.msgs[0].subject != "rts.package.generated" {
		t.Fatalf("unexpected messages %+v", fake.msgs)
	}

	var got domain.PackageGenerated
	if err := json.Unmarshal(fake.msgs[0].data, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.RequestID != "req-1" || got.Files != 3 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestPublishWaitlistJoinedDefaultsPrefix(t *testing.T) {
	fake := &connFake{}
	pub := newPublisher(fake, "  ", nil)

	entry := domain.WaitlistEntry{Email: "ada@example.com", JoinedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	if err := pub.PublishWaitlistJoined(context.Background(), entry); err != nil {
		t.Fatalf("PublishWaitlistJoined() error = %v", err)
	}
	if fake.msgs[0].subject != "readytosend.waitlist.joined" {
		t.Fatalf("unexpected subject %q", fake.msgs[0].subject)
	}
}

func TestPublishRetriesDisconnect(t *testing.T) {
	fake := &connFake{errs: []error{nats.ErrDisconnected, nil}}
	cfg := resilience.PublishConfig()
	cfg.Backoff = time.Millisecond
	cfg.Breaker.Enabled = false
	pub := newPublisher(fake, "rts", resilience.NewExecutor(cfg))

	if err := pub.PublishPackageGenerated(context.Background(), domain.PackageGenerated{}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(fake.msgs) != 1 {
		t.Fatalf("expected one delivered message, got %d", len(fake.msgs))
	}
}

func TestPublishConnectionFailureIsTemporary(t *testing.T) {
	fake := &connFake{errs: []error{nats.ErrConnectionClosed}}
	pub := newPublisher(fake, "rts", nil)

	err := pub.PublishPackageGenerated(context.Background(), domain.PackageGenerated{})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if !errors.Is(err, nats.ErrConnectionClosed) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestClosePropagates(t *testing.T) {
	fake := &connFake{}
	newPublisher(fake, "rts", nil).Close()
	if !fake.closed {
		t.Fatalf("expected connection to be closed")
	}
}
