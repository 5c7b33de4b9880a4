// Package mail delivers transactional messages produced by the contact
// pipeline. Providers are selected by configuration; every adapter satisfies
// Sender so the rest of the application never touches provider SDKs directly.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Message is a composed transactional email ready for delivery.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a single message. Implementations must honour ctx
// cancellation and must not retry on their own.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNotConfigured indicates the transport configuration is incomplete.
// Partial configuration is treated the same as no configuration at all.
var ErrNotConfigured = errors.New("mail transport not configured")

// DeliveryError reports a failed provider send. Detail carries the provider
// diagnostic for operator logs; it never contains credentials.
type DeliveryError struct {
	Provider string
	Code     int
	Detail   string
	Err      error
}

func (e *DeliveryError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("mail: %s delivery failed: %d %s", e.Provider, e.Code, e.Detail)
	}
	return fmt.Sprintf("mail: %s delivery failed: %s", e.Provider, e.Detail)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// NewSender constructs the Sender selected by cfg.Provider. The configuration
// must be complete; callers are expected to check cfg.Configured() first and
// treat a missing transport as a deployment problem, not a send-time one.
func NewSender(cfg Config) (Sender, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}

	switch cfg.Provider {
	case ProviderMailgun:
		return NewMailgun(cfg, nil), nil
	case ProviderPostmark:
		return NewPostmark(cfg), nil
	case ProviderOutbox:
		return NewOutbox(cfg.OutboxDir), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNotConfigured, cfg.Provider)
	}
}
