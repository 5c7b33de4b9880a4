package mail

import (
	"context"
	"fmt"

	mailgun "github.com/mailgun/mailgun-go/v5"
)

// Mailgun sends messages through the Mailgun messages API.
type Mailgun struct {
	domain string
	client mailgun.Mailgun
}

// NewMailgun builds a Mailgun sender. A nil client constructs the default
// one from the configured API key; tests supply their own pointed at a fake
// endpoint.
func NewMailgun(cfg Config, client mailgun.Mailgun) *Mailgun {
	if client == nil {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}
	return &Mailgun{domain: cfg.MailgunDomain, client: client}
}

// Send delivers msg via Mailgun. Failures are reported as *DeliveryError.
func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	out := mailgun.NewMessage(m.domain, msg.From, msg.Subject, msg.Text)

	for _, to := range msg.To {
		if err := out.AddRecipient(to); err != nil {
			return fmt.Errorf("add recipient: %w", err)
		}
	}
	if msg.ReplyTo != "" {
		out.SetReplyTo(msg.ReplyTo)
	}
	if msg.HTML != "" {
		out.SetHTML(msg.HTML)
	}

	if _, err := m.client.Send(ctx, out); err != nil {
		return &DeliveryError{Provider: ProviderMailgun, Detail: err.Error(), Err: err}
	}

	return nil
}
