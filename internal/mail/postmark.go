package mail

import (
	"context"
	"strings"

	"github.com/mrz1836/postmark"
)

// Postmark sends messages through the Postmark transactional API.
type Postmark struct {
	client *postmark.Client
}

// NewPostmark builds a Postmark sender from the configured server token.
// The account token is optional for plain sends.
func NewPostmark(cfg Config) *Postmark {
	return &Postmark{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
	}
}

// Send delivers msg via Postmark. Both transport-level failures and API
// error codes are reported as *DeliveryError.
func (p *Postmark) Send(ctx context.Context, msg Message) error {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     msg.From,
		To:       strings.Join(msg.To, ","),
		ReplyTo:  msg.ReplyTo,
		Subject:  msg.Subject,
		TextBody: msg.Text,
		HTMLBody: msg.HTML,
	})
	if err != nil {
		return &DeliveryError{Provider: ProviderPostmark, Detail: err.Error(), Err: err}
	}
	if resp.ErrorCode > 0 {
		return &DeliveryError{Provider: ProviderPostmark, Code: int(resp.ErrorCode), Detail: resp.Message}
	}

	return nil
}
