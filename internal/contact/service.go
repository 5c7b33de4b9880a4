package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/meridianaero/flightsite/internal/mail"
)

// User-facing messages. The validation message is specific and actionable;
// operator problems stay generic so deployment detail never leaks.
const (
	MsgMissingFields  = "Please fill out name, email, and message."
	MsgNotConfigured  = "Email service not configured"
	MsgDeliveryFailed = "Server error. Please try again later."
)

// ValidationError marks a submission missing one or more required fields.
// Recoverable by the user; maps to HTTP 400.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ConfigurationError marks an incomplete mail transport configuration.
// An operator problem, not a user one; maps to HTTP 500. Missing holds
// setting names only.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) == 0 {
		return "mail transport unavailable"
	}
	return "mail transport missing settings: " + strings.Join(e.Missing, ", ")
}

// Service runs the submission pipeline. It holds the read-only transport
// configuration loaded at startup; requests share no other state.
type Service struct {
	cfg      mail.Config
	sender   mail.Sender
	validate *validator.Validate
	logger   *slog.Logger
	site     string
}

// NewService constructs the pipeline. sender may be nil when the transport
// is unconfigured; Process then reports a ConfigurationError instead of
// attempting delivery.
func NewService(cfg mail.Config, sender mail.Sender, site string, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		sender:   sender,
		validate: validator.New(),
		logger:   logger,
		site:     site,
	}
}

// Process runs one submission through the pipeline: spam guard, required
// fields, configuration guard, compose, send. A nil return means the caller
// should answer with success; trapped spam intentionally looks identical so
// bots do not learn to avoid the honeypot.
func (s *Service) Process(ctx context.Context, sub Submission) error {
	sub.Normalize()

	if sub.Trapped() {
		if s.logger != nil {
			s.logger.Debug("honeypot tripped, submission discarded")
		}
		return nil
	}

	if err := s.validate.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate submission: %w", err)
		}

		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return &ValidationError{Fields: fields}
	}

	if s.sender == nil || !s.cfg.Configured() {
		return &ConfigurationError{Missing: s.cfg.Missing()}
	}

	content := Compose(sub, s.site)

	msg := mail.Message{
		From:    s.cfg.From,
		To:      s.cfg.Recipients,
		ReplyTo: sub.Email,
		Subject: content.Subject,
		Text:    content.Text,
		HTML:    content.HTML,
	}

	sendCtx := ctx
	if s.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
	}

	if err := s.sender.Send(sendCtx, msg); err != nil {
		var delivery *mail.DeliveryError
		if errors.As(err, &delivery) {
			return err
		}
		// Timeouts and transport-level failures get the same taxonomy as
		// provider rejections.
		return &mail.DeliveryError{Provider: s.cfg.Provider, Detail: err.Error(), Err: err}
	}

	return nil
}
