package mail

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported provider names for Config.Provider.
const (
	ProviderMailgun  = "mailgun"
	ProviderPostmark = "postmark"
	// ProviderOutbox writes messages to a local directory instead of
	// sending them. Development only.
	ProviderOutbox = "outbox"
)

// Config holds the outbound transport settings, loaded once at startup from
// the environment. Secrets stay inside this struct; diagnostics expose only
// the names of missing settings, never their values.
type Config struct {
	Provider string `env:"MAIL_PROVIDER" envDefault:"mailgun"`

	From       string   `env:"MAIL_FROM"`
	Recipients []string `env:"MAIL_TO" envSeparator:","`

	MailgunDomain string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey string `env:"MAILGUN_API_KEY"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	OutboxDir string `env:"MAIL_OUTBOX_DIR" envDefault:"outbox"`

	SendTimeout time.Duration `env:"MAIL_SEND_TIMEOUT" envDefault:"15s"`
}

// Load parses the transport configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse mail config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.From = strings.TrimSpace(c.From)
	c.MailgunDomain = strings.TrimSpace(c.MailgunDomain)
	c.MailgunAPIKey = strings.TrimSpace(c.MailgunAPIKey)
	c.PostmarkServerToken = strings.TrimSpace(c.PostmarkServerToken)
	c.PostmarkAccountToken = strings.TrimSpace(c.PostmarkAccountToken)
	c.OutboxDir = strings.TrimSpace(c.OutboxDir)

	recipients := make([]string, 0, len(c.Recipients))
	for _, r := range c.Recipients {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		recipients = append(recipients, r)
	}
	c.Recipients = recipients

	if c.SendTimeout <= 0 {
		c.SendTimeout = 15 * time.Second
	}
}

// Configured reports whether every setting required by the selected provider
// is present. Delivery must not be attempted otherwise.
func (c Config) Configured() bool {
	return len(c.Missing()) == 0
}

// Missing enumerates the names of required settings that are absent. The
// returned names are safe to log.
func (c Config) Missing() []string {
	var missing []string

	if c.From == "" {
		missing = append(missing, "MAIL_FROM")
	}
	if len(c.Recipients) == 0 {
		missing = append(missing, "MAIL_TO")
	}

	switch c.Provider {
	case ProviderMailgun:
		if c.MailgunDomain == "" {
			missing = append(missing, "MAILGUN_DOMAIN")
		}
		if c.MailgunAPIKey == "" {
			missing = append(missing, "MAILGUN_API_KEY")
		}
	case ProviderPostmark:
		if c.PostmarkServerToken == "" {
			missing = append(missing, "POSTMARK_SERVER_TOKEN")
		}
	case ProviderOutbox:
		if c.OutboxDir == "" {
			missing = append(missing, "MAIL_OUTBOX_DIR")
		}
	default:
		missing = append(missing, "MAIL_PROVIDER")
	}

	return missing
}
