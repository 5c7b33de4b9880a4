package mail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "Mailgun")
	t.Setenv("MAIL_FROM", " Flight School <no-reply@example.com> ")
	t.Setenv("MAIL_TO", "admissions@example.com, office@example.com , ")
	t.Setenv("MAILGUN_DOMAIN", "mg.example.com")
	t.Setenv("MAILGUN_API_KEY", "key-123")
	t.Setenv("MAIL_SEND_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderMailgun, cfg.Provider)
	assert.Equal(t, "Flight School <no-reply@example.com>", cfg.From)
	assert.Equal(t, []string{"admissions@example.com", "office@example.com"}, cfg.Recipients)
	assert.Equal(t, 5*time.Second, cfg.SendTimeout)
	assert.True(t, cfg.Configured())
	assert.Empty(t, cfg.Missing())
}

func TestConfigMissing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		missing []string
	}{
		{
			name:    "empty mailgun",
			cfg:     Config{Provider: ProviderMailgun},
			missing: []string{"MAIL_FROM", "MAIL_TO", "MAILGUN_DOMAIN", "MAILGUN_API_KEY"},
		},
		{
			name: "partial mailgun is unconfigured",
			cfg: Config{
				Provider:      ProviderMailgun,
				From:          "no-reply@example.com",
				Recipients:    []string{"admissions@example.com"},
				MailgunDomain: "mg.example.com",
			},
			missing: []string{"MAILGUN_API_KEY"},
		},
		{
			name: "postmark needs server token only",
			cfg: Config{
				Provider:   ProviderPostmark,
				From:       "no-reply@example.com",
				Recipients: []string{"admissions@example.com"},
			},
			missing: []string{"POSTMARK_SERVER_TOKEN"},
		},
		{
			name: "unknown provider",
			cfg: Config{
				Provider:   "carrier-pigeon",
				From:       "no-reply@example.com",
				Recipients: []string{"admissions@example.com"},
			},
			missing: []string{"MAIL_PROVIDER"},
		},
		{
			name: "complete postmark",
			cfg: Config{
				Provider:            ProviderPostmark,
				From:                "no-reply@example.com",
				Recipients:          []string{"admissions@example.com"},
				PostmarkServerToken: "token",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.missing, tt.cfg.Missing())
			assert.Equal(t, len(tt.missing) == 0, tt.cfg.Configured())
		})
	}
}

func TestNewSenderRejectsIncompleteConfig(t *testing.T) {
	_, err := NewSender(Config{Provider: ProviderMailgun})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "MAILGUN_API_KEY")
	assert.NotContains(t, err.Error(), "key")
}

func TestNewSenderSelectsProvider(t *testing.T) {
	base := Config{
		From:       "no-reply@example.com",
		Recipients: []string{"admissions@example.com"},
	}

	mgCfg := base
	mgCfg.Provider = ProviderMailgun
	mgCfg.MailgunDomain = "mg.example.com"
	mgCfg.MailgunAPIKey = "key"

	sender, err := NewSender(mgCfg)
	require.NoError(t, err)
	assert.IsType(t, &Mailgun{}, sender)

	pmCfg := base
	pmCfg.Provider = ProviderPostmark
	pmCfg.PostmarkServerToken = "token"

	sender, err = NewSender(pmCfg)
	require.NoError(t, err)
	assert.IsType(t, &Postmark{}, sender)

	boxCfg := base
	boxCfg.Provider = ProviderOutbox
	boxCfg.OutboxDir = t.TempDir()

	sender, err = NewSender(boxCfg)
	require.NoError(t, err)
	assert.IsType(t, &Outbox{}, sender)
}
