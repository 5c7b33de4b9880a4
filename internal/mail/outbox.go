package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Outbox writes messages to a local directory instead of sending them.
// Each message produces a .txt body (plus .html when present) and a .json
// metadata file so a developer can inspect exactly what would have gone out.
type Outbox struct {
	dir string
}

// NewOutbox builds an Outbox rooted at dir. The directory is created on the
// first send.
func NewOutbox(dir string) *Outbox {
	return &Outbox{dir: dir}
}

type outboxMeta struct {
	Timestamp string   `json:"timestamp"`
	From      string   `json:"from"`
	To        []string `json:"to"`
	ReplyTo   string   `json:"reply_to,omitempty"`
	Subject   string   `json:"subject"`
}

// Send writes msg to the outbox directory.
func (o *Outbox) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return fmt.Errorf("create outbox: %w", err)
	}

	now := time.Now()
	base := now.Format("2006_01_02_150405") + "_" + safeFilename(msg.Subject)

	if err := os.WriteFile(filepath.Join(o.dir, base+".txt"), []byte(msg.Text), 0o644); err != nil {
		return fmt.Errorf("write outbox text: %w", err)
	}

	if msg.HTML != "" {
		if err := os.WriteFile(filepath.Join(o.dir, base+".html"), []byte(msg.HTML), 0o644); err != nil {
			return fmt.Errorf("write outbox html: %w", err)
		}
	}

	meta, err := json.MarshalIndent(outboxMeta{
		Timestamp: now.Format(time.RFC3339),
		From:      msg.From,
		To:        msg.To,
		ReplyTo:   msg.ReplyTo,
		Subject:   msg.Subject,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outbox metadata: %w", err)
	}

	if err := os.WriteFile(filepath.Join(o.dir, base+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("write outbox metadata: %w", err)
	}

	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func safeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")

	const maxLen = 80
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	if s == "" {
		s = "message"
	}

	return strings.ToLower(s)
}
