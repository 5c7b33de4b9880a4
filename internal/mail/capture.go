package mail

import (
	"context"
	"sync"
)

// Capture records messages instead of delivering them. It backs the pipeline
// tests and doubles as a spy: the contact handler promises that spam and
// invalid submissions never reach the transport, which tests verify by
// asserting Count stays at zero.
type Capture struct {
	// Fail, when set, is returned by every Send without recording.
	Fail error

	mu   sync.Mutex
	sent []Message
}

// Send records msg, or returns Fail when configured.
func (c *Capture) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Fail != nil {
		return c.Fail
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

// Messages returns a copy of everything recorded so far.
func (c *Capture) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.sent))
	copy(out, c.sent)
	return out
}

// Count reports how many messages have been recorded.
func (c *Capture) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}
