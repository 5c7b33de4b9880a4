// Package formclient drives a contact form against the submission endpoint.
// It mirrors the behaviour of the site's in-browser controller: one request
// in flight at a time, a cleared form on success, preserved input and a
// displayable message on failure.
package formclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Status is the controller state. Transitions: idle -> sending -> sent on
// success, or sending -> error on failure. Error is not sticky; Submit may
// be called again.
type Status int

const (
	StatusIdle Status = iota
	StatusSending
	StatusSent
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSending:
		return "sending"
	case StatusSent:
		return "sent"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultProgram is the program a fresh form starts with.
const DefaultProgram = "General Inquiry"

// ErrInFlight is returned when Submit is called while a submission is
// already sending. The caller equivalent of a disabled submit button.
var ErrInFlight = errors.New("submission already in flight")

// Fixed messages for failures the server never described.
const (
	msgNetworkError = "Network error. Please try again."
	msgFallback     = "Something went wrong. Please try again."
)

// Values holds the form fields. Honey is the hidden honeypot input and
// stays empty for human submissions.
type Values struct {
	Name    string
	Email   string
	Phone   string
	Program string
	Message string
	Honey   string
}

func defaultValues() Values {
	return Values{Program: DefaultProgram}
}

// Controller manages one contact form instance.
type Controller struct {
	endpoint string
	client   *http.Client

	mu     sync.Mutex
	values Values
	status Status
	errMsg string
}

// New builds an idle controller posting to endpoint. A nil client uses
// http.DefaultClient.
func New(endpoint string, client *http.Client) *Controller {
	if client == nil {
		client = http.DefaultClient
	}
	return &Controller{
		endpoint: endpoint,
		client:   client,
		values:   defaultValues(),
	}
}

// Set replaces the form values, as typing into the form would.
func (c *Controller) Set(v Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = v
}

// Values returns the current form values.
func (c *Controller) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Status returns the controller state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ErrorMessage returns the displayable message for the last failed attempt,
// empty otherwise.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

type submitPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Program string `json:"program"`
	Message string `json:"message"`
	Honey   string `json:"honey"`
}

type submitResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Submit fires exactly one request with the current values. On success the
// form resets to defaults; on failure the entered values are preserved so
// the user can correct and resubmit.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusSending {
		c.mu.Unlock()
		return ErrInFlight
	}
	c.status = StatusSending
	c.errMsg = ""
	v := c.values
	c.mu.Unlock()

	body, err := json.Marshal(submitPayload{
		Name:    v.Name,
		Email:   v.Email,
		Phone:   v.Phone,
		Program: v.Program,
		Message: v.Message,
		Honey:   v.Honey,
	})
	if err != nil {
		c.fail(msgFallback)
		return fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		c.fail(msgNetworkError)
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// The request never completed; the server-provided message path
		// does not apply.
		c.fail(msgNetworkError)
		return fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := msgFallback
		var decoded submitResponse
		if json.NewDecoder(resp.Body).Decode(&decoded) == nil && decoded.Error != "" {
			msg = decoded.Error
		}
		c.fail(msg)
		return fmt.Errorf("submit: server returned %d", resp.StatusCode)
	}

	c.mu.Lock()
	c.values = defaultValues()
	c.status = StatusSent
	c.mu.Unlock()

	return nil
}

func (c *Controller) fail(msg string) {
	c.mu.Lock()
	c.status = StatusError
	c.errMsg = msg
	c.mu.Unlock()
}
