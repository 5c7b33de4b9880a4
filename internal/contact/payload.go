// Package contact implements the lead-submission pipeline: decode and trim
// the submitted form, trap honeypot spam, enforce required fields, compose
// the notification email and hand it to the mail transport.
package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Submission is the canonical shape of a contact form post. Every field
// arrives as a string; Normalize trims the visible ones and absent fields
// stay empty.
type Submission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"phone"`
	Program string `json:"program"`
	Message string `json:"message" validate:"required"`

	// Honey is the honeypot trap: hidden from humans, filled by bots.
	Honey string `json:"honey"`
}

// Decode parses a submission from a JSON request body and normalizes it. The
// body must be exactly one JSON value; trailing content is rejected.
func Decode(r io.Reader) (Submission, error) {
	dec := json.NewDecoder(r)

	var sub Submission
	if err := dec.Decode(&sub); err != nil {
		return Submission{}, fmt.Errorf("decode submission: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Submission{}, errors.New("decode submission: trailing content after body")
	}

	sub.Normalize()
	return sub, nil
}

// Normalize trims surrounding whitespace from the visible fields. Honey is
// left untouched: the trap must fire on whatever the bot wrote, whitespace
// included.
func (s *Submission) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Program = strings.TrimSpace(s.Program)
	s.Message = strings.TrimSpace(s.Message)
}

// Trapped reports whether the honeypot field was filled in. Any non-empty
// value traps, before any trimming.
func (s Submission) Trapped() bool {
	return s.Honey != ""
}
