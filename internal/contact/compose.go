package contact

import (
	"fmt"
	"strings"
)

// Content is the composed notification, ready for the transport. Composition
// is pure and deterministic: office mail filters key on these exact bytes.
type Content struct {
	Subject string
	Text    string
	HTML    string
}

// Compose builds the notification email for a valid submission. site names
// the website in the footer attribution line.
func Compose(sub Submission, site string) Content {
	subject := "New Contact Form Submission — " + sub.Name

	text := strings.Join([]string{
		"New contact form submission",
		"",
		"Name: " + sub.Name,
		"Email: " + sub.Email,
		"Phone: " + orNA(sub.Phone),
		"Program: " + orNA(sub.Program),
		"",
		"Message:",
		sub.Message,
		"",
		"---",
		"Sent from " + site + " website",
	}, "\n")

	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;line-height:1.5">
  <h2 style="margin:0 0 10px">New Contact Form Submission</h2>
  <p><strong>Name:</strong> %s</p>
  <p><strong>Email:</strong> %s</p>
  <p><strong>Phone:</strong> %s</p>
  <p><strong>Program:</strong> %s</p>
  <hr />
  <p><strong>Message:</strong></p>
  <p style="white-space:pre-wrap">%s</p>
  <hr />
  <p style="color:#555">Sent from %s website</p>
</div>
`,
		escapeHTML(sub.Name),
		escapeHTML(sub.Email),
		escapeHTML(orNA(sub.Phone)),
		escapeHTML(orNA(sub.Program)),
		escapeHTML(sub.Message),
		escapeHTML(site),
	)

	return Content{Subject: subject, Text: text, HTML: html}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// htmlEscaper covers the characters that allow markup injection into the
// rendered email. Single pass, so already-escaped text is not double escaped
// mid-replacement.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
