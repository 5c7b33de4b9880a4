// Package robots renders robots.txt from the configured crawl policy.
package robots

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
)

const defaultPolicy = "User-agent: *\nAllow: /"

// ErrBaseURLRequired is returned when the base URL is missing.
var ErrBaseURLRequired = errors.New("base URL is required")

// Build constructs the robots.txt payload. The sitemap URL is appended, or
// rewritten when the policy already carries one, so it always points at the
// served sitemap.
func Build(baseURL, policy string) ([]byte, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()

	if strings.TrimSpace(policy) == "" {
		policy = defaultPolicy
	}

	lines := policyLines(policy)

	rewrote := false
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			lines[i] = "Sitemap: " + sitemapURL
			rewrote = true
		}
	}
	if !rewrote {
		lines = append(lines, "Sitemap: "+sitemapURL)
	}

	var buf bytes.Buffer
	for i, line := range lines {
		buf.WriteString(line)
		if i < len(lines)-1 {
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes(), nil
}

func policyLines(policy string) []string {
	policy = strings.ReplaceAll(policy, "\r\n", "\n")
	policy = strings.ReplaceAll(policy, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
