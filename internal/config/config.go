// Package config loads the JSON site configuration: site identity, the
// route table and per-route response headers. Mail transport settings live
// in internal/mail and come from the environment instead.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Config is the runtime configuration for the site server.
type Config struct {
	Site    Site                         `json:"site"`
	Routes  []Route                      `json:"routes"`
	Headers map[string]map[string]string `json:"headers"`

	loadedAt time.Time
	source   string
}

// Site holds global site metadata. Name appears in page footers and in the
// attribution line of outbound contact notifications.
type Site struct {
	Name         string `json:"name"`
	BaseURL      string `json:"base_url"`
	RobotsPolicy string `json:"robots_policy"`
}

// Route maps an HTTP path onto a template page.
type Route struct {
	Path  string `json:"path"`
	Page  string `json:"page"`
	Title string `json:"title"`
}

// Load reads and parses the JSON configuration file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	cfg.source = path
	cfg.loadedAt = time.Now().UTC()

	return cfg, nil
}

// Parse constructs a Config from raw JSON bytes. Unknown fields are
// rejected so typos fail loudly instead of silently configuring nothing.
func Parse(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()

	return &cfg, nil
}

func (c *Config) normalize() {
	c.Site.Name = strings.TrimSpace(c.Site.Name)
	c.Site.BaseURL = strings.TrimSpace(c.Site.BaseURL)

	if c.Headers == nil {
		c.Headers = make(map[string]map[string]string)
	}

	normalized := make(map[string]map[string]string, len(c.Headers))
	for path, hdrs := range c.Headers {
		if hdrs == nil {
			continue
		}
		clean := make(map[string]string, len(hdrs))
		for key, val := range hdrs {
			clean[canonicalHeaderKey(key)] = strings.TrimSpace(val)
		}
		normalized[cleanPath(path)] = clean
	}
	c.Headers = normalized
}

// Validate checks internal consistency and, via pageExists, that every
// routed page actually exists in the asset source.
func (c *Config) Validate(pageExists func(name string) bool) error {
	if c == nil {
		return errors.New("config is nil")
	}
	if pageExists == nil {
		return errors.New("pageExists is nil")
	}

	if err := c.validateSite(); err != nil {
		return err
	}

	if len(c.Routes) == 0 {
		return errors.New("config.routes must contain at least one entry")
	}

	seen := make(map[string]struct{}, len(c.Routes))

	for i := range c.Routes {
		rt := &c.Routes[i]

		if rt.Path == "" {
			return fmt.Errorf("route %d: path is required", i)
		}
		rt.Path = cleanPath(rt.Path)

		if _, ok := seen[rt.Path]; ok {
			return fmt.Errorf("duplicate route path %q", rt.Path)
		}
		seen[rt.Path] = struct{}{}

		if rt.Page == "" {
			return fmt.Errorf("route %s: page is required", rt.Path)
		}
		rt.Page = filepath.ToSlash(rt.Page)

		if strings.Contains(rt.Page, "..") {
			return fmt.Errorf("route %s: page must not contain '..'", rt.Path)
		}
		if !pageExists(rt.Page) {
			return fmt.Errorf("route %s: page %q not found", rt.Path, rt.Page)
		}

		if rt.Title == "" {
			rt.Title = defaultTitleFromPage(rt.Page)
		}
	}

	return nil
}

func (c *Config) validateSite() error {
	if c.Site.Name == "" {
		return errors.New("site.name is required")
	}
	if c.Site.BaseURL == "" {
		return errors.New("site.base_url is required")
	}

	u, err := url.Parse(c.Site.BaseURL)
	if err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("site.base_url must include scheme and host")
	}

	return nil
}

// HeaderDirectives returns a copy of the configured headers for path.
func (c *Config) HeaderDirectives(path string) map[string]string {
	if c == nil || c.Headers == nil {
		return nil
	}

	headers := c.Headers[cleanPath(path)]
	if len(headers) == 0 {
		return nil
	}

	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}

	return out
}

// RoutesByPath returns routes sorted by path for deterministic output.
func (c *Config) RoutesByPath() []Route {
	if c == nil {
		return nil
	}

	routes := make([]Route, len(c.Routes))
	copy(routes, c.Routes)

	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	return routes
}

// LoadedAt returns when the config was read.
func (c *Config) LoadedAt() time.Time {
	return c.loadedAt
}

// Source returns the backing config location for diagnostics.
func (c *Config) Source() string {
	return c.source
}

// WithLoadedTime overrides the loadedAt timestamp. Useful for tests and
// embedded configs.
func (c *Config) WithLoadedTime(t time.Time) {
	if c != nil {
		c.loadedAt = t
	}
}

// WithSource sets the configuration source identifier.
func (c *Config) WithSource(src string) {
	if c != nil {
		c.source = src
	}
}

func cleanPath(p string) string {
	if p == "" {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func canonicalHeaderKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	parts := strings.Split(s, "-")
	for i, part := range parts {
		parts[i] = titleCase(part)
	}

	return strings.Join(parts, "-")
}

func titleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}

	runes := []rune(s)
	if 'a' <= runes[0] && runes[0] <= 'z' {
		runes[0] -= 'a' - 'A'
	}
	return string(runes)
}

func defaultTitleFromPage(page string) string {
	base := filepath.Base(page)
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}

	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")

	words := strings.Fields(base)
	for i, w := range words {
		words[i] = titleCase(w)
	}
	return strings.Join(words, " ")
}
