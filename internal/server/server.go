// Package server wires the site together: routed pages, static assets,
// sitemap and robots endpoints, and the contact form API.
package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/meridianaero/flightsite/internal/assets"
	"github.com/meridianaero/flightsite/internal/config"
	"github.com/meridianaero/flightsite/internal/contact"
	siteerrors "github.com/meridianaero/flightsite/internal/errors"
	"github.com/meridianaero/flightsite/internal/mail"
	"github.com/meridianaero/flightsite/internal/middleware"
	"github.com/meridianaero/flightsite/internal/pages"
	"github.com/meridianaero/flightsite/internal/robots"
	"github.com/meridianaero/flightsite/internal/router"
	"github.com/meridianaero/flightsite/internal/sitemap"
)

// Server serves the site from a validated config and an asset source.
type Server struct {
	cfg      *config.Config
	source   *assets.Source
	cache    *assets.Cache
	renderer *pages.Renderer
	contact  *contact.Service
	logger   *slog.Logger
	dev      bool

	handler     http.Handler
	pageCache   sync.Map // route path -> *renderedPage
	sitemapBody []byte
	robotsBody  []byte
}

type renderedPage struct {
	body    []byte
	etag    string
	modTime time.Time
}

type contactResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

const msgBadRequestBody = "Invalid request body."

// New validates cfg against the asset source and builds the full handler
// chain. sender may be nil; contact submissions then report a configuration
// error instead of attempting delivery.
func New(cfg *config.Config, src *assets.Source, mailCfg mail.Config, sender mail.Sender, logger *slog.Logger, dev bool) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if src == nil {
		return nil, errors.New("asset source is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.Validate(src.PageExists); err != nil {
		return nil, err
	}

	pagesFS, err := src.Sub("pages")
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		source:   src,
		cache:    assets.NewCache(src),
		renderer: pages.New(pagesFS, nil),
		contact:  contact.NewService(mailCfg, sender, cfg.Site.Name, logger),
		logger:   logger,
		dev:      dev,
	}

	generated := src.GeneratedAt
	if generated.IsZero() {
		generated = cfg.LoadedAt()
	}

	s.sitemapBody, err = sitemap.Build(cfg.Site.BaseURL, cfg.RoutesByPath(), generated)
	if err != nil {
		return nil, err
	}
	s.robotsBody, err = robots.Build(cfg.Site.BaseURL, cfg.Site.RobotsPolicy)
	if err != nil {
		return nil, err
	}

	s.handler = middleware.Chain(
		s.buildRouter(),
		middleware.RequestID(""),
		middleware.Recover(logger, s.handlePanic),
		middleware.Logging(logger),
		middleware.Gzip(-1),
	)

	return s, nil
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) buildRouter() *router.Mux {
	mux := router.New()

	mux.HandleFunc("/api/contact", s.handleContact)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/sitemap.xml", s.handleSitemap)
	mux.HandleFunc("/robots.txt", s.handleRobots)
	mux.HandlePrefix("/static/", http.HandlerFunc(s.handleStatic))

	for _, rt := range s.cfg.Routes {
		mux.Handle(rt.Path, s.pageHandler(rt))
	}

	mux.NotFound(http.HandlerFunc(s.handleNotFound))

	return mux
}

// handleContact accepts a JSON form post and runs it through the submission
// pipeline. Every non-2xx answer carries a user-facing message; operator
// detail goes to the log only.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeJSON(w, http.StatusMethodNotAllowed, contactResponse{Error: "Method not allowed."})
		return
	}

	sub, err := contact.Decode(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, contactResponse{Error: msgBadRequestBody})
		return
	}

	err = s.contact.Process(r.Context(), sub)
	if err == nil {
		s.writeJSON(w, http.StatusOK, contactResponse{OK: true})
		return
	}

	requestID := middleware.RequestIDFromContext(r.Context())

	var verr *contact.ValidationError
	if errors.As(err, &verr) {
		s.writeJSON(w, http.StatusBadRequest, contactResponse{Error: contact.MsgMissingFields})
		return
	}

	var cerr *contact.ConfigurationError
	if errors.As(err, &cerr) {
		s.logger.Error("contact submission rejected, mail transport not configured",
			"missing", cerr.Missing,
			"request_id", requestID,
		)
		s.writeJSON(w, http.StatusInternalServerError, contactResponse{Error: contact.MsgNotConfigured})
		return
	}

	var derr *mail.DeliveryError
	if errors.As(err, &derr) {
		s.logger.Error("contact notification delivery failed",
			"provider", derr.Provider,
			"code", derr.Code,
			"detail", derr.Detail,
			"request_id", requestID,
		)
	} else {
		s.logger.Error("contact submission failed", "error", err, "request_id", requestID)
	}
	s.writeJSON(w, http.StatusInternalServerError, contactResponse{Error: contact.MsgDeliveryFailed})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(s.sitemapBody)
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(s.robotsBody)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}

	if s.dev {
		s.cache.Invalidate(name)
	}

	asset, err := s.cache.Get(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	header := w.Header()
	header.Set("Content-Type", asset.MIME)
	header.Set("ETag", asset.ETag)
	if !asset.LastModified.IsZero() {
		header.Set("Last-Modified", asset.LastModified.UTC().Format(http.TimeFormat))
	}
	if !s.dev {
		header.Set("Cache-Control", "public, max-age=3600")
	}

	if notModified(r, asset.ETag, asset.LastModified) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	_, _ = w.Write(asset.Body)
}

func (s *Server) pageHandler(rt config.Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		page, err := s.renderRoute(rt)
		if err != nil {
			s.logger.Error("page render failed",
				"path", rt.Path,
				"page", rt.Page,
				"error", err,
				"request_id", middleware.RequestIDFromContext(r.Context()),
			)
			s.writeErrorPage(w, http.StatusInternalServerError)
			return
		}

		header := w.Header()
		header.Set("Content-Type", "text/html; charset=utf-8")
		header.Set("ETag", page.etag)
		if !page.modTime.IsZero() {
			header.Set("Last-Modified", page.modTime.UTC().Format(http.TimeFormat))
		}
		for key, val := range s.cfg.HeaderDirectives(rt.Path) {
			header.Set(key, val)
		}

		if notModified(r, page.etag, page.modTime) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(page.body)
	})
}

func (s *Server) renderRoute(rt config.Route) (*renderedPage, error) {
	if !s.dev {
		if v, ok := s.pageCache.Load(rt.Path); ok {
			return v.(*renderedPage), nil
		}
	} else {
		s.renderer.Invalidate(rt.Page)
	}

	body, err := s.renderer.Render(rt.Page, s.pageData(rt.Title, rt.Path))
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(body)
	page := &renderedPage{
		body:    body,
		etag:    `"` + hex.EncodeToString(sum[:]) + `"`,
		modTime: s.source.GeneratedAt,
	}
	if mt, err := s.source.ModTime("pages/" + rt.Page); err == nil {
		page.modTime = mt
	}

	if !s.dev {
		s.pageCache.Store(rt.Path, page)
	}

	return page, nil
}

func (s *Server) pageData(title, routePath string) pages.PageData {
	return pages.PageData{
		Title:     title,
		SiteName:  s.cfg.Site.Name,
		BaseURL:   s.cfg.Site.BaseURL,
		RoutePath: routePath,
		Year:      time.Now().UTC().Year(),
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeErrorPage(w, http.StatusNotFound)
}

func (s *Server) handlePanic(w http.ResponseWriter, r *http.Request, _ any) {
	s.writeErrorPage(w, http.StatusInternalServerError)
}

// writeErrorPage serves the site's 404/500 override when the pack ships one,
// falling back to the built-in pages.
func (s *Server) writeErrorPage(w http.ResponseWriter, status int) {
	name := "500.html"
	builtin := siteerrors.Default500
	if status == http.StatusNotFound {
		name = "404.html"
		builtin = siteerrors.Default404
	}

	data := s.pageData("", "")

	var body []byte
	if s.renderer.Exists(name) {
		if rendered, err := s.renderer.Render(name, data); err == nil {
			body = rendered
		}
	}
	if body == nil {
		body = builtin(data)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write json response", "error", err)
	}
}

// notModified applies If-None-Match first, then If-Modified-Since, per
// RFC 9110 precedence.
func notModified(r *http.Request, etag string, modTime time.Time) bool {
	if match := r.Header.Get("If-None-Match"); match != "" {
		if match == "*" {
			return true
		}
		for _, candidate := range strings.Split(match, ",") {
			candidate = strings.TrimSpace(candidate)
			candidate = strings.TrimPrefix(candidate, "W/")
			if candidate == etag {
				return true
			}
		}
		return false
	}

	if since := r.Header.Get("If-Modified-Since"); since != "" && !modTime.IsZero() {
		if t, err := http.ParseTime(since); err == nil {
			return !modTime.Truncate(time.Second).After(t)
		}
	}

	return false
}
