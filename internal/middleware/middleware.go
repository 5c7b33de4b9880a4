// Package middleware provides the handler chain wrapped around the site
// router: request IDs, panic recovery, request logging and gzip.
package middleware

import (
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ctxKeyRequestID struct{}

// Chain applies middleware in order: the first element is outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID attaches a request ID to the context and the response headers,
// reusing the inbound header when a proxy already assigned one.
func RequestID(header string) func(http.Handler) http.Handler {
	if header == "" {
		header = "X-Request-Id"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(header)
			if id == "" {
				id = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, id)
			w.Header().Set(header, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the request ID, or empty when absent.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(ctxKeyRequestID{}).(string); ok {
		return id
	}
	return ""
}

// Recover converts panics into a logged 500 via onPanic.
func Recover(logger *slog.Logger, onPanic func(http.ResponseWriter, *http.Request, any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if logger != nil {
						logger.Error("panic recovered",
							"error", rec,
							"method", r.Method,
							"path", r.URL.Path,
							"request_id", RequestIDFromContext(r.Context()),
						)
					}
					if onPanic != nil {
						onPanic(w, r, rec)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Logging emits one structured record per request. Static asset requests
// are skipped to keep the log signal useful.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"ip", clientIP(r),
				"request_id", RequestIDFromContext(r.Context()),
			)
		})
	}
}

// Gzip compresses response bodies for clients that accept it. Error
// responses stay uncompressed so their Content-Length survives.
func Gzip(level int) func(http.Handler) http.Handler {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}

	pool := sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(io.Discard, level)
			return w
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			gz := &gzipWriter{ResponseWriter: w, pool: &pool, compress: true}
			defer func() {
				if rec := recover(); rec != nil {
					gz.disable()
					panic(rec)
				}
				gz.close()
			}()

			next.ServeHTTP(gz, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

type gzipWriter struct {
	http.ResponseWriter
	pool        *sync.Pool
	writer      *gzip.Writer
	wroteHeader bool
	compress    bool
}

func (g *gzipWriter) WriteHeader(code int) {
	if code >= 400 {
		g.disable()
	}
	g.wroteHeader = true
	g.ResponseWriter.WriteHeader(code)
}

func (g *gzipWriter) Write(p []byte) (int, error) {
	if !g.compress {
		if !g.wroteHeader {
			g.WriteHeader(http.StatusOK)
		}
		return g.ResponseWriter.Write(p)
	}

	if g.writer == nil {
		gw := g.pool.Get().(*gzip.Writer)
		gw.Reset(g.ResponseWriter)
		g.writer = gw

		header := g.Header()
		header.Del("Content-Length")
		header.Set("Content-Encoding", "gzip")
		header.Add("Vary", "Accept-Encoding")
	}
	if !g.wroteHeader {
		g.WriteHeader(http.StatusOK)
	}

	return g.writer.Write(p)
}

func (g *gzipWriter) Flush() {
	if g.writer != nil {
		_ = g.writer.Flush()
	}
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (g *gzipWriter) close() {
	if g.writer == nil {
		return
	}
	_ = g.writer.Close()
	g.pool.Put(g.writer)
	g.writer = nil
}

func (g *gzipWriter) disable() {
	if !g.compress {
		return
	}
	g.compress = false

	if g.writer != nil {
		g.writer.Reset(io.Discard)
		_ = g.writer.Close()
		g.pool.Put(g.writer)
		g.writer = nil
	}

	header := g.Header()
	header.Del("Content-Encoding")
	header.Del("Content-Length")
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
