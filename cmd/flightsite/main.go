// Command flightsite runs the Meridian Flight Academy site: static marketing
// pages plus the contact form API. Production builds serve the embedded pack;
// dev mode serves web/ from disk and re-reads files on every request.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/meridianaero/flightsite/build"
	"github.com/meridianaero/flightsite/internal/assets"
	"github.com/meridianaero/flightsite/internal/config"
	"github.com/meridianaero/flightsite/internal/log"
	"github.com/meridianaero/flightsite/internal/mail"
	"github.com/meridianaero/flightsite/internal/server"
)

func main() {
	// A missing .env is fine; the environment may be set by the deployment.
	_ = godotenv.Load()

	var (
		addr       = flag.String("addr", envOr("ADDR", ":8080"), "listen address")
		configPath = flag.String("config", envOr("CONFIG", "config.json"), "site configuration file")
		webDir     = flag.String("web", envOr("WEB_DIR", "web"), "content directory used in dev mode")
		logLevel   = flag.String("log-level", envOr("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
		dev        = flag.Bool("dev", envOr("DEV", "") == "true", "serve content from disk and disable caching")
	)
	flag.Parse()

	logger := log.New(*logLevel)

	cfg, err := loadConfig(*configPath, *dev)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	src, err := loadSource(*webDir, *dev)
	if err != nil {
		logger.Error("load content source", "error", err)
		os.Exit(1)
	}

	mailCfg, err := mail.Load()
	if err != nil {
		logger.Error("load mail config", "error", err)
		os.Exit(1)
	}

	var sender mail.Sender
	if mailCfg.Configured() {
		sender, err = mail.NewSender(mailCfg)
		if err != nil {
			logger.Error("init mail transport", "error", err)
			os.Exit(1)
		}
		logger.Info("mail transport ready", "provider", mailCfg.Provider)
	} else {
		logger.Warn("mail transport not configured, contact form will answer 500",
			"missing", strings.Join(mailCfg.Missing(), ", "))
	}

	srv, err := server.New(cfg, src, mailCfg, sender, logger, *dev)
	if err != nil {
		logger.Error("init server", "error", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			"addr", *addr,
			"site", cfg.Site.Name,
			"config", cfg.Source(),
			"dev", *dev,
		)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("stopped")
}

// loadConfig prefers the file on disk and falls back to the configuration
// captured inside the pack, so a bare binary still serves the packed site.
func loadConfig(path string, dev bool) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	} else if dev {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	data, err := build.EmbeddedConfig()
	if err != nil {
		return nil, fmt.Errorf("no config file at %s and no embedded config: %w", path, err)
	}

	cfg, err := config.Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.WithSource("embedded")
	cfg.WithLoadedTime(time.Now().UTC())

	return cfg, nil
}

func loadSource(webDir string, dev bool) (*assets.Source, error) {
	if dev {
		return assets.NewDisk(webDir)
	}

	public, err := build.Public()
	if err != nil {
		return nil, err
	}
	return assets.NewEmbedded(public)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
