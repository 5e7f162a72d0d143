package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"ragchat/internal/auth"
	"ragchat/internal/backend"
	"ragchat/internal/chat"
	"ragchat/internal/config"
	"ragchat/internal/observability"
	"ragchat/internal/storage"
)

// app is everything a command needs, built from the config and flags.
type app struct {
	cfg     *config.Config
	auth    auth.Provider
	archive *storage.Database
	ctrl    *chat.Controller
	logFile *os.File
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if err := a.initLogging(); err != nil {
		return nil, err
	}

	provider := auth.NewMockProvider()
	if email != "" {
		if err := provider.Login(ctx, email, password); err != nil {
			a.close()
			return nil, errors.Wrapf(err, "signing in as %s", email)
		}
	}
	a.auth = provider

	opts := []chat.Option{chat.WithTimeout(cfg.RequestTimeout())}
	if cfg.ArchivePath != "" {
		db, err := storage.NewDatabase(cfg.ArchivePath)
		if err != nil {
			a.close()
			return nil, errors.Wrap(err, "opening archive")
		}
		a.archive = db
		opts = append(opts, chat.WithArchive(db))
	}

	a.ctrl = chat.New(provider, newClient(cfg), opts...)
	if err := a.ctrl.Restore(); err != nil {
		observability.Logger().Error("failed to restore conversations", "error", err)
	}

	observability.Logger().Info("ragchat started", "backend", cfg.Backend, "archive", cfg.ArchivePath)
	return a, nil
}

func (a *app) initLogging() error {
	if a.cfg.LogFile == "" {
		observability.Discard()
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(a.cfg.LogFile), 0o755); err != nil {
		return errors.Wrap(err, "creating log directory")
	}
	f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return errors.Wrap(err, "opening log file")
	}
	a.logFile = f
	observability.Init(f, a.cfg.LogLevel)
	return nil
}

func (a *app) close() {
	if a.archive != nil {
		a.archive.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func newClient(cfg *config.Config) backend.Client {
	switch cfg.Backend {
	case config.BackendHTTP:
		return backend.NewHTTPClient(cfg.APIURL, backend.WithRequestsPerMinute(cfg.RequestsPerMinute))
	case config.BackendOpenAI:
		return backend.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model, cfg.MaxTokens)
	default:
		return backend.NewMockClient(cfg.MockDelay())
	}
}
