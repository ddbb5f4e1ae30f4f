// Package control wires configuration, transport, core, and server into
// one runnable application.
package control

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vietddude/memgate/internal/core/config"
	"github.com/vietddude/memgate/internal/infra/backend"
	"github.com/vietddude/memgate/internal/proxy"
	"github.com/vietddude/memgate/internal/server"
)

// App is the assembled memgate process.
type App struct {
	cfg    *config.Config
	client *backend.Client
	svc    *proxy.Service
	server *server.Server
}

// NewApp builds the application from validated configuration.
func NewApp(cfg *config.Config) (*App, error) {
	client := backend.NewClient(cfg.Backend)
	svc := proxy.New(client, cfg.Backend.Timeout(), cfg.Backend.MaxRetries)

	return &App{
		cfg:    cfg,
		client: client,
		svc:    svc,
		server: server.New(svc, cfg.Server.Port),
	}, nil
}

// Service exposes the proxy core, mainly for one-shot CLI commands.
func (a *App) Service() *proxy.Service {
	return a.svc
}

// Start launches the tool server. It returns once the listener is
// running; serve errors are logged from the background goroutine.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Tool server failed", "error", err)
		}
	}()

	slog.Info("memgate started",
		"port", a.cfg.Server.Port,
		"backend", a.cfg.Backend.URL,
		"api_key", config.Redact(a.cfg.Backend.APIKey),
		"user", a.cfg.Backend.UserID,
	)
	return nil
}

// Stop shuts the server down and releases backend connections.
func (a *App) Stop(ctx context.Context) error {
	if err := a.server.Stop(ctx); err != nil {
		return err
	}
	return a.client.Close()
}
