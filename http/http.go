// Package http serves the cheatsheet API, the site pages, health and
// metrics endpoints.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/opsdeck/cheatsheets/api"
	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/config"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/telemetry"
	"github.com/opsdeck/cheatsheets/templater"
	"github.com/opsdeck/cheatsheets/utils"
	"github.com/opsdeck/cheatsheets/watch"
)

const (
	siteName        = "DevOps Cheatsheets"
	shutdownTimeout = 10 * time.Second
)

// NewHandler builds the complete handler: generated API routes, site pages,
// /healthz and /metrics behind request id, CORS, rate limit and client id
// middleware, wrapped with telemetry.
func NewHandler(cfg *config.Config, svc api.CheatsheetService) http.Handler {
	mux := http.NewServeMux()
	registerSystemEndpoints(mux)
	api.GenerateHTTPHandlers(mux, svc)
	api.NewPages(svc, templater.NewTemplater(map[string]any{"site_name": siteName})).Register(mux)

	limiter := api.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitBurst)
	if err := limiter.TrustProxies(cfg.HTTP.TrustedProxies); err != nil {
		utils.Warn("Ignoring trusted proxies: %v", err)
	}
	handler := api.Chain(mux, api.RequestID, api.CORS, limiter.Middleware, api.ClientID)
	return telemetry.WrapHandler("cheats", handler)
}

func registerSystemEndpoints(mux *http.ServeMux) {
	mux.HandleFunc("GET "+constants.PathHealth, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		if _, err := w.Write([]byte(constants.HealthCheckResponse)); err != nil {
			utils.Error(constants.LogFailedWriteHealthCheck, err)
		}
	})
	mux.Handle("GET "+constants.PathMetrics, telemetry.MetricsHandler())
}

// StartServer loads the catalog, serves HTTP on cfg's address and shuts
// down gracefully when ctx is cancelled. With a "dir" content source and
// watching enabled, library edits trigger a reload.
func StartServer(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := telemetry.Init(cfg)
	if err != nil {
		return utils.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			utils.Warn("Failed to shut down tracing: %v", err)
		}
	}()

	deps, cleanup, err := api.InitializeDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := api.NewService(deps, nil)
	if err := svc.Subscribe(ctx); err != nil {
		return err
	}

	if cfg.Content.Source == constants.ContentSourceDir && cfg.Content.Watch {
		if err := startWatcher(ctx, cfg, deps.Store); err != nil {
			utils.Warn("Hot reload disabled: %v", err)
		}
	}

	addr := cfg.HTTP.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info(constants.MsgServerStarting, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return utils.Errorf("server shutdown: %w", err)
	}
	return nil
}

func startWatcher(ctx context.Context, cfg *config.Config, store *catalog.Store) error {
	c, err := store.Current()
	if err != nil {
		return err
	}
	var dirs []string
	for _, cat := range c.Categories() {
		dirs = append(dirs, cat.Name)
	}
	debounce := time.Duration(cfg.Content.DebounceMillis) * time.Millisecond
	w := watch.New(cfg.Content.Dir, dirs, debounce, func(ctx context.Context) error {
		_, err := store.Reload(ctx)
		return err
	})
	if err := w.Start(ctx); err != nil {
		return err
	}
	utils.Info("Watching %s for changes", cfg.Content.Dir)
	return nil
}
