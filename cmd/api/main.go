package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-resume-saas/internal/bootstrap"
	"ai-resume-saas/internal/shared/config"
	"ai-resume-saas/internal/shared/server"
	"ai-resume-saas/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	defer telemetry.Sync()

	cfg := config.Load()
	ctx := context.Background()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("api.bootstrap_failed", map[string]any{"err": err})
		os.Exit(1)
	}
	defer app.Close(ctx)

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("api.listening", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		telemetry.Error("api.server_failed", map[string]any{"err": err})
		app.Close(ctx)
		os.Exit(1)
	case sig := <-stop:
		telemetry.Info("api.shutting_down", map[string]any{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("api.shutdown_failed", map[string]any{"err": err})
	}
}
