package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creditrisk/internal/config"
	"creditrisk/internal/container"
	"creditrisk/internal/logging"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger := logging.NewDefault()

	if err := run(logger); err != nil {
		logger.Error("API server failed: %v", err)
		os.Exit(1)
	}
}

func run(logger logging.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.APIServer(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server on %s", srv.Addr)
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

	logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
