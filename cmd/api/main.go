package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobportal-backend/internal/bootstrap"
	"jobportal-backend/internal/shared/config"
	"jobportal-backend/internal/shared/server"
)

const shutdownTimeout = 20 * time.Second

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := server.Addr(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	app.Scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutdown requested")
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	select {
	case <-app.Scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		log.Printf("expiry sweep still running at shutdown")
	}
	if err := app.Dispatcher.Wait(shutdownCtx); err != nil {
		log.Printf("pending notifications not delivered: %v", err)
	}
	if app.Redis != nil {
		_ = app.Redis.Close()
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}
