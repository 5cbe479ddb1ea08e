package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/stacktactoe-backend/internal/archive"
	"github.com/DoyleJ11/stacktactoe-backend/internal/config"
	"github.com/DoyleJ11/stacktactoe-backend/internal/httpapi"
	"github.com/DoyleJ11/stacktactoe-backend/internal/hub"
	"github.com/DoyleJ11/stacktactoe-backend/internal/logging"
	"github.com/DoyleJ11/stacktactoe-backend/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	var recorder archive.Recorder = archive.Nop{}
	routeOpts := httpapi.Options{
		Logger: log,
		WS:     ws.Options{OriginPatterns: cfg.AllowedOrigins, OutboxSize: cfg.OutboxSize},
	}
	if cfg.ArchiveDSN != "" {
		store, err := archive.Open(cfg.ArchiveDSN, log.Named("archive"))
		if err != nil {
			return err
		}
		defer store.Close()
		recorder = store
		routeOpts.History = store
		g.Go(func() error { return store.Run(ctx) })
	}

	h := hub.NewHub(ctx, hub.Options{Logger: log, Recorder: recorder})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.SetupRoutes(h, routeOpts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		// Closing rooms closes every outbox, which ends the websocket sessions.
		h.Shutdown()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
