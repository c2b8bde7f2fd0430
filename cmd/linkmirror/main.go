// Command linkmirror runs the bookmark mirror service: an HTTP API that
// triggers incremental sync and nightly reconciliation runs against the
// configured source collection and destination database.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/linkmirror/linkmirror/internal/api"
	"github.com/linkmirror/linkmirror/internal/config"
	"github.com/linkmirror/linkmirror/internal/notion"
	"github.com/linkmirror/linkmirror/internal/raindrop"
	"github.com/linkmirror/linkmirror/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("parsing log level")
	}
	log.SetLevel(level)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := raindrop.New(cfg.RaindropURL, cfg.RaindropToken)
	nc := notion.New(cfg.NotionURL, cfg.NotionToken, cfg.NotionDatabaseID)
	runner := service.NewRunner(cfg, rc, nc, log)

	scheduler := service.NewScheduler(runner, log, cfg.SyncEvery, cfg.ReconcileEvery)
	go scheduler.Run(ctx)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Runner:      runner,
		Pinger:      runner,
		APIKey:      cfg.APIKey,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr(), "version": config.Version}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
