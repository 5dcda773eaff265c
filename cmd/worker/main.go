package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultation/config"
	"consultation/di"
	"consultation/shared/logger"
	"consultation/shared/timezone"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	logger.InitLogger(cfg)
	timezone.Init(cfg.App.Timezone)

	worker, cleanup, err := di.InitializeWorker(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize worker")
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           worker.Metrics.Handler(),
		ReadHeaderTimeout: shutdownTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return worker.Relay.Run(ctx)
	})

	group.Go(func() error {
		return worker.Payment.Run(ctx)
	})

	group.Go(func() error {
		log.Info().Str("port", cfg.Server.MetricsPort).Msg("Serving worker metrics")

		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Worker stopped with error")
		cleanup()
		os.Exit(1)
	}

	log.Info().Msg("Worker stopped")
}
