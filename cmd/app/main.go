package main

import (
	"context"
	"fleet/di"
	"fleet/helper"
	"fleet/shared/logger"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "fleet/docs"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// @title Fleet Rental API
// @version 1.0
// @description Vehicle rental bookings, returns and waitlists.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.InitLogger()

	app := di.InitializeApp()
	logger.SetLogLevel(app.Config)

	if app.Config.DB.Postgres.AutoMigrate {
		if err := helper.Runner(app.Config, helper.ActionUp); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return app.HTTP.Serve(ctx)
	})

	if !app.Config.Rental.DisableReclaimer {
		group.Go(func() error {
			app.Reclaimer.Run(ctx)

			return nil
		})
	}

	if app.Config.Kafka.Enable {
		group.Go(func() error {
			app.Consumer.Start(ctx)

			return nil
		})
	}

	err := group.Wait()

	if closeErr := app.DB.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("failed to close database pools")
	}

	if closeErr := app.Kafka.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("failed to close kafka writers")
	}

	if closeErr := app.Redis.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("failed to close redis client")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), time.Duration(app.Config.Server.Shutdown.CleanupPeriodSeconds)*time.Second)
	defer cancel()

	if closeErr := app.Otel.Shutdown(flushCtx); closeErr != nil {
		log.Error().Err(closeErr).Msg("failed to flush spans")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}

	log.Info().Msg("server exited")
}
