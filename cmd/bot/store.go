package main

import (
	"context"

	"github.com/Freeeeeet/appointment_bot/internal/api"
	"github.com/Freeeeeet/appointment_bot/internal/app"
	"github.com/Freeeeeet/appointment_bot/internal/config"
	"github.com/Freeeeeet/appointment_bot/internal/repository"
	"github.com/Freeeeeet/appointment_bot/internal/service"
	"go.uber.org/zap"
)

type appointmentStore interface {
	service.AppointmentStore
	api.Pinger
}

// openStore Postgres по DB_DSN или память при DB_DSN=memory
func openStore(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) (appointmentStore, func(), error) {
	if cfg.UseMemoryStore() {
		logger.Warn("Using in-memory appointment store, data is lost on exit")
		return repository.NewMemoryAppointmentRepository(), func() {}, nil
	}

	pool, err := app.NewPool(ctx, cfg.GetDBDSN(), cfg.DBMaxConns)
	if err != nil {
		return nil, nil, err
	}

	if migrate {
		migrator, err := app.NewMigrator(pool, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		err = migrator.Run(ctx)
		migrator.Close()
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	logger.Info("Connected to database", zap.Int32("max_conns", pool.Config().MaxConns))
	return repository.NewAppointmentRepository(pool), pool.Close, nil
}
