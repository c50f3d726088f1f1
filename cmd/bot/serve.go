package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/appointment_bot/internal/agent"
	"github.com/Freeeeeet/appointment_bot/internal/api"
	"github.com/Freeeeeet/appointment_bot/internal/app"
	"github.com/Freeeeeet/appointment_bot/internal/config"
	"github.com/Freeeeeet/appointment_bot/internal/controller"
	"github.com/Freeeeeet/appointment_bot/internal/events"
	"github.com/Freeeeeet/appointment_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP tool API, the event websocket and the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := app.NewLogger(cfg.Environment)
			defer logger.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return serve(ctx, cfg, migrateUp, logger)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrateUp bool, logger *zap.Logger) error {
	logger.Info("Starting appointment bot",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("telegram", cfg.TelegramToken != ""),
		zap.Bool("amqp", cfg.AMQP.URL != ""),
	)

	store, closeStore, err := openStore(ctx, cfg, migrateUp, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := events.NewHub(logger)
	publishers := events.Multi{hub, events.NewLogPublisher(logger)}

	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()
		publishers = append(publishers, amqpPublisher)
	}

	bookingService := service.NewBookingService(store, service.BookingConfig{
		Slots:         cfg.SlotConfig(),
		DefaultReason: cfg.Slots.DefaultReason,
		StoreTimeout:  cfg.StoreTimeout,
	}, logger)

	tools := agent.NewTools(bookingService, publishers, logger)

	scheduler := app.NewScheduler(bookingService, publishers, cfg.AvailabilityReportInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e := api.NewEcho(api.NewHandler(tools, store, hub.HandleConnect, logger))
		return api.Start(gctx, e, cfg.HTTPAddr, logger)
	})

	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}

		botController := controller.NewBotController(b, tools, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}

		g.Go(func() error {
			return botController.Start(gctx)
		})
	} else {
		logger.Info("TELEGRAM_TOKEN not set, Telegram front-end disabled")
	}

	err = g.Wait()
	logger.Info("Appointment bot stopped")
	return err
}
