package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kudiapp/kudi-backend/internal/amqp"
	"github.com/kudiapp/kudi-backend/internal/config"
	"github.com/kudiapp/kudi-backend/internal/repository/postgres"
	"github.com/kudiapp/kudi-backend/internal/service"
	"github.com/kudiapp/kudi-backend/internal/websocket"
	"github.com/kudiapp/kudi-backend/internal/worker"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.AMQP.URL == "" {
		log.Fatal().Msg("AMQP_URL is required for the worker")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	store := postgres.NewStore(pool)

	// Connect to the broker
	amqpClient, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to message broker")
	}
	defer amqpClient.Close()
	log.Info().Str("queue", cfg.AMQP.Queue).Msg("Connected to message broker")

	// The worker has no connected clients, so events go nowhere
	publisher := &websocket.NoOpPublisher{}

	calculationService := service.NewCalculationService(store)
	budgetService := service.NewBudgetService(store, publisher)
	babyStepService := service.NewBabyStepService(store, calculationService, publisher)

	recomputeWorker := worker.NewRecomputeWorker(amqpClient, budgetService, babyStepService)

	// Cancel the consume loop on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("Starting recompute worker")
	if err := recomputeWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Worker failed")
	}

	log.Info().Msg("Worker exited")
}
