package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/clientes-service/internal/config"
	"github.com/sangkips/clientes-service/internal/queue"
	"github.com/sangkips/clientes-service/internal/worker"
)

// The worker sends a welcome message to every newly registered customer.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := config.SetupLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logger")
	}

	rabbitURL := cfg.RabbitMQURL
	if rabbitURL == "" {
		log.Warn().Msg("RABBITMQ_URL not set, using local default")
		rabbitURL = config.DefaultRabbitMQURL
	}

	// Unlike the server, the worker has nothing to do without the broker,
	// so it waits for it.
	rabbitMQ, err := queue.NewRabbitMQ(rabbitURL, 10)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rabbitMQ.Close()

	sender := worker.NewMockSender(cfg.WelcomeSuccessRate)
	w := worker.NewWorker(rabbitMQ, sender, cfg.WelcomeTemplate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("queue", queue.CustomerRegisteredQueue).
		Float64("success_rate", cfg.WelcomeSuccessRate).
		Bool("custom_template", cfg.WelcomeTemplate != "").
		Msg("welcome worker ready")

	if err := w.Start(ctx); err != nil {
		log.Error().Err(err).Msg("welcome worker failed")
		return
	}

	log.Info().Msg("welcome worker stopped")
}
