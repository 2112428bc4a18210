package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/clientes-service/internal/config"
	"github.com/sangkips/clientes-service/internal/db"
	"github.com/sangkips/clientes-service/internal/domains/customers"
	"github.com/sangkips/clientes-service/internal/domains/customers/models"
	"github.com/sangkips/clientes-service/internal/health"
	"github.com/sangkips/clientes-service/internal/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := config.SetupLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	guard := openStore(ctx, cfg.DBURL)
	defer guard.Close()

	// Interfaces stay nil unless the broker connected.
	var events customers.EventPublisher
	var queuePinger health.QueuePinger
	if rabbitMQ := openEvents(cfg.RabbitMQURL); rabbitMQ != nil {
		defer rabbitMQ.Close()
		events = rabbitMQ
		queuePinger = rabbitMQ
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(guard, events, queuePinger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore connects to the database when a URL is configured. Any failure
// leaves the guard disconnected and the server keeps running.
func openStore(ctx context.Context, dbURL string) *db.Guard[models.DBTX] {
	if dbURL == "" {
		return db.NewDisconnectedGuard[models.DBTX]("DATABASE_URL not set")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	log.Info().Msg("connecting to database")
	conn, err := db.Connect(connectCtx, dbURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to database, continuing without it")
		return db.NewDisconnectedGuard[models.DBTX]("connection failed at startup")
	}
	log.Info().Msg("database connection established")

	if err := db.EnsureSchema(connectCtx, conn); err != nil {
		log.Error().Err(err).Msg("failed to create clientes table")
	}

	return db.NewConnectedGuard[models.DBTX](conn)
}

// openEvents connects to the broker with a single attempt so an unreachable
// broker never delays startup. Returns nil when events are disabled.
func openEvents(url string) *queue.RabbitMQ {
	if url == "" {
		return nil
	}

	rabbitMQ, err := queue.NewRabbitMQ(url, 1)
	if err != nil {
		log.Error().Err(err).Msg("registration events disabled")
		return nil
	}
	return rabbitMQ
}

func newRouter(guard *db.Guard[models.DBTX], events customers.EventPublisher, queuePinger health.QueuePinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         3600,
	}))

	customerHandler := customers.NewHandler(guard, events)
	customerHandler.RegisterCustomerRoutes(r)

	healthHandler := health.NewHandler(guard, queuePinger)
	r.Get("/health", healthHandler.Health)

	return r
}
