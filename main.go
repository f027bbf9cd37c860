package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"labchem/internal/config"
	"labchem/internal/database"
	"labchem/internal/logger"
	"labchem/internal/server"
	"labchem/internal/services"
	"labchem/internal/sessions"
	"labchem/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// --- Logger ---
	l, err := logger.New(!cfg.IsProd())
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer l.Sync()

	if cfg.Session.SecretGenerated {
		l.Warn("SECRET_KEY not set, generated a random key; sessions will not survive a restart")
	}

	// --- Database ---
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, l)
	if err != nil {
		l.Fatal("error initializing DB connection", zap.Error(err))
	}

	// --- Session Store ---
	sessionStorage, err := newSessionStorage(cfg)
	if err != nil {
		l.Fatal("error initializing session storage", zap.Error(err))
	}
	if sessionStorage != nil {
		defer sessionStorage.Close()
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   services.ReagentExchange,
			Queue:      "reagent_events",
			BindingKey: "reagent.*",
		}, l.Named("rabbitmq"))
		if err != nil {
			l.Fatal("error initializing RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		publisher = mqClient

		// Audit trail of inventory changes.
		if err := mqClient.Consume(auditHandler(l.Named("audit"))); err != nil {
			l.Error("failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	app, err := server.NewApp(server.Deps{
		Config:         cfg,
		Logger:         l,
		DB:             db,
		SessionStorage: sessionStorage,
		Publisher:      publisher,
	})
	if err != nil {
		l.Fatal("error building app", zap.Error(err))
	}

	// --- Start HTTP Server ---
	l.Info("starting server", zap.String("addr", cfg.System.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.System.Addr); err != nil {
			l.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	l.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		l.Error("error during fiber shutdown", zap.Error(err))
	}
	l.Info("server gracefully stopped")
}

// newSessionStorage returns nil for the in-memory storage built into fiber's
// session middleware.
func newSessionStorage(cfg *config.Config) (fiber.Storage, error) {
	if cfg.Session.Store != "redis" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return sessions.NewRedisStorage(rdb), nil
}

func auditHandler(l *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event services.ReagentEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			l.Warn("malformed reagent event", zap.Uint64("tag", msg.DeliveryTag), zap.Error(err))
			return err
		}
		l.Info(event.Event,
			zap.Uint("reagent_id", event.ReagentID),
			zap.String("name", event.Name),
			zap.Time("at", event.At),
		)
		return nil
	}
}
