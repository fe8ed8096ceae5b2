package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tallybook/backend/internal/api/handlers"
	"github.com/tallybook/backend/internal/api/middleware"
	"github.com/tallybook/backend/internal/common/config"
	"github.com/tallybook/backend/internal/domain/batch"
	"github.com/tallybook/backend/internal/domain/events"
	"github.com/tallybook/backend/internal/domain/ledger"
	"github.com/tallybook/backend/internal/domain/parse"
	"github.com/tallybook/backend/internal/domain/recorder"
	"github.com/tallybook/backend/internal/platform/bolt"
	dynamoremote "github.com/tallybook/backend/internal/platform/dynamodb"
	"github.com/tallybook/backend/internal/platform/dynamodb/client"
	"github.com/tallybook/backend/internal/platform/kafka"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	remote, cleanup, err := newRemote(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("could not initialize ledger backend", zap.Error(err))
	}
	defer cleanup()

	keywords := parse.DefaultKeywords
	if cfg.KeywordsPath != "" {
		keywords, err = parse.LoadKeywords(cfg.KeywordsPath)
		if err != nil {
			logger.Fatal("could not load keyword table", zap.Error(err))
		}
		logger.Info("keyword table loaded", zap.String("path", cfg.KeywordsPath), zap.Int("keywords", len(keywords)))
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = kp.Close() }()
		publisher = kp
		logger.Info("commit events enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	ingestor := batch.NewIngestor(parse.NewParser(), parse.NewInferencer(keywords))
	store := ledger.NewStore(remote, logger)
	svc := recorder.NewService(ingestor, store, publisher, logger, cfg.LedgerName)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Route("/api/v1", func(r chi.Router) {
		handlers.New(svc, logger).Register(r)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Port),
			zap.String("backend", cfg.LedgerBackend),
			zap.String("ledger", cfg.LedgerName))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newRemote(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ledger.Remote, func(), error) {
	switch cfg.LedgerBackend {
	case config.BackendDynamoDB:
		c, err := client.NewDynamoDBClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}
		return dynamoremote.NewRemote(c, cfg.DynamoDBTableName, cfg.LedgerName, logger), func() {}, nil
	case config.BackendBolt:
		r, err := bolt.Open(cfg.BoltPath, cfg.LedgerName)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	default:
		// LoadFromEnv already validated the backend name.
		panic("unreachable")
	}
}
