package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/api"
	"github.com/askdb/askdb/internal/assistant"
	"github.com/askdb/askdb/internal/cache"
	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/locale"
	"github.com/askdb/askdb/internal/observability"
	"github.com/askdb/askdb/internal/oracle"
	"github.com/askdb/askdb/internal/respond"
	"github.com/askdb/askdb/internal/sqlgen"
	"github.com/askdb/askdb/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chat API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv("askdb-api")
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg, os.Stdout)
			return runServer(cmd.Context(), cfg, logger)
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	db, chatAssistant, err := buildAssistant(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	handler := api.NewHandler(cfg, api.Dependencies{
		Logger:    logger,
		Assistant: chatAssistant,
		Readiness: api.CombineReadinessChecks(
			api.CheckStorePing(db),
			api.CheckOracleConfig(cfg),
		),
		DependencyTimeout: time.Second,
	})
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()
		return err
	}
	return nil
}

// buildAssistant wires the full pipeline: store plus query cache, oracle
// client, detector, generator with its own cache, synthesizer. The caller
// owns closing the returned DB.
func buildAssistant(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sql.DB, *assistant.Assistant, error) {
	db, err := store.Open(ctx, store.DBConfig{
		Driver:          cfg.Store.Driver,
		DSN:             cfg.Store.DSN,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxIdleTime: cfg.Store.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	oracleClient, err := oracle.NewOpenAIClient(oracle.OpenAIConfig{
		BaseURL:     cfg.Oracle.BaseURL,
		APIKey:      cfg.Oracle.APIKey,
		Model:       cfg.Oracle.Model,
		Temperature: cfg.Oracle.Temperature,
		Timeout:     cfg.Oracle.Timeout,
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	executor := store.NewCachedExecutor(
		store.NewSQLExecutor(db, cfg.Store.QueryTimeout),
		cache.New[store.Result](),
	)
	generator := sqlgen.NewGenerator(oracleClient, executor, cache.New[sqlgen.Result]())
	generator.HistoryWindow = cfg.Chat.HistoryWindow

	chatAssistant := assistant.New(
		locale.NewDetector(oracleClient),
		generator,
		respond.NewSynthesizer(oracleClient),
		logger,
	)
	return db, chatAssistant, nil
}
