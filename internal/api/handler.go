package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/askdb/askdb/internal/assistant"
	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/observability"
	"github.com/askdb/askdb/internal/sqlgen"
)

type ReadinessCheck func(ctx context.Context) error

// ChatAssistant is what the chat endpoint needs from the pipeline. It is
// satisfied by *assistant.Assistant.
type ChatAssistant interface {
	Answer(ctx context.Context, message string, history []sqlgen.Turn) assistant.Response
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	DependencyTimeout time.Duration
	Assistant         ChatAssistant
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/chat", func(w http.ResponseWriter, r *http.Request) {
		handleChat(deps, w, r)
	})

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

// CheckStorePing reports the database reachable when a ping succeeds
// within the readiness deadline.
func CheckStorePing(db *sql.DB) ReadinessCheck {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("store is not configured")
		}
		return db.PingContext(ctx)
	}
}

func CheckOracleConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.Oracle.BaseURL == "" {
			return errors.New("oracle base url is not configured")
		}
		if cfg.Oracle.APIKey == "" {
			return errors.New("oracle api key is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
