// Package assistant sequences the request pipeline: detect the language
// once per message, generate and execute SQL, synthesize the reply. Its
// external contract is "always returns a string": every failure mode is
// absorbed into the reply text before it gets here.
package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/askdb/askdb/internal/locale"
	"github.com/askdb/askdb/internal/observability"
	"github.com/askdb/askdb/internal/sqlgen"
)

type Detector interface {
	Detect(ctx context.Context, text string) locale.Locale
}

type Generator interface {
	Generate(ctx context.Context, input string, history []sqlgen.Turn) sqlgen.Result
}

type Synthesizer interface {
	Synthesize(ctx context.Context, result sqlgen.Result, l locale.Locale) string
}

// Response carries the reply string plus the request metadata the UI
// caller may want to surface alongside it.
type Response struct {
	Reply       string
	Locale      locale.Locale
	SQLQuery    string
	Explanation string
}

type Assistant struct {
	Detector    Detector
	Generator   Generator
	Synthesizer Synthesizer
	Logger      *slog.Logger
}

func New(detector Detector, generator Generator, synthesizer Synthesizer, logger *slog.Logger) *Assistant {
	return &Assistant{
		Detector:    detector,
		Generator:   generator,
		Synthesizer: synthesizer,
		Logger:      logger,
	}
}

// Answer runs one message through the pipeline. The locale is detected
// once and reused for both the generation outcome and every fallback
// string produced on the way.
func (a *Assistant) Answer(ctx context.Context, message string, history []sqlgen.Turn) Response {
	start := time.Now()

	detected := a.Detector.Detect(ctx, message)
	result := a.Generator.Generate(ctx, message, history)
	reply := a.Synthesizer.Synthesize(ctx, result, detected)

	observability.IncrementChatRequests(string(detected))
	if a.Logger != nil {
		a.Logger.InfoContext(ctx, "chat_request",
			slog.String("locale", string(detected)),
			slog.Bool("failed", result.Failed()),
			slog.Int("rows", len(result.Rows)),
			slog.Int("history_turns", len(history)),
			slog.String("duration", time.Since(start).String()),
		)
	}

	return Response{
		Reply:       reply,
		Locale:      detected,
		SQLQuery:    result.SQLQuery,
		Explanation: result.Explanation,
	}
}

// Handle is the plain caller-facing entry point: one message plus history
// in, one reply string out, never an error.
func (a *Assistant) Handle(ctx context.Context, message string, history []sqlgen.Turn) string {
	return a.Answer(ctx, message, history).Reply
}
