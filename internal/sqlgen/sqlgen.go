// Package sqlgen turns a user question plus conversation context into an
// executed SQL query. The oracle proposes the query and an explanation as
// a JSON object; the store supplies the real rows.
package sqlgen

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/askdb/askdb/internal/cache"
	"github.com/askdb/askdb/internal/observability"
	"github.com/askdb/askdb/internal/oracle"
	"github.com/askdb/askdb/internal/schema"
	"github.com/askdb/askdb/internal/store"
)

// DefaultHistoryWindow is how many trailing conversation turns are
// rendered into the prompt and the cache key.
const DefaultHistoryWindow = 5

// Turn is one prior exchange: what the user said and what the assistant
// replied. History is caller-supplied and never mutated here.
type Turn struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// Result is the structured outcome of one generation. When Err is set the
// other fields are unusable and must be ignored downstream.
type Result struct {
	SQLQuery    string
	Explanation string
	Columns     []string
	Rows        [][]any
	Err         string
}

// Failed reports whether the generation ended in an error condition.
func (r Result) Failed() bool {
	return r.Err != ""
}

// RowMaps renders the rows as ordered column-name/value pairs, one map per
// row, following the column order of Columns.
func (r Result) RowMaps() []map[string]any {
	rows := make([]map[string]any, 0, len(r.Rows))
	for _, values := range r.Rows {
		row := make(map[string]any, len(r.Columns))
		for i, column := range r.Columns {
			if i < len(values) {
				row[column] = values[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

const generatePromptFormat = `You are a SQL assistant for the Northwind database.
Here is the schema of the database:
%s

The following is the conversation history between the user and you:
%s

Now the user asks: %s

Your task:

- Understand the context of the user's request based on the conversation history.
- Generate a SQL query to answer the user's question.
- Provide a natural language explanation of the query, including what it does and why it's relevant to the user's request.

The response must be a valid JSON object with this exact structure:
{
    "sql_query": "THE SQL QUERY HERE",
    "explanation": "EXPLANATION HERE",
    "results": []
}`

// Generator builds prompts, invokes the oracle, parses its structured
// reply and runs the generated SQL through the executor. Results are
// memoized by the trailing history plus the current input.
type Generator struct {
	Oracle        oracle.Client
	Executor      store.Executor
	Cache         *cache.Cache[Result]
	HistoryWindow int
}

func NewGenerator(client oracle.Client, executor store.Executor, c *cache.Cache[Result]) *Generator {
	if c == nil {
		c = cache.New[Result]()
	}
	return &Generator{
		Oracle:        client,
		Executor:      executor,
		Cache:         c,
		HistoryWindow: DefaultHistoryWindow,
	}
}

// Generate never returns an error: every failure mode collapses into a
// Result with Err set so the caller always has something to synthesize a
// reply from.
func (g *Generator) Generate(ctx context.Context, input string, history []Turn) Result {
	formatted := FormatHistory(history, g.historyWindow())
	key := CacheKey(formatted, input)

	if cached, ok := g.Cache.Get(key); ok {
		observability.IncrementGenerationCacheHits()
		return cached
	}
	observability.IncrementGenerationCacheMisses()

	prompt := fmt.Sprintf(generatePromptFormat, schema.Description(), formatted, input)

	raw, err := g.Oracle.Complete(ctx, prompt)
	if err != nil {
		return failure(fmt.Sprintf("model request failed: %s", err))
	}
	if strings.TrimSpace(raw) == "" {
		return failure("no response received from the model")
	}

	jsonText, err := extractJSONObject(raw)
	if err != nil {
		return failure(err.Error())
	}

	var parsed struct {
		SQLQuery    string `json:"sql_query"`
		Explanation string `json:"explanation"`
		// The oracle is asked to leave results empty; whatever it puts
		// there is discarded in favor of the executor's real rows.
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return failure(fmt.Sprintf("invalid JSON in model response: %s", err))
	}

	result := Result{
		SQLQuery:    strings.TrimSpace(parsed.SQLQuery),
		Explanation: parsed.Explanation,
	}

	if result.SQLQuery != "" {
		executed, err := g.Executor.Execute(ctx, result.SQLQuery)
		if err != nil {
			return failure(fmt.Sprintf("database error: %s", err))
		}
		result.Columns = executed.Columns
		result.Rows = executed.Rows
	}

	g.Cache.Put(key, result)
	return result
}

func (g *Generator) historyWindow() int {
	if g.HistoryWindow > 0 {
		return g.HistoryWindow
	}
	return DefaultHistoryWindow
}

// FormatHistory renders the trailing window of turns the way they appear
// in the prompt. The same rendering feeds the cache key, so byte equality
// here governs cache hits.
func FormatHistory(history []Turn, window int) string {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("User: %s\nBot: %s", turn.User, turn.Bot))
	}
	return strings.Join(lines, "\n")
}

// CacheKey derives a fixed-length key from the formatted history and the
// current input. Hashing bounds memory growth that raw concatenated text
// keys would not.
func CacheKey(formattedHistory, input string) string {
	h := sha256.New()
	h.Write([]byte(formattedHistory))
	h.Write([]byte("\nUser: "))
	h.Write([]byte(input))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// extractJSONObject trims the reply to the substring between the first
// '{' and the last '}'. Models wrap JSON in prose or markdown fences; this
// boundary trim is the only repair attempted.
func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object found in model response")
	}
	return text[start : end+1], nil
}

func failure(message string) Result {
	return Result{Err: message}
}
