package sqlgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/askdb/askdb/internal/cache"
	"github.com/askdb/askdb/internal/store"
)

type fakeOracle struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (f *fakeOracle) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

type fakeExecutor struct {
	calls   int
	queries []string
	result  store.Result
	err     error
}

func (f *fakeExecutor) Execute(_ context.Context, sqlText string) (store.Result, error) {
	f.calls++
	f.queries = append(f.queries, sqlText)
	if f.err != nil {
		return store.Result{}, f.err
	}
	return f.result, nil
}

const germanyReply = "Here you go:\n```json\n" +
	`{"sql_query": "SELECT CustomerName FROM Customers WHERE Country = 'Germany'", "explanation": "Lists customers located in Germany.", "results": [{"CustomerName": "made up"}]}` +
	"\n```"

func TestGenerateExecutesGeneratedQuery(t *testing.T) {
	oracleStub := &fakeOracle{reply: germanyReply}
	executor := &fakeExecutor{result: store.Result{
		Columns: []string{"CustomerName"},
		Rows:    [][]any{{"Alfreds Futterkiste"}, {"Drachenblut Delikatessen"}},
	}}
	generator := NewGenerator(oracleStub, executor, cache.New[Result]())

	result := generator.Generate(context.Background(), "List all customers from Germany", nil)
	if result.Failed() {
		t.Fatalf("Generate() failed: %s", result.Err)
	}
	if !strings.Contains(result.SQLQuery, "Customers") || !strings.Contains(result.SQLQuery, "Germany") {
		t.Fatalf("SQLQuery = %q", result.SQLQuery)
	}
	if executor.calls != 1 {
		t.Fatalf("executor calls = %d, want 1", executor.calls)
	}
	// The oracle's fabricated results must be replaced by real rows.
	if len(result.Rows) != 2 || result.Rows[0][0] != "Alfreds Futterkiste" {
		t.Fatalf("Rows = %#v", result.Rows)
	}
	if !strings.Contains(oracleStub.prompts[0], "Northwind") || !strings.Contains(oracleStub.prompts[0], "List all customers from Germany") {
		t.Fatalf("prompt = %q", oracleStub.prompts[0])
	}
}

func TestGenerateMemoizesByHistoryAndInput(t *testing.T) {
	oracleStub := &fakeOracle{reply: germanyReply}
	executor := &fakeExecutor{result: store.Result{Columns: []string{"CustomerName"}}}
	generator := NewGenerator(oracleStub, executor, cache.New[Result]())

	history := []Turn{{User: "hello", Bot: "hi, ask me about Northwind"}}
	first := generator.Generate(context.Background(), "List all customers from Germany", history)
	second := generator.Generate(context.Background(), "List all customers from Germany", history)

	if oracleStub.calls != 1 {
		t.Fatalf("oracle calls = %d, want 1", oracleStub.calls)
	}
	if executor.calls != 1 {
		t.Fatalf("executor calls = %d, want 1 (cached result must not re-execute)", executor.calls)
	}
	if first.SQLQuery != second.SQLQuery {
		t.Fatalf("cached result diverged: %q vs %q", first.SQLQuery, second.SQLQuery)
	}

	// A different trailing history is a different key.
	generator.Generate(context.Background(), "List all customers from Germany", nil)
	if oracleStub.calls != 2 {
		t.Fatalf("oracle calls = %d, want 2", oracleStub.calls)
	}
}

func TestGenerateHistoryWindowBoundsKey(t *testing.T) {
	oracleStub := &fakeOracle{reply: germanyReply}
	generator := NewGenerator(oracleStub, &fakeExecutor{}, cache.New[Result]())

	long := make([]Turn, 8)
	for i := range long {
		long[i] = Turn{User: "q", Bot: "a"}
	}
	// Same trailing five turns, different older turns: identical key.
	generator.Generate(context.Background(), "question", long)
	generator.Generate(context.Background(), "question", long[3:])

	if oracleStub.calls != 1 {
		t.Fatalf("oracle calls = %d, want 1", oracleStub.calls)
	}
}

func TestGenerateNoJSONObject(t *testing.T) {
	oracleStub := &fakeOracle{reply: "I cannot produce SQL for that."}
	executor := &fakeExecutor{}
	generator := NewGenerator(oracleStub, executor, cache.New[Result]())

	result := generator.Generate(context.Background(), "nonsense", nil)
	if !result.Failed() {
		t.Fatal("expected failure for brace-less reply")
	}
	if result.SQLQuery != "" || len(result.Rows) != 0 {
		t.Fatalf("failure result must be empty: %#v", result)
	}
	if executor.calls != 0 {
		t.Fatalf("executor calls = %d, want 0", executor.calls)
	}

	// Failures are not memoized.
	generator.Generate(context.Background(), "nonsense", nil)
	if oracleStub.calls != 2 {
		t.Fatalf("oracle calls = %d, want 2", oracleStub.calls)
	}
}

func TestGenerateMalformedJSON(t *testing.T) {
	generator := NewGenerator(&fakeOracle{reply: `{"sql_query": "SELECT 1",`}, &fakeExecutor{}, cache.New[Result]())

	result := generator.Generate(context.Background(), "q", nil)
	if !result.Failed() {
		t.Fatal("expected failure for truncated JSON")
	}
}

func TestGenerateOracleFailure(t *testing.T) {
	generator := NewGenerator(&fakeOracle{err: errors.New("connection refused")}, &fakeExecutor{}, cache.New[Result]())

	result := generator.Generate(context.Background(), "q", nil)
	if !result.Failed() {
		t.Fatal("expected failure when oracle errors")
	}
	if !strings.Contains(result.Err, "connection refused") {
		t.Fatalf("Err = %q", result.Err)
	}
}

func TestGenerateExecutionFailure(t *testing.T) {
	executor := &fakeExecutor{err: errors.New("no such table: Ordrs")}
	generator := NewGenerator(&fakeOracle{reply: `{"sql_query": "SELECT * FROM Ordrs", "explanation": "x", "results": []}`}, executor, cache.New[Result]())

	result := generator.Generate(context.Background(), "q", nil)
	if !result.Failed() {
		t.Fatal("expected failure when execution errors")
	}
	if !strings.Contains(result.Err, "no such table") {
		t.Fatalf("Err = %q", result.Err)
	}
}

func TestGenerateEmptySQLQueryIsNotExecuted(t *testing.T) {
	executor := &fakeExecutor{}
	generator := NewGenerator(&fakeOracle{reply: `{"sql_query": "", "explanation": "cannot answer", "results": []}`}, executor, cache.New[Result]())

	result := generator.Generate(context.Background(), "what is the weather", nil)
	if result.Failed() {
		t.Fatalf("unexpected failure: %s", result.Err)
	}
	if result.SQLQuery != "" {
		t.Fatalf("SQLQuery = %q", result.SQLQuery)
	}
	if executor.calls != 0 {
		t.Fatalf("executor calls = %d, want 0", executor.calls)
	}
}

func TestFormatHistory(t *testing.T) {
	history := []Turn{
		{User: "u1", Bot: "b1"},
		{User: "u2", Bot: "b2"},
	}
	got := FormatHistory(history, 5)
	want := "User: u1\nBot: b1\nUser: u2\nBot: b2"
	if got != want {
		t.Fatalf("FormatHistory() = %q, want %q", got, want)
	}
	if FormatHistory(nil, 5) != "" {
		t.Fatal("empty history must render empty")
	}
}

func TestRowMapsFollowsColumnOrder(t *testing.T) {
	result := Result{
		Columns: []string{"a", "b"},
		Rows:    [][]any{{int64(1), "x"}},
	}
	rows := result.RowMaps()
	if len(rows) != 1 || rows[0]["a"] != int64(1) || rows[0]["b"] != "x" {
		t.Fatalf("RowMaps() = %#v", rows)
	}
}
