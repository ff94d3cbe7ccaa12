package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/askdb/askdb/internal/cache"
	"github.com/askdb/askdb/internal/locale"
	"github.com/askdb/askdb/internal/respond"
	"github.com/askdb/askdb/internal/sqlgen"
	"github.com/askdb/askdb/internal/store"
)

// scriptedOracle dispatches on the prompt shape so one stub can serve the
// detector, the generator and the synthesizer in an end-to-end run.
type scriptedOracle struct {
	detectReply     string
	generateReply   string
	synthesizeReply string
	generateCalls   int
	synthesizeCalls int
}

func (o *scriptedOracle) Complete(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, `Respond with ONLY "tr"`):
		return o.detectReply, nil
	case strings.Contains(prompt, "You are a SQL assistant"):
		o.generateCalls++
		return o.generateReply, nil
	default:
		o.synthesizeCalls++
		return o.synthesizeReply, nil
	}
}

type fakeExecutor struct {
	calls  int
	result store.Result
}

func (f *fakeExecutor) Execute(_ context.Context, _ string) (store.Result, error) {
	f.calls++
	return f.result, nil
}

func newTestAssistant(o *scriptedOracle, executor store.Executor) *Assistant {
	return New(
		locale.NewDetector(o),
		sqlgen.NewGenerator(o, executor, cache.New[sqlgen.Result]()),
		respond.NewSynthesizer(o),
		nil,
	)
}

func TestAnswerEnglishQuestionEndToEnd(t *testing.T) {
	o := &scriptedOracle{
		detectReply:     "en",
		generateReply:   `{"sql_query": "SELECT CustomerName FROM Customers WHERE Country = 'Germany'", "explanation": "Customers located in Germany.", "results": []}`,
		synthesizeReply: "Here are the customers based in Germany: Alfreds Futterkiste.",
	}
	executor := &fakeExecutor{result: store.Result{
		Columns: []string{"CustomerName"},
		Rows:    [][]any{{"Alfreds Futterkiste"}},
	}}

	response := newTestAssistant(o, executor).Answer(context.Background(), "List all customers from Germany", nil)

	if response.Locale != locale.English {
		t.Fatalf("Locale = %q", response.Locale)
	}
	if !strings.Contains(response.SQLQuery, "Customers") || !strings.Contains(response.SQLQuery, "Germany") {
		t.Fatalf("SQLQuery = %q", response.SQLQuery)
	}
	if response.Reply == "" || !strings.Contains(response.Reply, "Germany") {
		t.Fatalf("Reply = %q", response.Reply)
	}
	if executor.calls != 1 {
		t.Fatalf("executor calls = %d", executor.calls)
	}
	if o.synthesizeCalls != 1 {
		t.Fatalf("synthesize oracle calls = %d", o.synthesizeCalls)
	}
}

func TestAnswerTurkishFallbacksAreTurkish(t *testing.T) {
	// Brace-less generation reply: the pipeline must degrade into the
	// Turkish error string without a second oracle call.
	o := &scriptedOracle{
		detectReply:   "tr",
		generateReply: "Bu istek için SQL üretemiyorum.",
	}

	response := newTestAssistant(o, &fakeExecutor{}).Answer(context.Background(), "Hangi ülkelere satış yapıyoruz?", nil)

	if response.Locale != locale.Turkish {
		t.Fatalf("Locale = %q", response.Locale)
	}
	if !strings.Contains(response.Reply, "Hata") {
		t.Fatalf("Reply = %q, want Turkish error phrasing", response.Reply)
	}
	if o.synthesizeCalls != 0 {
		t.Fatalf("synthesize oracle calls = %d, want 0", o.synthesizeCalls)
	}
	if response.SQLQuery != "" {
		t.Fatalf("SQLQuery = %q, want empty on failure", response.SQLQuery)
	}
}

func TestAnswerRepeatIsServedFromGenerationCache(t *testing.T) {
	o := &scriptedOracle{
		detectReply:     "en",
		generateReply:   `{"sql_query": "SELECT 1", "explanation": "x", "results": []}`,
		synthesizeReply: "One.",
	}
	executor := &fakeExecutor{result: store.Result{Columns: []string{"1"}, Rows: [][]any{{int64(1)}}}}
	a := newTestAssistant(o, executor)

	history := []sqlgen.Turn{{User: "hi", Bot: "hello"}}
	a.Answer(context.Background(), "select one", history)
	a.Answer(context.Background(), "select one", history)

	if o.generateCalls != 1 {
		t.Fatalf("generation oracle calls = %d, want 1", o.generateCalls)
	}
	if executor.calls != 1 {
		t.Fatalf("executor calls = %d, want 1", executor.calls)
	}
	// Synthesis is not cached; it runs per request.
	if o.synthesizeCalls != 2 {
		t.Fatalf("synthesize oracle calls = %d, want 2", o.synthesizeCalls)
	}
}

func TestHandleReturnsReplyString(t *testing.T) {
	o := &scriptedOracle{
		detectReply:     "en",
		generateReply:   `{"sql_query": "SELECT ShipperName FROM Shippers", "explanation": "All shippers.", "results": []}`,
		synthesizeReply: "The shippers are Speedy Express, United Package and Federal Shipping.",
	}
	executor := &fakeExecutor{result: store.Result{
		Columns: []string{"ShipperName"},
		Rows:    [][]any{{"Speedy Express"}, {"United Package"}, {"Federal Shipping"}},
	}}

	got := newTestAssistant(o, executor).Handle(context.Background(), "who ships our orders?", nil)
	if got != o.synthesizeReply {
		t.Fatalf("Handle() = %q", got)
	}
}
