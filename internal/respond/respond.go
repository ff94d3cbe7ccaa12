// Package respond turns a structured query result into the final
// natural-language reply. Error, missing-query and empty-result cases are
// answered from fixed locale strings; only real data triggers a second
// oracle call.
package respond

import (
	"context"
	"fmt"
	"strings"

	"github.com/askdb/askdb/internal/locale"
	"github.com/askdb/askdb/internal/oracle"
	"github.com/askdb/askdb/internal/sqlgen"
)

const synthesizePromptFormat = `Given the following SQL query, explanation, and results, generate a natural language response in *%s*:

SQL Query: %s
Explanation: %s
Results: %s

The response should be conversational and easy to understand.`

type Synthesizer struct {
	Oracle oracle.Client
}

func NewSynthesizer(client oracle.Client) *Synthesizer {
	return &Synthesizer{Oracle: client}
}

// Synthesize always returns a reply string, never an error. Precedence:
//  1. result.Err set: locale error string, no oracle call
//  2. empty SQL query: "could not be generated", no oracle call
//  3. no rows: explanation plus "no data" notice, no oracle call
//  4. otherwise one oracle call over the flattened rows
func (s *Synthesizer) Synthesize(ctx context.Context, result sqlgen.Result, l locale.Locale) string {
	if result.Failed() {
		return locale.ErrorMessage(l, result.Err)
	}
	if result.SQLQuery == "" {
		return locale.QueryNotGeneratedMessage(l)
	}
	if len(result.Rows) == 0 {
		return locale.NoDataMessage(l, result.Explanation)
	}

	prompt := fmt.Sprintf(synthesizePromptFormat, l, result.SQLQuery, result.Explanation, FlattenRows(result))

	reply, err := s.Oracle.Complete(ctx, prompt)
	if err != nil {
		return locale.ReplyFailedMessage(l, err.Error())
	}
	if strings.TrimSpace(reply) == "" {
		return locale.ReplyNotGeneratedMessage(l)
	}
	return reply
}

// FlattenRows renders each row as "column: value" pairs in column order,
// one line per row.
func FlattenRows(result sqlgen.Result) string {
	lines := make([]string, 0, len(result.Rows))
	for _, values := range result.Rows {
		pairs := make([]string, 0, len(result.Columns))
		for i, column := range result.Columns {
			if i < len(values) {
				pairs = append(pairs, fmt.Sprintf("%s: %v", column, values[i]))
			}
		}
		lines = append(lines, strings.Join(pairs, ", "))
	}
	return strings.Join(lines, "\n")
}
