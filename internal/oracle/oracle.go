// Package oracle abstracts the language-model completion service the
// pipeline consumes. Callers hand it a fully built prompt and receive the
// raw generated text; prompt construction and reply parsing stay with the
// pipeline stages.
package oracle

import "context"

type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
