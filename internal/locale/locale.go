// Package locale handles the two-language surface of the assistant:
// classifying which of the supported languages a message is written in and
// providing the fixed reply strings for each.
package locale

import (
	"context"
	"fmt"
	"strings"

	"github.com/askdb/askdb/internal/observability"
	"github.com/askdb/askdb/internal/oracle"
)

type Locale string

const (
	// English is the primary locale and the fail-safe default.
	English Locale = "en"
	// Turkish is the secondary locale, selected only on an exact
	// classification match.
	Turkish Locale = "tr"
)

const detectPromptFormat = `Analyze the following text and determine if it's in Turkish or English.
Respond with ONLY "tr" for Turkish or "en" for English.
Text: %s`

// Detector classifies input text through the completion oracle.
type Detector struct {
	Oracle oracle.Client
}

func NewDetector(client oracle.Client) *Detector {
	return &Detector{Oracle: client}
}

// Detect returns Turkish only when the oracle's trimmed, lowercased reply
// is exactly "tr". Any other reply and any oracle failure fall back to
// English; detection never errors. Results are not cached: detection is
// cheap relative to generation.
func (d *Detector) Detect(ctx context.Context, text string) Locale {
	detected := English
	if d.Oracle != nil {
		reply, err := d.Oracle.Complete(ctx, fmt.Sprintf(detectPromptFormat, text))
		if err == nil && strings.ToLower(strings.TrimSpace(reply)) == string(Turkish) {
			detected = Turkish
		}
	}
	observability.IncrementLanguageDetections(string(detected))
	return detected
}
