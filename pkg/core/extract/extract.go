// Package extract parses LLM output back into structured report data. A JSON
// cascade runs first; when no JSON survives, regex extraction mines the prose
// directly. Whatever happens, the full narrative text is retained on the
// result: extraction is additive, never destructive.
package extract

import (
	"github.com/Montabos/Quantis/pkg/models"
)

// FromNarrative runs the full regex fallback over narrative text and
// executed-code outputs, producing a structured result skeleton. Safe on any
// input; an unrecognizable narrative yields an empty-but-valid result that
// still carries the original text.
func FromNarrative(text string, outputs []string) *models.AnalysisResult {
	return &models.AnalysisResult{
		KeyMetrics:         ExtractKeyMetrics(text, outputs),
		CriticalFactors:    ExtractCriticalFactors(text),
		Scenarios:          ExtractScenarios(text),
		RecommendedActions: ExtractActions(text),
		Alternatives:       ExtractAlternatives(text),
		FullAnalysisText:   text,
	}
}
