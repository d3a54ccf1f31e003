// Package quality grades a finished analysis on a 0-100 completeness rubric.
// The score is diagnostic only: it is logged and surfaced, never used to
// block a result.
package quality

import (
	"fmt"

	"github.com/Montabos/Quantis/pkg/models"
)

// Score starts at 100 and subtracts fixed penalties per missing or weak
// element, floored at 0. Level bands: >=90 excellent, >=75 good,
// >=60 acceptable, below that needs_improvement.
func Score(result *models.AnalysisResult) models.QualityReport {
	score := 100
	var issues, suggestions []string

	desc := result.DecisionSummary.Description
	if desc == "" {
		score -= 15
		issues = append(issues, "Missing decision summary description")
		suggestions = append(suggestions, "Add a detailed description of the decision being analyzed")
	} else if len(desc) < 50 {
		score -= 5
		issues = append(issues, "Decision summary description is too short")
		suggestions = append(suggestions, "Expand the decision summary description with more details")
	}
	if result.DecisionSummary.Importance == "" {
		score -= 10
		issues = append(issues, "Missing decision importance explanation")
		suggestions = append(suggestions, "Explain why this decision matters financially")
	}

	switch {
	case len(result.KeyMetrics) == 0:
		score -= 20
		issues = append(issues, "No key metrics provided")
		suggestions = append(suggestions, "Include at least 2-3 key financial metrics relevant to this decision")
	case len(result.KeyMetrics) < 2:
		score -= 10
		issues = append(issues, "Too few key metrics")
		suggestions = append(suggestions, "Add more key metrics to provide a comprehensive financial picture")
	default:
		for name, metric := range result.KeyMetrics {
			if metric.Value == nil || metric.Value == "" {
				score -= 5
				issues = append(issues, fmt.Sprintf("Metric %s missing value", name))
			}
			if metric.Description == "" && metric.Unit == "" {
				score -= 2
				issues = append(issues, fmt.Sprintf("Metric %s lacks context", name))
			}
		}
	}

	switch {
	case len(result.CriticalFactors) == 0:
		score -= 15
		issues = append(issues, "No critical factors identified")
		suggestions = append(suggestions, "Identify at least 2-3 critical factors that should be considered")
	case len(result.CriticalFactors) < 2:
		score -= 5
		issues = append(issues, "Too few critical factors")
		suggestions = append(suggestions, "Add more critical factors for a thorough analysis")
	default:
		for i, factor := range result.CriticalFactors {
			if factor.Factor == "" {
				score -= 3
				issues = append(issues, fmt.Sprintf("Critical factor %d missing factor name", i+1))
			}
			if len(factor.Description) < 20 {
				score -= 3
				issues = append(issues, fmt.Sprintf("Critical factor %d description is too brief", i+1))
			}
		}
	}

	if len(result.Scenarios) == 0 {
		score -= 10
		issues = append(issues, "No scenarios provided")
		suggestions = append(suggestions, "Include at least realistic and pessimistic scenarios")
	} else {
		count := 0
		for _, name := range []string{"optimistic", "realistic", "pessimistic"} {
			if _, ok := result.Scenarios[name]; ok {
				count++
			}
		}
		if count < 2 {
			score -= 5
			issues = append(issues, "Too few scenarios")
			suggestions = append(suggestions, "Include at least realistic and pessimistic scenarios")
		} else {
			for _, name := range []string{"optimistic", "realistic", "pessimistic"} {
				scenario, ok := result.Scenarios[name]
				if !ok {
					continue
				}
				if scenario.Description == "" {
					score -= 3
					issues = append(issues, fmt.Sprintf("%s scenario missing description", name))
				} else if len(scenario.Description) < 30 {
					score -= 2
					issues = append(issues, fmt.Sprintf("%s scenario description is too brief", name))
				}
			}
		}
	}

	switch {
	case len(result.RecommendedActions) == 0:
		score -= 10
		issues = append(issues, "No recommended actions provided")
		suggestions = append(suggestions, "Include at least 2-3 actionable recommendations")
	case len(result.RecommendedActions) < 2:
		score -= 5
		issues = append(issues, "Too few recommended actions")
		suggestions = append(suggestions, "Add more actionable recommendations")
	default:
		for i, action := range result.RecommendedActions {
			if action.Action == "" {
				score -= 3
				issues = append(issues, fmt.Sprintf("Recommended action %d missing action text", i+1))
			}
			if action.Priority == "" {
				score -= 2
				issues = append(issues, fmt.Sprintf("Recommended action %d missing priority", i+1))
			}
		}
	}

	if result.CurrentContext == "" {
		score -= 5
		issues = append(issues, "Current context is empty")
	}

	narrative := result.FullAnalysisText
	if len(narrative) < 200 {
		score -= 10
		issues = append(issues, "Analysis narrative is too brief")
		suggestions = append(suggestions, "Expand the narrative analysis with more detailed explanations")
	} else if len(narrative) < 500 {
		score -= 5
		issues = append(issues, "Analysis narrative could be more detailed")
	}

	if score < 0 {
		score = 0
	}

	level := "needs_improvement"
	switch {
	case score >= 90:
		level = "excellent"
	case score >= 75:
		level = "good"
	case score >= 60:
		level = "acceptable"
	}

	return models.QualityReport{
		QualityScore:     score,
		QualityLevel:     level,
		NeedsImprovement: score < 75,
		Issues:           issues,
		Suggestions:      suggestions,
	}
}
