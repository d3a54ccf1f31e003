// Package schema validates extracted report objects against the expected
// result shape. Wrong container types are errors; missing optional sub-fields
// only warn. Invalid objects get one LLM repair round-trip and never come
// back worse than they went in.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Montabos/Quantis/pkg/core/extract"
	"github.com/Montabos/Quantis/pkg/core/prompt"
)

// AIProvider is the minimal text-generation surface the repair round-trip
// needs. Defined here so callers can plug any backing model.
type AIProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ValidationResult itemizes what is wrong with an extracted object.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks an extracted object against the expected result schema.
// decision_summary is the only required top-level field.
func Validate(data map[string]interface{}) ValidationResult {
	var errors, warnings []string

	if _, ok := data["decision_summary"]; !ok {
		errors = append(errors, "Missing required field: decision_summary")
	} else if ds, ok := data["decision_summary"].(map[string]interface{}); !ok {
		errors = append(errors, "decision_summary must be an object")
	} else if desc, _ := ds["description"].(string); desc == "" {
		warnings = append(warnings, "decision_summary.description is missing or empty")
	}

	if raw, ok := data["key_metrics"]; ok {
		if metrics, ok := raw.(map[string]interface{}); !ok {
			errors = append(errors, "key_metrics must be an object")
		} else {
			for name, md := range metrics {
				metric, ok := md.(map[string]interface{})
				if !ok {
					warnings = append(warnings, fmt.Sprintf("Metric %s is not an object", name))
					continue
				}
				if _, ok := metric["value"]; !ok {
					warnings = append(warnings, fmt.Sprintf("Metric %s missing 'value' field", name))
				}
			}
		}
	}

	if raw, ok := data["critical_factors"]; ok {
		if factors, ok := raw.([]interface{}); !ok {
			errors = append(errors, "critical_factors must be an array")
		} else {
			for i, fd := range factors {
				factor, ok := fd.(map[string]interface{})
				if !ok {
					warnings = append(warnings, fmt.Sprintf("critical_factors[%d] is not an object", i))
					continue
				}
				if _, hasName := factor["factor"]; !hasName {
					warnings = append(warnings, fmt.Sprintf("critical_factors[%d] missing required fields", i))
				} else if _, hasDesc := factor["description"]; !hasDesc {
					warnings = append(warnings, fmt.Sprintf("critical_factors[%d] missing required fields", i))
				}
			}
		}
	}

	if raw, ok := data["scenarios"]; ok {
		if _, ok := raw.(map[string]interface{}); !ok {
			errors = append(errors, "scenarios must be an object")
		}
	}

	if raw, ok := data["recommended_actions"]; ok {
		if actions, ok := raw.([]interface{}); !ok {
			errors = append(errors, "recommended_actions must be an array")
		} else {
			for i, ad := range actions {
				action, ok := ad.(map[string]interface{})
				if !ok {
					warnings = append(warnings, fmt.Sprintf("recommended_actions[%d] is not an object", i))
					continue
				}
				if _, ok := action["action"]; !ok {
					warnings = append(warnings, fmt.Sprintf("recommended_actions[%d] missing 'action' field", i))
				}
			}
		}
	}

	if raw, ok := data["hypotheses"]; ok {
		if hyps, ok := raw.([]interface{}); !ok {
			errors = append(errors, "hypotheses must be an array")
		} else {
			for i, hd := range hyps {
				hyp, ok := hd.(map[string]interface{})
				if !ok {
					warnings = append(warnings, fmt.Sprintf("hypotheses[%d] is not an object", i))
					continue
				}
				for _, field := range []string{"id", "label", "value", "type"} {
					if _, ok := hyp[field]; !ok {
						warnings = append(warnings, fmt.Sprintf("hypotheses[%d] missing required fields (id, label, value, type)", i))
						break
					}
				}
			}
		}
	}

	return ValidationResult{
		Valid:    len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}

// ValidateAndRepair validates the object and, on errors, asks the model once
// for a corrected version. If the repaired object is still invalid the
// original is returned: repair must never regress quality silently.
func ValidateAndRepair(ctx context.Context, data map[string]interface{}, question string, provider AIProvider) map[string]interface{} {
	validation := Validate(data)
	if validation.Valid {
		return data
	}
	fmt.Printf("[SCHEMA] validation errors: %v\n", validation.Errors)

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return data
	}

	system, err := prompt.Get().GetSystemPrompt(prompt.PromptIDs.Repair)
	if err != nil {
		system = "You repair JSON extracted from financial analyses. Return ONLY the corrected JSON object, no commentary."
	}
	user := buildRepairPrompt(question, string(encoded), validation.Errors)
	response, err := provider.Generate(ctx, system, user)
	if err != nil {
		fmt.Printf("[SCHEMA] repair call failed: %v\n", err)
		return data
	}

	repaired := extract.ExtractJSON(response)
	if repaired == nil {
		fmt.Printf("[SCHEMA] repair response contained no JSON\n")
		return data
	}
	if revalidated := Validate(repaired); !revalidated.Valid {
		fmt.Printf("[SCHEMA] repaired object still invalid: %v\n", revalidated.Errors)
		return data
	}
	fmt.Printf("[SCHEMA] repair succeeded\n")
	return repaired
}

func buildRepairPrompt(question, encoded string, errors []string) string {
	var sb strings.Builder
	sb.WriteString("The following JSON extracted from a financial analysis contains errors. Fix it so it is valid and complete.\n\n")
	sb.WriteString("Original question: " + question + "\n\n")
	sb.WriteString("JSON to fix:\n```json\n" + encoded + "\n```\n\n")
	sb.WriteString("Detected errors:\n")
	for _, e := range errors {
		sb.WriteString("- " + e + "\n")
	}
	sb.WriteString(`
Instructions:
1. Fix every listed error
2. Keep all existing valid data
3. Add missing fields with values appropriate to the context
4. Return ONLY the corrected JSON, no extra text

Expected shape:
- decision_summary: { description: string, importance: string }
- key_metrics: { [name]: { value: string|number, unit?: string, description?: string } }
- critical_factors: [{ factor: string, description: string }]
- scenarios: { optimistic?: { description }, realistic?: { description }, pessimistic?: { description } }
- recommended_actions: [{ priority: "critical"|"important"|"recommended", action: string, impact?: string }]
- alternatives: [{ name: string, description: string }]
- hypotheses: [{ id: string, label: string, value: number|string, type: string }]

Corrected JSON:`)
	return sb.String()
}
