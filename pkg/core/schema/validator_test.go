package schema

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type MockProvider struct {
	GenerateFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (m *MockProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.GenerateFunc(ctx, systemPrompt, userPrompt)
}

func validObject() map[string]interface{} {
	return map[string]interface{}{
		"decision_summary": map[string]interface{}{
			"description": "Hire a sales director at 60k",
			"importance":  "Largest fixed cost increase this year",
		},
		"key_metrics": map[string]interface{}{
			"total_cost": map[string]interface{}{"value": "85", "unit": "k€"},
		},
		"critical_factors": []interface{}{
			map[string]interface{}{"factor": "Cash runway", "description": "Six months of coverage"},
		},
		"scenarios":           map[string]interface{}{},
		"recommended_actions": []interface{}{},
	}
}

func TestValidatePassesCompleteObject(t *testing.T) {
	result := Validate(validObject())
	if !result.Valid {
		t.Errorf("complete object should validate, errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestValidateMissingDecisionSummary(t *testing.T) {
	obj := validObject()
	delete(obj, "decision_summary")
	result := Validate(obj)
	if result.Valid {
		t.Fatalf("object without decision_summary must be invalid")
	}
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "decision_summary") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors should name the missing field: %v", result.Errors)
	}
}

func TestValidateMetricMissingValueIsWarning(t *testing.T) {
	obj := validObject()
	obj["key_metrics"] = map[string]interface{}{
		"roi": map[string]interface{}{"unit": "%"},
	}
	result := Validate(obj)
	if !result.Valid {
		t.Errorf("missing metric value must stay a warning, errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Errorf("expected a warning for the missing value")
	}
}

func TestValidateContainerTypeMismatchIsError(t *testing.T) {
	cases := map[string]interface{}{
		"key_metrics":         "not an object",
		"critical_factors":    "not an array",
		"scenarios":           []interface{}{},
		"recommended_actions": map[string]interface{}{},
		"hypotheses":          42,
	}
	for field, wrong := range cases {
		obj := validObject()
		obj[field] = wrong
		result := Validate(obj)
		if result.Valid {
			t.Errorf("%s with wrong container type must be an error", field)
		}
	}
}

func TestValidateEmptySummaryDescriptionIsWarning(t *testing.T) {
	obj := validObject()
	obj["decision_summary"] = map[string]interface{}{"importance": "x"}
	result := Validate(obj)
	if !result.Valid {
		t.Errorf("empty description is a warning, not an error: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Errorf("expected description warning")
	}
}

func TestValidateHypothesesFields(t *testing.T) {
	obj := validObject()
	obj["hypotheses"] = []interface{}{
		map[string]interface{}{"id": "h1", "label": "Salary", "value": 60, "type": "number"},
		map[string]interface{}{"id": "h2", "label": "Start date"},
	}
	result := Validate(obj)
	if !result.Valid {
		t.Errorf("partial hypotheses are warnings: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected exactly one hypothesis warning, got %v", result.Warnings)
	}
}

func TestValidateAndRepairFixesErrors(t *testing.T) {
	broken := map[string]interface{}{
		"key_metrics": "oops",
	}
	provider := &MockProvider{
		GenerateFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			if !strings.Contains(userPrompt, "key_metrics must be an object") {
				t.Errorf("repair prompt should list detected errors")
			}
			return "```json\n{\"decision_summary\": {\"description\": \"fixed\"}, \"key_metrics\": {}}\n```", nil
		},
	}
	repaired := ValidateAndRepair(context.Background(), broken, "question", provider)
	if _, ok := repaired["decision_summary"]; !ok {
		t.Errorf("repaired object should replace the broken one: %+v", repaired)
	}
}

func TestValidateAndRepairKeepsOriginalOnBadRepair(t *testing.T) {
	broken := map[string]interface{}{
		"scenarios": "wrong type",
	}
	provider := &MockProvider{
		GenerateFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			// Repaired output is itself invalid: original must win.
			return "{\"scenarios\": [1,2,3]}", nil
		},
	}
	result := ValidateAndRepair(context.Background(), broken, "q", provider)
	if result["scenarios"] != "wrong type" {
		t.Errorf("invalid repair must not replace the original: %+v", result)
	}
}

func TestValidateAndRepairSurvivesProviderFailure(t *testing.T) {
	broken := map[string]interface{}{"hypotheses": "bad"}
	provider := &MockProvider{
		GenerateFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "", errors.New("upstream unavailable")
		},
	}
	result := ValidateAndRepair(context.Background(), broken, "q", provider)
	if result["hypotheses"] != "bad" {
		t.Errorf("provider failure must leave the original untouched")
	}
}

func TestValidateAndRepairSkipsValidObject(t *testing.T) {
	called := false
	provider := &MockProvider{
		GenerateFunc: func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			called = true
			return "", nil
		},
	}
	ValidateAndRepair(context.Background(), validObject(), "q", provider)
	if called {
		t.Errorf("valid objects must not trigger a repair call")
	}
}
