package structure

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Montabos/Quantis/pkg/models"
)

type MockProvider struct {
	GenerateFunc func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error)
}

func (m *MockProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	return m.GenerateFunc(ctx, prompt, systemPrompt, options)
}

func (m *MockProvider) AdaptInstructions(raw string) string { return raw }

func sampleFiles() []models.FileColumnProfile {
	return []models.FileColumnProfile{
		{FileID: "f1", Name: "treso.csv", Columns: []string{"date", "cash_in", "cash_out", "balance"}, NumRows: 24},
	}
}

func TestAnalyzeQuestionParsesRequirements(t *testing.T) {
	provider := &MockProvider{
		GenerateFunc: func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
			if !strings.Contains(prompt, "embaucher") {
				t.Errorf("prompt should embed the question")
			}
			return "```json\n" + `{
  "decision_summary": {"question": "q", "description": "desc", "importance": "imp"},
  "data_requirements": [
    {"requirement_id": "req_1", "data_type": "cash_flow", "columns_needed": ["date", "inflow"], "critical": true},
    {"data_type": "payroll", "columns_needed": ["employee", "salary"], "critical": false}
  ],
  "analysis_steps": ["Step 1", "Step 2"]
}` + "\n```", nil
		},
	}
	plan, err := NewNegotiator(provider).AnalyzeQuestion(context.Background(), "Puis-je embaucher ?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.DataRequirements) != 2 {
		t.Fatalf("requirements = %d, want 2", len(plan.DataRequirements))
	}
	if !plan.DataRequirements[0].Critical || plan.DataRequirements[1].Critical {
		t.Errorf("critical flags not preserved")
	}
	if plan.DataRequirements[1].RequirementID != "req_2" {
		t.Errorf("missing requirement IDs should be generated: %q", plan.DataRequirements[1].RequirementID)
	}
	if len(plan.AnalysisSteps) != 2 {
		t.Errorf("analysis steps = %v", plan.AnalysisSteps)
	}
}

func TestAnalyzeQuestionToleratesUnparseableResponse(t *testing.T) {
	provider := &MockProvider{
		GenerateFunc: func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
			return "sorry, no JSON here", nil
		},
	}
	plan, err := NewNegotiator(provider).AnalyzeQuestion(context.Background(), "q")
	if err != nil {
		t.Fatalf("unparseable response must not error: %v", err)
	}
	if plan.DecisionSummary.Question != "q" {
		t.Errorf("question must survive: %+v", plan.DecisionSummary)
	}
	if len(plan.DataRequirements) != 0 {
		t.Errorf("no requirements expected")
	}
}

func TestDefineStructureFallsBackOnGarbage(t *testing.T) {
	provider := &MockProvider{
		GenerateFunc: func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
			return "not json at all", nil
		},
	}
	plan, err := NewNegotiator(provider).DefineStructure(context.Background(), "q")
	if err != nil {
		t.Fatalf("fallback should absorb the parse failure: %v", err)
	}
	if len(plan.ExpectedStructure.Sections) != 5 {
		t.Fatalf("fallback must have exactly 5 sections, got %d", len(plan.ExpectedStructure.Sections))
	}
	names := map[string]bool{}
	for _, s := range plan.ExpectedStructure.Sections {
		names[s.SectionName] = true
		if s.Status != models.SectionEstimated {
			t.Errorf("section %s status = %s, want estimated", s.SectionName, s.Status)
		}
	}
	for _, want := range []string{"Key Metrics", "Critical Factors", "Current Financial Context", "Scenarios", "Recommendations"} {
		if !names[want] {
			t.Errorf("fallback missing section %s", want)
		}
	}
}

func TestFallbackContextNeedsDataWithoutFiles(t *testing.T) {
	structure := FallbackStructure(false)
	for _, s := range structure.Sections {
		if s.SectionName == "Current Financial Context" && s.Status != models.SectionNeedsData {
			t.Errorf("no files: context status = %s, want needs_data", s.Status)
		}
	}
}

func TestAdaptStructureParsesStatusAndRequests(t *testing.T) {
	provider := &MockProvider{
		GenerateFunc: func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
			if !strings.Contains(prompt, "treso.csv") {
				t.Errorf("adaptation prompt should carry file metadata")
			}
			return `{
  "final_structure": {
    "sections": [
      {"section_name": "Key Metrics", "status": "available", "required": true},
      {"section_name": "Scenarios", "status": "estimated"}
    ],
    "charts": [
      {"type": "multi_scenario_cash_flow", "status": "available", "title": "Projection"}
    ],
    "missing_data_requests": [
      {"data_type": "payroll", "why_needed": "exact cost", "can_proceed_without": true, "priority": "medium"}
    ],
    "estimation_notes": ["break-even estimated from revenue trend"]
  },
  "file_analysis": {"data_quality": "good"}
}`, nil
		},
	}
	final, analysis, requests, err := NewNegotiator(provider).AdaptStructure(context.Background(), FallbackStructure(true), sampleFiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !final.Adapted {
		t.Errorf("adapted flag must be set")
	}
	if final.Sections[0].Status != models.SectionAvailable {
		t.Errorf("section status = %s", final.Sections[0].Status)
	}
	if len(requests) != 1 || requests[0].DataType != "payroll" || !requests[0].CanSkip {
		t.Errorf("missing data requests = %+v", requests)
	}
	if analysis["data_quality"] != "good" {
		t.Errorf("file analysis not surfaced: %v", analysis)
	}
}

func TestAnalyzeAndAdaptCombined(t *testing.T) {
	provider := &MockProvider{
		GenerateFunc: func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
			return `{
  "decision_summary": {"question": "q", "description": "d", "importance": "i"},
  "final_structure": {
    "sections": [
      {"section_name": "Key Metrics", "status": "available", "required": true,
       "metrics": [{"name": "Total Cost", "status": "available"}, {"name": "Cash Impact"}]},
      {"section_name": "Recommendations", "status": "estimated", "required": true}
    ],
    "missing_data_requests": [
      {"data_type": "revenue_history", "why_needed": "break-even", "can_proceed_without": false}
    ]
  },
  "file_analysis": {"data_quality": "partial"}
}`, nil
		},
	}
	plan, err := NewNegotiator(provider).AnalyzeAndAdapt(context.Background(), "q", sampleFiles())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.FinalStructure == nil || len(plan.FinalStructure.Sections) != 2 {
		t.Fatalf("final structure = %+v", plan.FinalStructure)
	}
	if got := plan.FinalStructure.Sections[0].Metrics; len(got) != 2 || got[0] != "Total Cost" {
		t.Errorf("metric names = %v", got)
	}
	if len(plan.MissingDataRequests) != 1 {
		t.Fatalf("requests = %+v", plan.MissingDataRequests)
	}
	if plan.MissingDataRequests[0].CanSkip || !plan.MissingDataRequests[0].Critical {
		t.Errorf("can_proceed_without=false must mean critical, not skippable: %+v", plan.MissingDataRequests[0])
	}
}

func TestAnalyzeAndAdaptProviderError(t *testing.T) {
	provider := &MockProvider{
		GenerateFunc: func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	if _, err := NewNegotiator(provider).AnalyzeAndAdapt(context.Background(), "q", nil); err == nil {
		t.Fatalf("provider errors must propagate")
	}
}
