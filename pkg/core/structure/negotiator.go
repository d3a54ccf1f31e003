// Package structure negotiates the shape of a decision analysis report.
// Phase 1 asks the model what sections would best analyze the question;
// phase 2 adapts that template to the data actually uploaded. A combined
// single-call variant covers both phases when latency matters.
package structure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Montabos/Quantis/pkg/core/availability"
	"github.com/Montabos/Quantis/pkg/core/extract"
	"github.com/Montabos/Quantis/pkg/core/llm"
	"github.com/Montabos/Quantis/pkg/core/prompt"
	"github.com/Montabos/Quantis/pkg/models"
)

type Negotiator struct {
	provider llm.Provider
}

func NewNegotiator(provider llm.Provider) *Negotiator {
	return &Negotiator{provider: provider}
}

// AnalyzeQuestion derives the ideal data requirements for a question.
// The requirements are an oracle wish list: reconciliation against real
// files happens later and never mutates them.
func (n *Negotiator) AnalyzeQuestion(ctx context.Context, question string) (*models.StructurePlan, error) {
	system, user, err := prompt.RenderDecision(prompt.PromptIDs.QuestionAnalysis, map[string]interface{}{
		"Question": question,
	})
	if err != nil {
		return nil, err
	}

	response, err := n.provider.GenerateResponse(ctx, user, system, nil)
	if err != nil {
		return nil, fmt.Errorf("question analysis failed: %w", err)
	}

	parsed := extract.ExtractJSON(response)
	if parsed == nil {
		fmt.Printf("[STRUCTURE] question analysis returned no JSON, proceeding without requirements\n")
		return &models.StructurePlan{
			DecisionSummary: models.DecisionSummary{Question: question},
		}, nil
	}

	return &models.StructurePlan{
		DecisionSummary:  parseSummary(parsed["decision_summary"], question),
		DataRequirements: parseRequirements(parsed["data_requirements"]),
		AnalysisSteps:    parseStrings(parsed["analysis_steps"]),
	}, nil
}

// DefineStructure runs phase 1: the ideal report template for this decision
// type, before any data has been seen.
func (n *Negotiator) DefineStructure(ctx context.Context, question string) (*models.StructurePlan, error) {
	system, user, err := prompt.RenderDecision(prompt.PromptIDs.StructureDefinition, map[string]interface{}{
		"Question": question,
	})
	if err != nil {
		return nil, err
	}

	response, err := n.provider.GenerateResponse(ctx, user, system, nil)
	if err != nil {
		return nil, fmt.Errorf("structure definition failed: %w", err)
	}

	parsed := extract.ExtractJSON(response)
	if parsed == nil {
		fmt.Printf("[STRUCTURE] definition response unparseable, using fallback structure\n")
		return FallbackPlan(question, true), nil
	}

	plan := &models.StructurePlan{
		DecisionSummary: parseSummary(parsed["decision_summary"], question),
	}
	if expected, ok := parsed["expected_structure"].(map[string]interface{}); ok {
		plan.ExpectedStructure = models.ReportStructure{
			Sections: parseSections(expected["sections"]),
			Charts:   parseCharts(expected["charts_required"]),
		}
		plan.DataRequirements = parseRequirements(expected["data_needs"])
	}
	if len(plan.ExpectedStructure.Sections) == 0 {
		plan.ExpectedStructure = FallbackStructure(true)
	}
	return plan, nil
}

// AdaptStructure runs phase 2: every section of the expected template gets a
// status tag reflecting what the uploaded data can actually support.
func (n *Negotiator) AdaptStructure(ctx context.Context, expected models.ReportStructure, files []models.FileColumnProfile) (*models.ReportStructure, map[string]any, []models.MissingDataRequest, error) {
	encoded, err := json.MarshalIndent(expected, "", "  ")
	if err != nil {
		return nil, nil, nil, err
	}

	system, user, err := prompt.RenderDecision(prompt.PromptIDs.StructureAdaptation, map[string]interface{}{
		"ExpectedStructure":   string(encoded),
		"FileMetadataSection": fileMetadataSection(files),
	})
	if err != nil {
		return nil, nil, nil, err
	}

	response, err := n.provider.GenerateResponse(ctx, user, system, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("structure adaptation failed: %w", err)
	}

	parsed := extract.ExtractJSON(response)
	if parsed == nil {
		fmt.Printf("[STRUCTURE] adaptation response unparseable, using fallback structure\n")
		fallback := FallbackStructure(len(files) > 0)
		fallback.Adapted = true
		return &fallback, nil, nil, nil
	}

	final, requests, _ := parseFinalStructure(parsed["final_structure"])
	if final == nil {
		fallback := FallbackStructure(len(files) > 0)
		final = &fallback
	}
	final.Adapted = true

	analysis, _ := parsed["file_analysis"].(map[string]interface{})
	return final, analysis, requests, nil
}

// AnalyzeAndAdapt performs both phases in a single model call. Output shape
// matches running DefineStructure then AdaptStructure sequentially.
func (n *Negotiator) AnalyzeAndAdapt(ctx context.Context, question string, files []models.FileColumnProfile) (*models.StructurePlan, error) {
	hasFiles := len(files) > 0

	instructions := "No files were uploaded: mark sections as \"estimated\" or \"needs_data\" accordingly"
	availability := "What can be analyzed without uploaded data, and what must be estimated?"
	if hasFiles {
		instructions = "Analyze the uploaded file metadata below to understand what data is actually available"
		availability = "Which sections can use real data, and which must be estimated?"
	}

	system, user, err := prompt.RenderDecision(prompt.PromptIDs.CombinedStructure, map[string]interface{}{
		"Question":                 question,
		"FileAnalysisInstructions": instructions,
		"DataAvailabilityAnalysis": availability,
		"FileMetadataSection":      fileMetadataSection(files),
	})
	if err != nil {
		return nil, err
	}

	response, err := n.provider.GenerateResponse(ctx, user, system, nil)
	if err != nil {
		return nil, fmt.Errorf("combined structure negotiation failed: %w", err)
	}

	parsed := extract.ExtractJSON(response)
	if parsed == nil {
		fmt.Printf("[STRUCTURE] combined response unparseable, using fallback structure\n")
		return FallbackPlan(question, hasFiles), nil
	}

	plan := &models.StructurePlan{
		DecisionSummary: parseSummary(parsed["decision_summary"], question),
	}
	final, requests, notes := parseFinalStructure(parsed["final_structure"])
	if final == nil {
		fallback := FallbackStructure(hasFiles)
		final = &fallback
	}
	final.Adapted = true
	plan.FinalStructure = final
	plan.ExpectedStructure = *final
	plan.MissingDataRequests = requests
	plan.EstimationNotes = notes
	if analysis, ok := parsed["file_analysis"].(map[string]interface{}); ok {
		plan.FileAnalysis = analysis
	}
	return plan, nil
}

// FallbackStructure is the minimal default used whenever the model's
// structure response cannot be parsed. The pipeline must never receive a
// null structure.
func FallbackStructure(hasFiles bool) models.ReportStructure {
	contextStatus := models.SectionEstimated
	if !hasFiles {
		contextStatus = models.SectionNeedsData
	}
	return models.ReportStructure{
		Sections: []models.StructureSection{
			{SectionName: "Key Metrics", Status: models.SectionEstimated, Required: true},
			{SectionName: "Critical Factors", Status: models.SectionEstimated, Required: true},
			{SectionName: "Current Financial Context", Status: contextStatus, Required: true},
			{SectionName: "Scenarios", Status: models.SectionEstimated, Required: false},
			{SectionName: "Recommendations", Status: models.SectionEstimated, Required: true},
		},
		Charts: []models.ChartSpec{
			{ChartID: "multi_scenario_cash_flow", Type: "line", Title: "Projection de trésorerie sur 12 mois", Status: models.SectionEstimated},
		},
	}
}

// FallbackPlan wraps FallbackStructure in a plan carrying just the question.
func FallbackPlan(question string, hasFiles bool) *models.StructurePlan {
	structure := FallbackStructure(hasFiles)
	structure.Adapted = true
	return &models.StructurePlan{
		DecisionSummary:   models.DecisionSummary{Question: question},
		ExpectedStructure: structure,
		FinalStructure:    &structure,
	}
}

func fileMetadataSection(files []models.FileColumnProfile) string {
	if len(files) == 0 {
		return "UPLOADED FILES: none"
	}
	var sb strings.Builder
	sb.WriteString("UPLOADED FILE METADATA:\n")
	for _, f := range files {
		sb.WriteString(fmt.Sprintf("- %s: columns [%s], %d rows\n", f.Name, strings.Join(f.Columns, ", "), f.NumRows))
	}
	meta := availability.AggregateFileMetadata(files)
	sb.WriteString(fmt.Sprintf("TOTAL: %d file(s), %d distinct columns, %d rows\n",
		meta.FileCount, meta.TotalColumns, meta.TotalRows))
	return sb.String()
}

func parseSummary(raw interface{}, question string) models.DecisionSummary {
	summary := models.DecisionSummary{Question: question}
	data, ok := raw.(map[string]interface{})
	if !ok {
		return summary
	}
	if q := asString(data["question"]); q != "" {
		summary.Question = q
	}
	summary.Description = asString(data["description"])
	summary.Importance = asString(data["importance"])
	return summary
}

func parseRequirements(raw interface{}) []models.DataRequirement {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var reqs []models.DataRequirement
	for i, item := range items {
		data, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		req := models.DataRequirement{
			RequirementID: asString(data["requirement_id"]),
			DataType:      asString(data["data_type"]),
			ColumnsNeeded: parseStrings(data["columns_needed"]),
			Description:   asString(data["description"]),
			WhyNeeded:     asString(data["why_needed"]),
			WhereFound:    asString(data["where_found"]),
			Critical:      asBool(data["critical"]),
		}
		if req.RequirementID == "" {
			req.RequirementID = fmt.Sprintf("req_%d", i+1)
		}
		reqs = append(reqs, req)
	}
	return reqs
}

func parseFinalStructure(raw interface{}) (*models.ReportStructure, []models.MissingDataRequest, []string) {
	data, ok := raw.(map[string]interface{})
	if !ok {
		return nil, nil, nil
	}
	sections := parseSections(data["sections"])
	if len(sections) == 0 {
		return nil, nil, nil
	}
	structure := &models.ReportStructure{
		Sections: sections,
		Charts:   parseCharts(data["charts"]),
	}
	return structure, parseMissingDataRequests(data["missing_data_requests"]), parseStrings(data["estimation_notes"])
}

func parseSections(raw interface{}) []models.StructureSection {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var sections []models.StructureSection
	for _, item := range items {
		data, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := asString(data["section_name"])
		if name == "" {
			continue
		}
		section := models.StructureSection{
			SectionName: name,
			Status:      asString(data["status"]),
			Required:    asBool(data["required"]),
			Description: asString(data["description"]),
			Metrics:     parseMetricNames(data["metrics"]),
		}
		if section.Status == "" {
			section.Status = models.SectionEstimated
		}
		sections = append(sections, section)
	}
	return sections
}

// parseMetricNames accepts both plain string lists and metric object lists.
func parseMetricNames(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var names []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			names = append(names, v)
		case map[string]interface{}:
			if name := asString(v["name"]); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

func parseCharts(raw interface{}) []models.ChartSpec {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var charts []models.ChartSpec
	for _, item := range items {
		data, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		chart := models.ChartSpec{
			ChartID: asString(data["type"]),
			Title:   asString(data["title"]),
			Type:    asString(data["chart_type"]),
			Status:  asString(data["status"]),
		}
		if chart.ChartID == "" {
			continue
		}
		if chart.Type == "" {
			chart.Type = "line"
		}
		charts = append(charts, chart)
	}
	return charts
}

func parseMissingDataRequests(raw interface{}) []models.MissingDataRequest {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var requests []models.MissingDataRequest
	for i, item := range items {
		data, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		canProceed := true
		if v, ok := data["can_proceed_without"].(bool); ok {
			canProceed = v
		}
		request := models.MissingDataRequest{
			RequirementID: fmt.Sprintf("missing_%d", i+1),
			DataType:      asString(data["data_type"]),
			Description:   asString(data["why_needed"]),
			ColumnsNeeded: parseStrings(data["columns_needed"]),
			WhereFound:    asString(data["where_found"]),
			Critical:      asString(data["priority"]) == "high" || !canProceed,
			CanSkip:       canProceed,
		}
		if request.DataType == "" {
			continue
		}
		requests = append(requests, request)
	}
	return requests
}

func parseStrings(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asString(raw interface{}) string {
	s, _ := raw.(string)
	return s
}

func asBool(raw interface{}) bool {
	b, _ := raw.(bool)
	return b
}
