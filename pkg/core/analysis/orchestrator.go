// Package analysis drives the staged decision-analysis pipeline: structure
// negotiation, per-pass requirement gating, LLM calls, extraction,
// validation, and quality scoring.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Montabos/Quantis/pkg/core/availability"
	"github.com/Montabos/Quantis/pkg/core/extract"
	"github.com/Montabos/Quantis/pkg/core/ingest"
	"github.com/Montabos/Quantis/pkg/core/llm"
	"github.com/Montabos/Quantis/pkg/core/prompt"
	"github.com/Montabos/Quantis/pkg/core/quality"
	"github.com/Montabos/Quantis/pkg/core/schema"
	"github.com/Montabos/Quantis/pkg/core/structure"
	"github.com/Montabos/Quantis/pkg/core/utils"
	"github.com/Montabos/Quantis/pkg/models"
)

// Run modes. Comprehensive is the default whenever files exist; advisory is
// forced when they don't.
const (
	ModeAdvisory      = "advisory"
	ModeComprehensive = "comprehensive"
	ModeProgressive   = "progressive"
)

// Missing-data surfacing thresholds: sparse gaps are absorbed silently,
// systemic gaps are shown to the user.
const (
	missingSurfaceCount  = 3
	criticalSurfaceCount = 2
)

// maxPassContextChars bounds how much of each prior pass feeds the next
// pass's prompt.
const maxPassContextChars = 500

var progressivePasses = []struct {
	Step     string
	PromptID string
}{
	{"current_context", prompt.PromptIDs.CurrentContext},
	{"impacts", prompt.PromptIDs.Impacts},
	{"scenarios", prompt.PromptIDs.Scenarios},
	{"recommendations", prompt.PromptIDs.Recommendations},
}

// CodeExecutor runs an analysis prompt with data files attached. Satisfied
// by llm.CodeExecService; mocked in tests.
type CodeExecutor interface {
	AnalyzeWithFiles(ctx context.Context, prompt string, filePaths []string) (*llm.CodeExecResult, error)
}

// Request is one analysis run: a question plus the uploaded files' profiles
// and on-disk locations.
type Request struct {
	Question  string
	Files     []models.FileColumnProfile
	FilePaths []string
	Mode      string // advisory | comprehensive | progressive; empty = auto
}

type Orchestrator struct {
	provider   llm.Provider
	executor   CodeExecutor
	negotiator *structure.Negotiator
	checker    *availability.Checker
	notifier   *Notifier
}

func NewOrchestrator(provider llm.Provider, executor CodeExecutor) *Orchestrator {
	return &Orchestrator{
		provider:   provider,
		executor:   executor,
		negotiator: structure.NewNegotiator(provider),
		checker:    availability.NewChecker(),
	}
}

// WithNotifier attaches a fire-and-forget status notifier.
func (o *Orchestrator) WithNotifier(n *Notifier) *Orchestrator {
	o.notifier = n
	return o
}

func (o *Orchestrator) status(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	fmt.Printf("[ANALYSIS] %s\n", line)
	if o.notifier != nil {
		o.notifier.Notify(line)
	}
}

// Analyze runs the full pipeline for one question. The returned result
// always carries the raw narrative text alongside the structured fields;
// extraction failure never discards it.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	cache := ingest.NewConversionCache()
	defer cache.Cleanup()

	mode := req.Mode
	if len(req.Files) == 0 {
		mode = ModeAdvisory
	} else if mode == "" {
		mode = ModeComprehensive
	}
	o.status("run %s starting in %s mode", cache.RunID(), mode)

	if mode == ModeAdvisory {
		return o.runAdvisory(ctx, req.Question)
	}

	// Requirements and reconciliation drive tier selection and gating.
	plan, err := o.negotiator.AnalyzeQuestion(ctx, req.Question)
	if err != nil {
		return nil, err
	}
	summary := o.checker.CheckAll(plan.DataRequirements, req.Files)
	o.status("availability: %d available, %d partial, %d missing (tier %s)",
		len(summary.Available), len(summary.Partial), len(summary.Missing), summary.AnalysisType)

	if !summary.CanAnalyze {
		result, err := o.runAdvisory(ctx, req.Question)
		if err != nil {
			return nil, err
		}
		result.MissingDataRequests = surfaceMissingData(plan.DataRequirements, summary)
		return result, nil
	}

	adapted, err := o.negotiator.AnalyzeAndAdapt(ctx, req.Question, req.Files)
	if err != nil {
		return nil, err
	}
	adapted.DataRequirements = plan.DataRequirements

	paths := o.convertFiles(cache, req.FilePaths)

	var result *models.AnalysisResult
	switch mode {
	case ModeProgressive:
		result, err = o.runProgressive(ctx, req.Question, adapted, req.Files, paths)
	default:
		result, err = o.runComprehensive(ctx, req.Question, adapted, paths)
	}
	if err != nil {
		return nil, err
	}

	result.AnalysisType = summary.AnalysisType
	result.MissingDataRequests = append(result.MissingDataRequests,
		surfaceMissingData(plan.DataRequirements, summary)...)
	EnrichResult(result, summary, adapted.EstimationNotes)

	report := quality.Score(result)
	result.QualityMetrics = &report
	o.status("run complete: quality %d (%s)", report.QualityScore, report.QualityLevel)
	return result, nil
}

func (o *Orchestrator) runAdvisory(ctx context.Context, question string) (*models.AnalysisResult, error) {
	system, user, err := prompt.RenderDecision(prompt.PromptIDs.Advisory, map[string]interface{}{
		"Question": question,
	})
	if err != nil {
		return nil, err
	}
	text, err := o.provider.GenerateResponse(ctx, user, system, nil)
	if err != nil {
		return nil, fmt.Errorf("advisory pass failed: %w", err)
	}
	if !utils.ValidateMarkdown(text) {
		o.status("advisory narrative is not parseable markdown, keeping raw text")
	}

	result := extract.FromNarrative(utils.CleanMarkdown(text), nil)
	result.DecisionSummary.Question = question
	result.AnalysisType = models.AnalysisAdvisoryOnly
	result.DataQuality = "estimated"
	result.EstimationNotes = extract.ExtractConsiderations(text)
	report := quality.Score(result)
	result.QualityMetrics = &report
	return result, nil
}

func (o *Orchestrator) runComprehensive(ctx context.Context, question string, plan *models.StructurePlan, paths []string) (*models.AnalysisResult, error) {
	structureJSON, _ := json.MarshalIndent(plan.FinalStructure, "", "  ")
	analysisJSON, _ := json.MarshalIndent(plan.FileAnalysis, "", "  ")

	_, user, err := prompt.RenderDecision(prompt.PromptIDs.FinalReport, map[string]interface{}{
		"Question":         question,
		"AdaptedStructure": string(structureJSON),
		"FileAnalysis":     string(analysisJSON),
	})
	if err != nil {
		return nil, err
	}

	o.status("comprehensive pass: single round trip with %d file(s)", len(paths))
	text, outputs, charts, err := o.generate(ctx, user, paths)
	if err != nil {
		return nil, fmt.Errorf("comprehensive pass failed: %w", err)
	}

	result := o.buildResult(ctx, question, text, outputs)
	result.Charts = append(result.Charts, charts...)
	return result, nil
}

func (o *Orchestrator) runProgressive(ctx context.Context, question string, plan *models.StructurePlan, files []models.FileColumnProfile, paths []string) (*models.AnalysisResult, error) {
	var passTexts []string
	var outputs []string
	var charts []models.ChartAsset
	var stubbed []models.MissingDataRequest

	for _, pass := range progressivePasses {
		step := o.checker.CheckStepRequirements(pass.Step, plan.DataRequirements, files)
		if !step.CanProceed {
			ids := make([]string, 0, len(step.Missing))
			for _, missing := range step.Missing {
				ids = append(ids, fmt.Sprintf("%q", missing.RequirementID))
			}
			o.status("pass %s stubbed: missing %s", pass.Step, strings.Join(ids, ", "))
			passTexts = append(passTexts, fmt.Sprintf("%s: {\"status\": \"missing_data\", \"missing_requirements\": [%s]}",
				pass.Step, strings.Join(ids, ", ")))
			for _, missing := range step.CriticalMissing {
				stubbed = append(stubbed, models.MissingDataRequest{
					RequirementID: missing.RequirementID,
					DataType:      missing.DataType,
					Description:   missing.Description,
					Critical:      true,
				})
			}
			continue
		}

		system, user, err := prompt.RenderDecision(pass.PromptID, map[string]interface{}{
			"Question":        question,
			"PreviousResults": priorContext(passTexts),
		})
		if err != nil {
			return nil, err
		}

		o.status("pass %s running", pass.Step)
		text, passOutputs, passCharts, err := o.generateWithSystem(ctx, system, user, paths)
		if err != nil {
			// Mid-pass failures degrade to an estimated placeholder, the
			// run itself keeps going.
			o.status("pass %s failed, continuing with estimate: %v", pass.Step, err)
			passTexts = append(passTexts, fmt.Sprintf("%s: {\"status\": \"estimated\"}", pass.Step))
			continue
		}
		passTexts = append(passTexts, text)
		outputs = append(outputs, passOutputs...)
		charts = append(charts, passCharts...)
	}

	// Terminal formatting step. Unlike the passes above, a failure here is
	// fatal: there is nothing to fall back on.
	combined := strings.Join(passTexts, "\n\n")
	result, err := o.formatFinal(ctx, question, plan, combined, outputs)
	if err != nil {
		return nil, err
	}
	result.Charts = append(result.Charts, charts...)
	result.MissingDataRequests = append(result.MissingDataRequests, stubbed...)
	return result, nil
}

// formatFinal asks for the consolidated JSON report over the accumulated
// pass texts. Errors propagate: the caller cannot format a response it
// never received.
func (o *Orchestrator) formatFinal(ctx context.Context, question string, plan *models.StructurePlan, combined string, outputs []string) (*models.AnalysisResult, error) {
	structureJSON, _ := json.MarshalIndent(plan.FinalStructure, "", "  ")
	_, user, err := prompt.RenderDecision(prompt.PromptIDs.FinalReport, map[string]interface{}{
		"Question":         question,
		"AdaptedStructure": string(structureJSON),
		"FileAnalysis":     combined,
	})
	if err != nil {
		return nil, err
	}
	text, err := o.provider.GenerateResponse(ctx, user, "", nil)
	if err != nil {
		return nil, fmt.Errorf("final formatting failed: %w", err)
	}
	result := o.buildResult(ctx, question, text, outputs)
	if result.FullAnalysisText == "" {
		result.FullAnalysisText = combined
	}
	return result, nil
}

// buildResult turns raw model text into a structured result: JSON extraction
// with validation and repair first, regex narrative extraction as fallback.
func (o *Orchestrator) buildResult(ctx context.Context, question, text string, outputs []string) *models.AnalysisResult {
	if parsed := extract.ExtractJSON(text); parsed != nil {
		repaired := schema.ValidateAndRepair(ctx, parsed, question, llm.TextGenerator{Provider: o.provider})
		if result := resultFromObject(repaired); result != nil {
			result.FullAnalysisText = text
			if result.DecisionSummary.Question == "" {
				result.DecisionSummary.Question = question
			}
			return result
		}
	}

	result := extract.FromNarrative(utils.CleanMarkdown(text), outputs)
	result.DecisionSummary.Question = question
	return result
}

func (o *Orchestrator) generate(ctx context.Context, user string, paths []string) (string, []string, []models.ChartAsset, error) {
	return o.generateWithSystem(ctx, "", user, paths)
}

// generateWithSystem prefers the code-execution service when file paths are
// present, falling back to the plain text provider.
func (o *Orchestrator) generateWithSystem(ctx context.Context, system, user string, paths []string) (string, []string, []models.ChartAsset, error) {
	if o.executor != nil && len(paths) > 0 {
		execResult, err := o.executor.AnalyzeWithFiles(ctx, user, paths)
		if err != nil {
			return "", nil, nil, err
		}
		var charts []models.ChartAsset
		for i, chart := range execResult.Charts {
			encoded, _ := extract.EncodeBinary(chart.Data).(string)
			charts = append(charts, models.ChartAsset{
				ChartID:  fmt.Sprintf("chart_%d", i+1),
				MimeType: chart.MIMEType,
				Data:     encoded,
			})
		}
		return execResult.AnalysisText, execResult.ExecutionOutputs, charts, nil
	}

	text, err := o.provider.GenerateResponse(ctx, user, system, nil)
	return text, nil, nil, err
}

// convertFiles maps each upload to a CSV the executor can consume. A file
// the cache cannot convert never aborts the run: the original is sent as-is
// while it is still readable, otherwise the file is dropped with a warning
// and the run continues on whatever data remains.
func (o *Orchestrator) convertFiles(cache *ingest.ConversionCache, paths []string) []string {
	var converted []string
	for _, path := range paths {
		out, err := cache.Convert(path)
		if err != nil {
			if _, statErr := os.Stat(path); statErr != nil {
				o.status("excluding unreadable file %s: %v", filepath.Base(path), err)
				continue
			}
			o.status("conversion of %s failed, sending original: %v", filepath.Base(path), err)
			out = path
		}
		converted = append(converted, out)
	}
	return converted
}

// priorContext joins earlier pass texts, truncating each so the prompt stays
// bounded as passes accumulate.
func priorContext(passTexts []string) string {
	if len(passTexts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(passTexts))
	for i, text := range passTexts {
		if len(text) > maxPassContextChars {
			text = text[:maxPassContextChars] + "..."
		}
		parts = append(parts, fmt.Sprintf("Pass %d: %s", i+1, text))
	}
	return strings.Join(parts, "\n\n")
}

// surfaceMissingData converts reconciliation gaps into user-facing requests,
// but only past the noise threshold.
func surfaceMissingData(requirements []models.DataRequirement, summary models.AvailabilitySummary) []models.MissingDataRequest {
	if len(summary.Missing) < missingSurfaceCount && len(summary.CriticalMissing) < criticalSurfaceCount {
		return nil
	}
	byID := make(map[string]models.DataRequirement, len(requirements))
	for _, req := range requirements {
		byID[req.RequirementID] = req
	}
	var requests []models.MissingDataRequest
	for _, missing := range summary.Missing {
		req := byID[missing.RequirementID]
		requests = append(requests, models.MissingDataRequest{
			RequirementID: missing.RequirementID,
			DataType:      missing.DataType,
			Description:   req.Description,
			ColumnsNeeded: req.ColumnsNeeded,
			WhereFound:    req.WhereFound,
			Critical:      missing.Critical,
			CanSkip:       !missing.Critical,
		})
	}
	return requests
}

// resultFromObject maps a validated JSON object onto the result struct via
// a marshal round trip. Returns nil when the object doesn't resemble a
// report at all.
func resultFromObject(data map[string]interface{}) *models.AnalysisResult {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(encoded, &result); err != nil {
		return nil
	}
	if result.DecisionSummary.Description == "" && len(result.KeyMetrics) == 0 && len(result.RecommendedActions) == 0 {
		return nil
	}
	return &result
}
