package models

// DataRequirement describes one block of financial data a decision question
// needs. Produced once per question by the structure negotiator and immutable
// afterward.
type DataRequirement struct {
	RequirementID string   `json:"requirement_id"`
	DataType      string   `json:"data_type"` // 'cash_flow', 'balance_sheet', 'payroll', etc.
	ColumnsNeeded []string `json:"columns_needed"`
	Description   string   `json:"description"`
	WhyNeeded     string   `json:"why_needed"`
	WhereFound    string   `json:"where_found"`
	Critical      bool     `json:"critical"`
}

// FileColumnProfile is the column-level metadata of one uploaded file,
// captured at upload time. Read-only input to reconciliation.
type FileColumnProfile struct {
	FileID       string            `json:"file_id"`
	Name         string            `json:"name"`
	Columns      []string          `json:"columns"`
	Dtypes       map[string]string `json:"dtypes"` // column -> 'date' | 'number' | 'text'
	NumRows      int               `json:"num_rows"`
	HasTotalRows bool              `json:"has_total_rows"`
	SampleRows   [][]string        `json:"sample_rows,omitempty"`
}

// ColumnMatch pairs one required column with its best available candidate.
type ColumnMatch struct {
	RequiredColumn string  `json:"required_column"`
	MatchedColumn  string  `json:"matched_column,omitempty"`
	Score          float64 `json:"score"`
}

// MatchResult is the outcome of matching one requirement's columns against a
// single file.
type MatchResult struct {
	Matched   map[string]ColumnMatch `json:"matched"`
	Unmatched []string               `json:"unmatched"`
	MatchRate float64                `json:"match_rate"`
}

// FileMatchDetail records how well one file covered a requirement.
type FileMatchDetail struct {
	FileID    string      `json:"file_id"`
	FileName  string      `json:"file_name"`
	MatchRate float64     `json:"match_rate"`
	Detail    MatchResult `json:"detail"`
}

// Availability classification for a single requirement.
const (
	AvailabilityAvailable = "available"
	AvailabilityPartial   = "partial"
	AvailabilityMissing   = "missing"
)

// Analysis tiers, ordered by data coverage.
const (
	AnalysisFull         = "full"
	AnalysisPartial      = "partial"
	AnalysisAdvisoryOnly = "advisory_only"
)

// AvailabilityResult classifies one requirement against the uploaded files.
// Recomputed on every reconciliation call, never persisted.
type AvailabilityResult struct {
	RequirementID string            `json:"requirement_id"`
	DataType      string            `json:"data_type"`
	Availability  string            `json:"availability"` // available | partial | missing
	MatchScore    float64           `json:"match_score"`
	BestMatch     *FileMatchDetail  `json:"best_match,omitempty"`
	AllMatches    []FileMatchDetail `json:"all_matches,omitempty"`
	Critical      bool              `json:"critical"`
	Description   string            `json:"description,omitempty"`
}

// AvailabilitySummary rolls requirement classifications up into the tier
// decision the orchestrator acts on.
type AvailabilitySummary struct {
	Available       []AvailabilityResult `json:"available"`
	Partial         []AvailabilityResult `json:"partial"`
	Missing         []AvailabilityResult `json:"missing"`
	CriticalMissing []AvailabilityResult `json:"critical_missing"`
	CanAnalyze      bool                 `json:"can_analyze"`
	AnalysisType    string               `json:"analysis_type"` // full | partial | advisory_only
}

// StepAvailability gates one progressive pass.
type StepAvailability struct {
	StepName        string               `json:"step_name"`
	CanProceed      bool                 `json:"can_proceed"`
	Available       []AvailabilityResult `json:"available"`
	Partial         []AvailabilityResult `json:"partial"`
	Missing         []AvailabilityResult `json:"missing"`
	CriticalMissing []AvailabilityResult `json:"critical_missing"`
}

// Section statuses assigned during structure adaptation.
const (
	SectionAvailable  = "available"
	SectionEstimated  = "estimated"
	SectionNeedsData  = "needs_data"
	SectionSimplified = "simplified"
)

// StructureSection is one section of the negotiated report structure.
type StructureSection struct {
	SectionName string                   `json:"section_name"`
	Status      string                   `json:"status"` // available | estimated | needs_data | simplified
	Required    bool                     `json:"required"`
	Description string                   `json:"description,omitempty"`
	Metrics     []string                 `json:"metrics,omitempty"`
	Elements    []map[string]interface{} `json:"elements,omitempty"`
}

// ChartSpec describes one chart the report should carry.
type ChartSpec struct {
	ChartID  string   `json:"chart_id"`
	Title    string   `json:"title"`
	Type     string   `json:"type"` // line | bar | waterfall | pie
	Status   string   `json:"status,omitempty"`
	DataKeys []string `json:"data_keys,omitempty"`
}

// ReportStructure is the negotiated report template: first the LLM-defined
// ideal, then the data-adapted final form.
type ReportStructure struct {
	Sections []StructureSection `json:"sections"`
	Charts   []ChartSpec        `json:"charts,omitempty"`
	Adapted  bool               `json:"adapted"`
}

// DecisionSummary restates the user's question and its financial stakes.
type DecisionSummary struct {
	Question    string `json:"question"`
	Description string `json:"description"`
	Importance  string `json:"importance"`
}

// StructurePlan is the negotiator's full output for one question.
type StructurePlan struct {
	DecisionSummary     DecisionSummary      `json:"decision_summary"`
	DataRequirements    []DataRequirement    `json:"data_requirements"`
	AnalysisSteps       []string             `json:"analysis_steps,omitempty"`
	ExpectedStructure   ReportStructure      `json:"expected_structure"`
	FinalStructure      *ReportStructure     `json:"final_structure,omitempty"`
	FileAnalysis        map[string]any       `json:"file_analysis,omitempty"`
	MissingDataRequests []MissingDataRequest `json:"missing_data_requests,omitempty"`
	EstimationNotes     []string             `json:"estimation_notes,omitempty"`
}

// Metric is one extracted key metric.
type Metric struct {
	Value       interface{} `json:"value"`
	Unit        string      `json:"unit,omitempty"`
	Description string      `json:"description,omitempty"`
	Estimated   bool        `json:"estimated,omitempty"`
}

// Factor is one critical factor affecting the decision.
type Factor struct {
	Factor      string `json:"factor"`
	Description string `json:"description"`
	Impact      string `json:"impact,omitempty"`
}

// Scenario is one projected outcome path.
type Scenario struct {
	Description string   `json:"description"`
	Hypotheses  string   `json:"hypotheses,omitempty"`
	Milestones  []string `json:"milestones,omitempty"`
	RiskPeriods []string `json:"risk_periods,omitempty"`
}

// Action is one recommended action with its expected effect and timing.
type Action struct {
	Action   string `json:"action"`
	Impact   string `json:"impact,omitempty"`
	Timeline string `json:"timeline,omitempty"`
	Priority string `json:"priority,omitempty"` // critical | important | recommended
}

// Alternative is one strategic alternative to the decision as asked.
type Alternative struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ChartAsset is a rendered chart returned by the code-execution service.
// Data is base64-encoded whenever the result crosses a JSON boundary.
type ChartAsset struct {
	ChartID  string `json:"chart_id"`
	Title    string `json:"title,omitempty"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

// Hypothesis is one adjustable assumption surfaced to the user.
type Hypothesis struct {
	ID    string      `json:"id"`
	Label string      `json:"label"`
	Value interface{} `json:"value"`
	Type  string      `json:"type"` // number | percent | duration
}

// MissingDataRequest asks the user for a concrete data upload.
type MissingDataRequest struct {
	RequirementID string   `json:"requirement_id"`
	DataType      string   `json:"data_type"`
	Description   string   `json:"description"`
	ColumnsNeeded []string `json:"columns_needed,omitempty"`
	WhereFound    string   `json:"where_found,omitempty"`
	Critical      bool     `json:"critical"`
	CanSkip       bool     `json:"can_skip"`
}

// QualityReport is the scorer's diagnostic verdict. Never blocks a result.
type QualityReport struct {
	QualityScore     int      `json:"quality_score"` // 0..100
	QualityLevel     string   `json:"quality_level"` // excellent | good | acceptable | needs_improvement
	NeedsImprovement bool     `json:"needs_improvement"`
	Issues           []string `json:"issues,omitempty"`
	Suggestions      []string `json:"suggestions,omitempty"`
}

// AnalysisResult is the final structured report. FullAnalysisText always
// carries the raw narrative: extraction is additive, never destructive.
type AnalysisResult struct {
	DecisionSummary     DecisionSummary      `json:"decision_summary"`
	KeyMetrics          map[string]Metric    `json:"key_metrics"`
	CriticalFactors     []Factor             `json:"critical_factors"`
	CurrentContext      string               `json:"current_context,omitempty"`
	Scenarios           map[string]Scenario  `json:"scenarios"`
	RecommendedActions  []Action             `json:"recommended_actions"`
	Alternatives        []Alternative        `json:"alternatives,omitempty"`
	Charts              []ChartAsset         `json:"charts,omitempty"`
	Hypotheses          []Hypothesis         `json:"hypotheses,omitempty"`
	MissingDataRequests []MissingDataRequest `json:"missing_data_requests,omitempty"`
	QualityMetrics      *QualityReport       `json:"quality_metrics,omitempty"`
	AnalysisType        string               `json:"analysis_type"`
	DataQuality         string               `json:"data_quality,omitempty"` // estimated | partial | good
	EstimationNotes     []string             `json:"estimation_notes,omitempty"`
	RiskAssessment      string               `json:"risk_assessment,omitempty"`
	FullAnalysisText    string               `json:"full_analysis_text"`
}
