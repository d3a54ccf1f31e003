package availability

import (
	"testing"

	"github.com/Montabos/Quantis/pkg/models"
)

func cashFlowFile() models.FileColumnProfile {
	return models.FileColumnProfile{
		FileID:  "f1",
		Name:    "cashflow.csv",
		Columns: []string{"date", "cash_in", "cash_out"},
		NumRows: 24,
	}
}

func cashFlowRequirement(critical bool) models.DataRequirement {
	return models.DataRequirement{
		RequirementID: "req_1",
		DataType:      "cash_flow",
		ColumnsNeeded: []string{"date", "inflow", "outflow", "balance"},
		Critical:      critical,
	}
}

func TestCheckAllEmptyRequirements(t *testing.T) {
	c := NewChecker()
	sum := c.CheckAll(nil, []models.FileColumnProfile{cashFlowFile()})
	if len(sum.Available)+len(sum.Partial)+len(sum.Missing) != 0 {
		t.Errorf("expected empty classification lists, got %+v", sum)
	}
	if sum.CanAnalyze {
		t.Errorf("empty requirements must not be analyzable")
	}
	if sum.AnalysisType != models.AnalysisAdvisoryOnly {
		t.Errorf("analysis type = %s, want advisory_only", sum.AnalysisType)
	}
}

func TestCheckAllNoFiles(t *testing.T) {
	c := NewChecker()
	reqs := []models.DataRequirement{
		cashFlowRequirement(true),
		{RequirementID: "req_2", DataType: "payroll", ColumnsNeeded: []string{"employee", "salary"}},
	}
	sum := c.CheckAll(reqs, nil)
	if len(sum.Missing) != 2 {
		t.Fatalf("missing = %d, want 2", len(sum.Missing))
	}
	for _, r := range sum.Missing {
		if r.MatchScore != 0 {
			t.Errorf("requirement %s: match score = %f, want 0", r.RequirementID, r.MatchScore)
		}
	}
	if len(sum.CriticalMissing) != 1 {
		t.Errorf("critical missing = %d, want 1", len(sum.CriticalMissing))
	}
	if sum.CanAnalyze || sum.AnalysisType != models.AnalysisAdvisoryOnly {
		t.Errorf("no files must yield advisory_only, got %s", sum.AnalysisType)
	}
}

func TestCheckRequirementPartialMatch(t *testing.T) {
	// date, inflow, outflow match (exact + token containment), balance does
	// not: 3/4 = 0.75 -> partial.
	c := NewChecker()
	res := c.CheckRequirement(cashFlowRequirement(false), []models.FileColumnProfile{cashFlowFile()})
	if res.Availability != models.AvailabilityPartial {
		t.Errorf("availability = %s, want partial (score %f)", res.Availability, res.MatchScore)
	}
	if !almostEqual(res.MatchScore, 0.75) {
		t.Errorf("match score = %f, want 0.75", res.MatchScore)
	}
	if res.BestMatch == nil || res.BestMatch.FileID != "f1" {
		t.Errorf("best match = %+v, want file f1", res.BestMatch)
	}
}

func TestClassificationBoundaries(t *testing.T) {
	c := NewChecker()
	tests := []struct {
		name    string
		columns []string
		file    []string
		want    string
	}{
		// 4/5 matched = 0.8 exactly -> available
		{"exactly 0.8", []string{"date", "revenue", "expenses", "margin", "zzz"},
			[]string{"date", "revenue", "expenses", "margin"}, models.AvailabilityAvailable},
		// 1/2 matched = 0.5 exactly -> partial
		{"exactly 0.5", []string{"date", "zzz"},
			[]string{"date"}, models.AvailabilityPartial},
		// 1/3 matched ~ 0.33 -> missing
		{"below 0.5", []string{"date", "zzz", "qqq"},
			[]string{"date"}, models.AvailabilityMissing},
	}
	for _, tc := range tests {
		req := models.DataRequirement{RequirementID: "r", DataType: "cash_flow", ColumnsNeeded: tc.columns}
		file := models.FileColumnProfile{FileID: "f", Name: "f.csv", Columns: tc.file}
		res := c.CheckRequirement(req, []models.FileColumnProfile{file})
		if res.Availability != tc.want {
			t.Errorf("%s: availability = %s (score %f), want %s", tc.name, res.Availability, res.MatchScore, tc.want)
		}
	}
}

func TestTierLadder(t *testing.T) {
	c := NewChecker()
	files := []models.FileColumnProfile{cashFlowFile()}

	// One fully available requirement, nothing critical missing -> full.
	full := c.CheckAll([]models.DataRequirement{
		{RequirementID: "r1", DataType: "cash_flow", ColumnsNeeded: []string{"date", "cash_in", "cash_out"}},
	}, files)
	if full.AnalysisType != models.AnalysisFull || !full.CanAnalyze {
		t.Errorf("analysis type = %s, want full", full.AnalysisType)
	}

	// Only a partial requirement, nothing critical missing -> partial.
	partial := c.CheckAll([]models.DataRequirement{cashFlowRequirement(false)}, files)
	if partial.AnalysisType != models.AnalysisPartial {
		t.Errorf("analysis type = %s, want partial", partial.AnalysisType)
	}

	// Critical requirement missing but another is available -> still partial,
	// never a hard fail while any data exists.
	degraded := c.CheckAll([]models.DataRequirement{
		{RequirementID: "r1", DataType: "cash_flow", ColumnsNeeded: []string{"date", "cash_in", "cash_out"}},
		{RequirementID: "r2", DataType: "payroll", ColumnsNeeded: []string{"employee", "salary", "charges"}, Critical: true},
	}, files)
	if degraded.AnalysisType != models.AnalysisPartial {
		t.Errorf("analysis type = %s, want partial despite critical gap", degraded.AnalysisType)
	}
	if len(degraded.CriticalMissing) != 1 {
		t.Errorf("critical missing = %d, want 1", len(degraded.CriticalMissing))
	}

	// Nothing matches anywhere -> advisory_only.
	advisory := c.CheckAll([]models.DataRequirement{
		{RequirementID: "r1", DataType: "payroll", ColumnsNeeded: []string{"employee", "salary", "charges"}},
	}, files)
	if advisory.AnalysisType != models.AnalysisAdvisoryOnly || advisory.CanAnalyze {
		t.Errorf("analysis type = %s, want advisory_only", advisory.AnalysisType)
	}
}

func TestCheckAllUnaffectedEntriesStable(t *testing.T) {
	// Adding columns for one requirement must not change the classification
	// of an unrelated one.
	c := NewChecker()
	reqs := []models.DataRequirement{
		{RequirementID: "r1", DataType: "cash_flow", ColumnsNeeded: []string{"date", "cash_in", "cash_out"}},
		{RequirementID: "r2", DataType: "revenue", ColumnsNeeded: []string{"revenue"}},
	}
	before := c.CheckAll(reqs, []models.FileColumnProfile{cashFlowFile()})

	richer := cashFlowFile()
	richer.Columns = append(richer.Columns, "monthly_revenue")
	after := c.CheckAll(reqs, []models.FileColumnProfile{richer})

	findR1 := func(sum models.AvailabilitySummary) string {
		for _, lists := range [][]models.AvailabilityResult{sum.Available, sum.Partial, sum.Missing} {
			for _, r := range lists {
				if r.RequirementID == "r1" {
					return r.Availability
				}
			}
		}
		return ""
	}
	if findR1(before) != models.AvailabilityAvailable || findR1(after) != models.AvailabilityAvailable {
		t.Errorf("r1 regressed: before=%s after=%s", findR1(before), findR1(after))
	}
	if after.AnalysisType != models.AnalysisFull {
		t.Errorf("richer file set should reach full, got %s", after.AnalysisType)
	}
}

func TestCheckStepRequirements(t *testing.T) {
	c := NewChecker()
	files := []models.FileColumnProfile{cashFlowFile()}
	reqs := []models.DataRequirement{
		cashFlowRequirement(false),
		{RequirementID: "req_2", DataType: "payroll", ColumnsNeeded: []string{"employee", "salary"}},
	}

	// Recommendations always proceed.
	rec := c.CheckStepRequirements("recommendations", reqs, files)
	if !rec.CanProceed {
		t.Errorf("recommendations step must always proceed")
	}

	// Scenarios needs cash_flow/revenue/expenses; the partial cash_flow
	// requirement with no critical gap is enough.
	scen := c.CheckStepRequirements("scenarios", reqs, files)
	if !scen.CanProceed {
		t.Errorf("scenarios step should proceed on partial cash flow data")
	}

	// Impacts with a critical payroll gap and no usable match cannot proceed
	// when the only covered type is missing.
	hardReqs := []models.DataRequirement{
		{RequirementID: "req_3", DataType: "payroll", ColumnsNeeded: []string{"employee", "salary", "charges"}, Critical: true},
	}
	impacts := c.CheckStepRequirements("impacts", hardReqs, files)
	if impacts.CanProceed {
		t.Errorf("impacts step should be blocked by a critical missing requirement")
	}

	// A step with no matching requirement types proceeds by default.
	free := c.CheckStepRequirements("current_context", []models.DataRequirement{
		{RequirementID: "req_4", DataType: "marketing", ColumnsNeeded: []string{"spend"}},
	}, files)
	if !free.CanProceed {
		t.Errorf("step with no applicable requirements should proceed")
	}
}

func TestAggregateFileMetadata(t *testing.T) {
	files := []models.FileColumnProfile{
		{FileID: "f1", Columns: []string{"date", "cash_in"}, NumRows: 12, Dtypes: map[string]string{"date": "date"}},
		{FileID: "f2", Columns: []string{"date", "revenue"}, NumRows: 6, Dtypes: map[string]string{"revenue": "number"}},
	}
	meta := AggregateFileMetadata(files)
	if meta.FileCount != 2 {
		t.Errorf("file count = %d, want 2", meta.FileCount)
	}
	// date deduplicated: cash_in, date, revenue
	if meta.TotalColumns != 3 {
		t.Errorf("total columns = %d, want 3", meta.TotalColumns)
	}
	if meta.TotalRows != 18 {
		t.Errorf("total rows = %d, want 18", meta.TotalRows)
	}
	if meta.AllDtypes["revenue"] != "number" {
		t.Errorf("dtypes not merged: %+v", meta.AllDtypes)
	}
}
