package availability

import (
	"sort"
	"strings"

	"github.com/Montabos/Quantis/pkg/models"
)

// Availability classification thresholds on a requirement's best match rate.
// 0.8 means "almost all needed columns fuzzy-matched", 0.5 "about half".
const (
	availableThreshold = 0.8
	partialThreshold   = 0.5
)

// Checker reconciles data requirements against uploaded file column profiles.
type Checker struct {
	Threshold float64
}

func NewChecker() *Checker {
	return &Checker{Threshold: DefaultMatchThreshold}
}

// CheckRequirement classifies a single requirement against every file,
// keeping the file with the highest match rate as the best match.
func (c *Checker) CheckRequirement(req models.DataRequirement, files []models.FileColumnProfile) models.AvailabilityResult {
	result := models.AvailabilityResult{
		RequirementID: req.RequirementID,
		DataType:      strings.ToLower(req.DataType),
		Critical:      req.Critical,
		Description:   req.Description,
		Availability:  models.AvailabilityMissing,
	}

	var best *models.FileMatchDetail
	for _, f := range files {
		match := FindMatches(req.ColumnsNeeded, f.Columns, c.Threshold)
		detail := models.FileMatchDetail{
			FileID:    f.FileID,
			FileName:  f.Name,
			MatchRate: match.MatchRate,
			Detail:    match,
		}
		result.AllMatches = append(result.AllMatches, detail)
		if best == nil || detail.MatchRate > best.MatchRate {
			d := detail
			best = &d
		}
	}

	if best != nil {
		result.BestMatch = best
		result.MatchScore = best.MatchRate
	}

	switch {
	case best != nil && result.MatchScore >= availableThreshold:
		result.Availability = models.AvailabilityAvailable
	case best != nil && result.MatchScore >= partialThreshold:
		result.Availability = models.AvailabilityPartial
	}
	return result
}

// CheckAll classifies every requirement and rolls the results up into the
// tier decision. An empty requirement list or an empty file set is always
// advisory_only.
func (c *Checker) CheckAll(reqs []models.DataRequirement, files []models.FileColumnProfile) models.AvailabilitySummary {
	summary := models.AvailabilitySummary{
		Available:       []models.AvailabilityResult{},
		Partial:         []models.AvailabilityResult{},
		Missing:         []models.AvailabilityResult{},
		CriticalMissing: []models.AvailabilityResult{},
		AnalysisType:    models.AnalysisAdvisoryOnly,
	}
	if len(reqs) == 0 {
		return summary
	}

	if len(files) == 0 {
		for _, req := range reqs {
			summary.Missing = append(summary.Missing, models.AvailabilityResult{
				RequirementID: req.RequirementID,
				DataType:      strings.ToLower(req.DataType),
				Availability:  models.AvailabilityMissing,
				Critical:      req.Critical,
				Description:   req.Description,
			})
		}
		for _, r := range summary.Missing {
			if r.Critical {
				summary.CriticalMissing = append(summary.CriticalMissing, r)
			}
		}
		return summary
	}

	for _, req := range reqs {
		r := c.CheckRequirement(req, files)
		switch r.Availability {
		case models.AvailabilityAvailable:
			summary.Available = append(summary.Available, r)
		case models.AvailabilityPartial:
			summary.Partial = append(summary.Partial, r)
		default:
			summary.Missing = append(summary.Missing, r)
			if r.Critical {
				summary.CriticalMissing = append(summary.CriticalMissing, r)
			}
		}
	}

	// Tier ladder, evaluated strictly in order. Partial is still reachable
	// with critical items missing: any usable data keeps the run alive.
	noCriticalMissing := len(summary.CriticalMissing) == 0
	switch {
	case noCriticalMissing && len(summary.Available) > 0:
		summary.AnalysisType = models.AnalysisFull
	case noCriticalMissing && len(summary.Partial) > 0:
		summary.AnalysisType = models.AnalysisPartial
	case len(summary.Available)+len(summary.Partial) > 0:
		summary.AnalysisType = models.AnalysisPartial
	default:
		summary.AnalysisType = models.AnalysisAdvisoryOnly
	}
	summary.CanAnalyze = summary.AnalysisType != models.AnalysisAdvisoryOnly
	return summary
}

// stepRequirementsMap routes each progressive pass to the data types it
// cares about. Recommendations always proceed.
var stepRequirementsMap = map[string][]string{
	"current_context": {"cash_flow", "balance_sheet", "income_statement"},
	"impacts":         {"cash_flow", "payroll", "expenses"},
	"scenarios":       {"cash_flow", "revenue", "expenses"},
	"recommendations": {},
}

// CheckStepRequirements gates one progressive pass on the availability of the
// data types that pass needs. Presence of any uploaded data with no critical
// gaps is itself evidence enough to attempt a stage; quality judgment is
// deferred downstream.
func (c *Checker) CheckStepRequirements(stepName string, reqs []models.DataRequirement, files []models.FileColumnProfile) models.StepAvailability {
	step := models.StepAvailability{StepName: stepName}

	neededTypes, known := stepRequirementsMap[stepName]
	if stepName == "recommendations" {
		all := c.CheckAll(reqs, files)
		step.Available = all.Available
		step.Partial = all.Partial
		step.CanProceed = true
		return step
	}
	if !known {
		neededTypes = nil
	}

	var neededReqs []models.DataRequirement
	for _, req := range reqs {
		for _, t := range neededTypes {
			if strings.ToLower(req.DataType) == t {
				neededReqs = append(neededReqs, req)
				break
			}
		}
	}
	if len(neededReqs) == 0 {
		step.CanProceed = true
		return step
	}

	sub := c.CheckAll(neededReqs, files)
	step.Available = sub.Available
	step.Partial = sub.Partial
	step.Missing = sub.Missing
	step.CriticalMissing = sub.CriticalMissing

	noCritical := len(sub.CriticalMissing) == 0
	step.CanProceed = len(sub.Available) > 0 ||
		(len(sub.Partial) > 0 && noCritical) ||
		(len(files) > 0 && noCritical)
	return step
}

// FileMetadata is the union view of every uploaded file, embedded into
// analysis prompts.
type FileMetadata struct {
	FileCount    int               `json:"file_count"`
	TotalColumns int               `json:"total_columns"`
	AllColumns   []string          `json:"all_columns"`
	AllDtypes    map[string]string `json:"all_dtypes"`
	TotalRows    int               `json:"total_rows"`
}

// AggregateFileMetadata combines column metadata across all uploaded files.
func AggregateFileMetadata(files []models.FileColumnProfile) FileMetadata {
	meta := FileMetadata{AllDtypes: make(map[string]string)}
	seen := make(map[string]bool)
	for _, f := range files {
		meta.FileCount++
		for _, col := range f.Columns {
			if !seen[col] {
				seen[col] = true
				meta.AllColumns = append(meta.AllColumns, col)
			}
		}
		for col, dt := range f.Dtypes {
			meta.AllDtypes[col] = dt
		}
		meta.TotalRows += f.NumRows
	}
	sort.Strings(meta.AllColumns)
	meta.TotalColumns = len(meta.AllColumns)
	return meta
}
