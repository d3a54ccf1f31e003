package analysis

import (
	"math"
	"strconv"
	"strings"

	"github.com/Montabos/Quantis/pkg/models"
)

// EnrichResult annotates a structured result with data-quality metadata,
// derived metrics, and a risk assessment. Runs after extraction, before
// quality scoring.
func EnrichResult(result *models.AnalysisResult, summary models.AvailabilitySummary, notes []string) {
	switch summary.AnalysisType {
	case models.AnalysisFull:
		result.DataQuality = "good"
	case models.AnalysisPartial:
		result.DataQuality = "partial"
	default:
		result.DataQuality = "estimated"
	}

	result.EstimationNotes = append(result.EstimationNotes, notes...)

	// Everything in an estimated-quality result is by definition estimated.
	if result.DataQuality == "estimated" {
		for name, metric := range result.KeyMetrics {
			metric.Estimated = true
			result.KeyMetrics[name] = metric
		}
	}

	addCostImpactRatio(result)

	if result.RiskAssessment == "" {
		result.RiskAssessment = assessRisk(result, summary)
	}

	// When the model surfaced a revenue figure but little else, fill the
	// gaps with industry-ratio estimates rather than leaving holes.
	if revenue, ok := findRevenue(result); ok && len(result.KeyMetrics) < 3 {
		estimates, estimateNotes := EstimateFromRevenue(revenue)
		if result.KeyMetrics == nil {
			result.KeyMetrics = make(map[string]models.Metric)
		}
		for name, metric := range estimates {
			if _, exists := result.KeyMetrics[name]; !exists {
				result.KeyMetrics[name] = metric
			}
		}
		result.EstimationNotes = append(result.EstimationNotes, estimateNotes...)
	}
}

// addCostImpactRatio derives |monthly cash impact| / total cost as a
// percentage when both metrics carry numeric values.
func addCostImpactRatio(result *models.AnalysisResult) {
	cost, okCost := numericMetric(result.KeyMetrics, "total_cost")
	impact, okImpact := numericMetric(result.KeyMetrics, "cash_impact")
	if !okCost || !okImpact || cost == 0 {
		return
	}
	ratio := math.Round(math.Abs(impact)/cost*1000) / 10
	result.KeyMetrics["cost_impact_ratio"] = models.Metric{
		Value:       ratio,
		Unit:        "%",
		Description: "Monthly cash impact relative to total cost",
		Estimated:   result.DataQuality != "good",
	}
}

func assessRisk(result *models.AnalysisResult, summary models.AvailabilitySummary) string {
	if len(summary.CriticalMissing) > 0 {
		return "elevated: critical data is missing, projections rely on estimates"
	}
	if pessimistic, ok := result.Scenarios["pessimistic"]; ok && len(pessimistic.RiskPeriods) > 0 {
		return "moderate: pessimistic scenario identifies cash risk periods"
	}
	if summary.AnalysisType == models.AnalysisFull {
		return "contained: analysis is grounded in complete uploaded data"
	}
	return "moderate: analysis is partially grounded in uploaded data"
}

func numericMetric(metrics map[string]models.Metric, name string) (float64, bool) {
	metric, ok := metrics[name]
	if !ok {
		return 0, false
	}
	return numericValue(metric.Value)
}

func numericValue(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		cleaned := strings.TrimSpace(v)
		cleaned = strings.NewReplacer("€", "", "$", "", "%", "", " ", "", ",", ".").Replace(cleaned)
		cleaned = strings.TrimSuffix(strings.ToLower(cleaned), "k")
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func findRevenue(result *models.AnalysisResult) (float64, bool) {
	for _, name := range []string{"revenue", "chiffre_affaires", "ca", "monthly_revenue"} {
		if v, ok := numericMetric(result.KeyMetrics, name); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}
