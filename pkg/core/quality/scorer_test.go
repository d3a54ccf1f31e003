package quality

import (
	"strings"
	"testing"

	"github.com/Montabos/Quantis/pkg/models"
)

func fullResult() *models.AnalysisResult {
	longText := strings.Repeat("Analyse détaillée de la décision avec projections mensuelles. ", 12)
	return &models.AnalysisResult{
		DecisionSummary: models.DecisionSummary{
			Question:    "Puis-je embaucher un directeur commercial à 60k€ ?",
			Description: "Embauche d'un directeur commercial à 60k€ brut annuel avec charges patronales incluses",
			Importance:  "Plus forte hausse de coûts fixes de l'exercice",
		},
		KeyMetrics: map[string]models.Metric{
			"total_cost":  {Value: "85", Unit: "k€", Description: "Coût total chargé"},
			"cash_impact": {Value: "-12", Unit: "k€", Description: "Impact trésorerie mensuel"},
		},
		CriticalFactors: []models.Factor{
			{Factor: "Trésorerie", Description: "La trésorerie couvre six mois de charges au rythme actuel"},
			{Factor: "Montée en charge", Description: "Trois mois avant la pleine productivité commerciale"},
		},
		Scenarios: map[string]models.Scenario{
			"optimistic":  {Description: "Croissance du CA de 15% dès le deuxième trimestre de la période"},
			"realistic":   {Description: "Croissance modérée avec équilibre atteint au huitième mois environ"},
			"pessimistic": {Description: "CA stable, tension de trésorerie entre mars et juin de l'an prochain"},
		},
		RecommendedActions: []models.Action{
			{Priority: "critical", Action: "Négocier les délais fournisseurs", Impact: "Libère 8k€"},
			{Priority: "important", Action: "Suivi de trésorerie hebdomadaire", Impact: "Visibilité"},
		},
		CurrentContext:   "Trésorerie saine, marge brute stable à 35%",
		FullAnalysisText: longText,
	}
}

func TestScoreFullyPopulatedResult(t *testing.T) {
	report := Score(fullResult())
	// Every rubric item satisfied: 100, excellent.
	if report.QualityScore < 90 {
		t.Errorf("full result score = %d, want >= 90 (issues: %v)", report.QualityScore, report.Issues)
	}
	if report.QualityLevel != "excellent" {
		t.Errorf("quality level = %s, want excellent", report.QualityLevel)
	}
	if report.NeedsImprovement {
		t.Errorf("full result must not need improvement")
	}
}

func TestScoreEmptyResult(t *testing.T) {
	report := Score(&models.AnalysisResult{})
	// -15 desc -10 importance -20 metrics -15 factors -10 scenarios
	// -10 actions -5 context -10 narrative = 5
	if report.QualityScore > 40 {
		t.Errorf("empty result score = %d, want <= 40", report.QualityScore)
	}
	if !report.NeedsImprovement {
		t.Errorf("empty result must need improvement")
	}
	if report.QualityLevel != "needs_improvement" {
		t.Errorf("quality level = %s", report.QualityLevel)
	}
	if len(report.Issues) == 0 || len(report.Suggestions) == 0 {
		t.Errorf("issues and suggestions must be itemized")
	}
}

func TestScoreNeverNegative(t *testing.T) {
	result := &models.AnalysisResult{
		KeyMetrics: map[string]models.Metric{
			"a": {}, "b": {},
		},
		CriticalFactors: []models.Factor{
			{}, {}, {}, {}, {},
		},
		RecommendedActions: []models.Action{
			{}, {}, {}, {}, {},
		},
	}
	report := Score(result)
	if report.QualityScore < 0 {
		t.Errorf("score must be floored at 0, got %d", report.QualityScore)
	}
}

func TestScorePenalizesMissingMetricValue(t *testing.T) {
	result := fullResult()
	result.KeyMetrics["roi"] = models.Metric{Unit: "%"}
	report := Score(result)

	found := false
	for _, issue := range report.Issues {
		if strings.Contains(issue, "roi") && strings.Contains(issue, "missing value") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing metric value should be itemized: %v", report.Issues)
	}
	if report.QualityScore != 95 {
		// 100 - 5 for the missing value; roi still has a unit so no
		// context penalty.
		t.Errorf("score = %d, want 95", report.QualityScore)
	}
}

func TestScoreShortNarrativeBands(t *testing.T) {
	result := fullResult()

	result.FullAnalysisText = strings.Repeat("x", 300)
	mid := Score(result)
	if mid.QualityScore != 95 {
		t.Errorf("narrative in [200,500) should cost 5: got %d", mid.QualityScore)
	}

	result.FullAnalysisText = "short"
	low := Score(result)
	if low.QualityScore != 90 {
		t.Errorf("narrative under 200 should cost 10: got %d", low.QualityScore)
	}
}

func TestScoreScenarioCountPenalty(t *testing.T) {
	result := fullResult()
	result.Scenarios = map[string]models.Scenario{
		"realistic": {Description: "Une seule trajectoire décrite avec suffisamment de détail ici"},
	}
	report := Score(result)
	if report.QualityScore != 95 {
		t.Errorf("fewer than 2 of 3 scenarios should cost 5: got %d (issues %v)", report.QualityScore, report.Issues)
	}
}
