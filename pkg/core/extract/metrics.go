package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Montabos/Quantis/pkg/models"
)

// Labeled numeric patterns for the regex fallback. French and English
// variants, plus the compact formats the model likes ("85k€", "-12k€",
// "+4%"). First matching pattern per metric wins.
var (
	costPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:coût|cout|cost).{0,40}total[:\s]*([0-9][0-9,.]*)\s*([€$kK]?)\s*(?:sur|over|for)?\s*([0-9]+)?\s*(?:mois|months?|ans?|years?)?`),
		regexp.MustCompile(`(?i)total.{0,40}(?:coût|cout|cost)[:\s]*([0-9][0-9,.]*)\s*([€$kK]?)\s*(?:sur|over|for)?\s*([0-9]+)?\s*(?:mois|months?)?`),
		regexp.MustCompile(`(?i)([0-9][0-9,.]*)\s*([€$kK]?)\s*(?:total|chargé)`),
		regexp.MustCompile(`(?i)(\d+)\s*k\s*€`),
	}
	cashPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:cash|trésorerie|tresorerie).{0,40}impact[:\s]*(-?[0-9][0-9,.]*)\s*([€$kK]?)`),
		regexp.MustCompile(`(?i)impact.{0,40}(?:cash|trésorerie|tresorerie)[:\s]*(-?[0-9][0-9,.]*)\s*([€$kK]?)`),
		regexp.MustCompile(`(?i)(?:trésorerie|tresorerie)[:\s]*(-?[0-9][0-9,.]*)\s*([€$kK]?)\s*(?:réduction|reduction|impact)`),
		regexp.MustCompile(`(-\d+)\s*k\s*€`),
	}
	breakEvenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:break.{0,5}even|point.{0,5}mort|seuil de rentabilité)[:\s]*([0-9][0-9,.]*)\s*(?:%|percent|pourcent)`),
		regexp.MustCompile(`(?i)([0-9][0-9,.]*)\s*(?:%|percent|pourcent).{0,40}(?:supplémentaire|additional|requis|required)`),
		regexp.MustCompile(`\+([0-9][0-9,.]*)\s*%`),
	}
	paybackPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)payback[:\s]*([0-9][0-9,.]*)\s*(?:months?|mois)`),
		regexp.MustCompile(`(?i)rentabilisé.{0,30}?([0-9][0-9,.]*)\s*(?:mois|months?)`),
		regexp.MustCompile(`(?i)retour.{0,30}investissement[:\s]*([0-9][0-9,.]*)\s*(?:mois|months?)`),
	}
	roiPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ROI[:\s]*([0-9][0-9,.]*)\s*(?:%|percent|pourcent)`),
		regexp.MustCompile(`(?i)return.{0,30}investment[:\s]*([0-9][0-9,.]*)\s*(?:%|percent|pourcent)`),
		regexp.MustCompile(`(?i)retour.{0,30}investissement[:\s]*([0-9][0-9,.]*)\s*(?:%|percent|pourcent)`),
	}
)

// ExtractKeyMetrics pulls labeled key metrics out of narrative text and
// executed-code outputs (print statements often carry the numbers). Purely
// pattern-based and deterministic.
func ExtractKeyMetrics(text string, outputs []string) map[string]models.Metric {
	combined := text
	if len(outputs) > 0 {
		combined = text + "\n" + strings.Join(outputs, "\n")
	}

	metrics := make(map[string]models.Metric)

	for _, re := range costPatterns {
		m := re.FindStringSubmatch(combined)
		if m == nil {
			continue
		}
		value, ok := cleanNumber(m[1])
		if !ok {
			continue
		}
		unit := unitOrDefault(m, re)
		period := submatch(m, 3)
		desc := "Total cost"
		if period != "" {
			desc = fmt.Sprintf("Total cost over %s months", period)
		}
		metrics["total_cost"] = models.Metric{Value: value, Unit: unit, Description: desc}
		break
	}

	for _, re := range cashPatterns {
		m := re.FindStringSubmatch(combined)
		if m == nil {
			continue
		}
		value, ok := cleanNumber(m[1])
		if !ok {
			continue
		}
		metrics["cash_impact"] = models.Metric{
			Value:       value,
			Unit:        unitOrDefault(m, re),
			Description: "Average cash impact",
		}
		break
	}

	for _, re := range breakEvenPatterns {
		m := re.FindStringSubmatch(combined)
		if m == nil {
			continue
		}
		value, ok := cleanNumber(m[1])
		if !ok {
			continue
		}
		metrics["break_even"] = models.Metric{Value: value, Unit: "%", Description: "Additional revenue required"}
		break
	}

	for _, re := range paybackPatterns {
		m := re.FindStringSubmatch(combined)
		if m == nil {
			continue
		}
		value, ok := cleanNumber(m[1])
		if !ok {
			continue
		}
		metrics["payback_period"] = models.Metric{Value: value, Unit: "months", Description: "Payback period"}
		break
	}

	for _, re := range roiPatterns {
		m := re.FindStringSubmatch(combined)
		if m == nil {
			continue
		}
		value, ok := cleanNumber(m[1])
		if !ok {
			continue
		}
		metrics["roi"] = models.Metric{Value: value, Unit: "%", Description: "Return on investment"}
		break
	}

	if len(metrics) == 0 {
		fmt.Printf("[EXTRACT] no key metrics recognized in narrative (%d chars)\n", len(combined))
	}
	return metrics
}

// cleanNumber strips separators and verifies the remainder is numeric.
// Guards against fragments like "." or "-" slipping through a loose pattern.
func cleanNumber(raw string) (string, bool) {
	v := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(raw))
	if v == "" || v == "." || v == "-" {
		return "", false
	}
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return "", false
	}
	return v, true
}

// unitOrDefault picks the captured currency unit, normalizing a bare "k" to
// "k€" and defaulting to "k€" for the compact patterns that hard-code it.
func unitOrDefault(m []string, re *regexp.Regexp) string {
	unit := submatch(m, 2)
	switch unit {
	case "k", "K":
		return "k€"
	case "":
		if strings.Contains(re.String(), "k") {
			return "k€"
		}
		return "€"
	}
	return unit
}

func submatch(m []string, i int) string {
	if i < len(m) {
		return strings.TrimSpace(m[i])
	}
	return ""
}
