package analysis

import (
	"fmt"
	"math"

	"github.com/Montabos/Quantis/pkg/models"
)

// Industry-standard ratios for small-business estimation when real figures
// are unavailable. Estimates built on them are always flagged as such.
const (
	defaultGrossMargin       = 0.35
	payrollShareOfRevenue    = 0.30
	cashShareOfRevenue       = 0.20
	expensesShareOfRevenue   = 0.65
	cashSafetyThreshold      = 15000.0
	defaultPaymentDelayDays  = 45
	defaultStockRotationDays = 60
)

// EstimateFromRevenue derives the standard metric set from a known revenue
// figure using industry ratios. Every metric is marked estimated and every
// derivation is itemized in the returned notes.
func EstimateFromRevenue(revenue float64) (map[string]models.Metric, []string) {
	round := func(v float64) float64 { return math.Round(v) }

	metrics := map[string]models.Metric{
		"estimated_cash": {
			Value:       round(revenue * cashShareOfRevenue),
			Unit:        "€",
			Description: "Estimated cash position",
			Estimated:   true,
		},
		"estimated_expenses": {
			Value:       round(revenue * expensesShareOfRevenue),
			Unit:        "€",
			Description: "Estimated operating expenses",
			Estimated:   true,
		},
		"estimated_payroll": {
			Value:       round(revenue * payrollShareOfRevenue),
			Unit:        "€",
			Description: "Estimated payroll cost",
			Estimated:   true,
		},
		"estimated_gross_margin": {
			Value:       defaultGrossMargin * 100,
			Unit:        "%",
			Description: "Industry-standard gross margin",
			Estimated:   true,
		},
	}

	notes := []string{
		fmt.Sprintf("Cash position estimated at %.0f%% of revenue", cashShareOfRevenue*100),
		fmt.Sprintf("Operating expenses estimated at %.0f%% of revenue", expensesShareOfRevenue*100),
		fmt.Sprintf("Payroll estimated at %.0f%% of revenue", payrollShareOfRevenue*100),
		fmt.Sprintf("Gross margin assumed at industry standard %.0f%%", defaultGrossMargin*100),
		fmt.Sprintf("Customer payment delay assumed at %d days, stock rotation at %d days",
			defaultPaymentDelayDays, defaultStockRotationDays),
	}

	return metrics, notes
}

// CashDangerThreshold is the balance below which a projection month counts
// as a risk period.
func CashDangerThreshold() float64 { return cashSafetyThreshold }
