package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/models"
)

// Severity band ceilings, inclusive.
var (
	lowSeverityCeiling    = decimal.RequireFromString("0.10")
	mediumSeverityCeiling = decimal.RequireFromString("0.25")
)

// EvaluateVariances computes actual minus budget for every category found
// in either totals or budgets. The missing side counts as zero, so spend
// without a configured budget still shows up as a positive variance.
func EvaluateVariances(totals Totals, budgets models.Budgets) Variances {
	variances := make(Variances, len(totals)+len(budgets))

	for category, actual := range totals {
		variances[category] = actual.Sub(budgets[category])
	}
	for category, budget := range budgets {
		if _, seen := variances[category]; seen {
			continue
		}
		variances[category] = totals[category].Sub(budget)
	}

	return variances
}

// GenerateAlerts returns one alert per category that spent more than a
// positive budget, ordered by category name. Categories without a budget
// are never alerted on.
func GenerateAlerts(totals Totals, budgets models.Budgets) []Alert {
	var alerts []Alert

	for category, variance := range EvaluateVariances(totals, budgets) {
		budget := budgets[category]
		if !variance.IsPositive() || !budget.IsPositive() {
			continue
		}

		alerts = append(alerts, Alert{
			Category: category,
			Budget:   budget,
			Actual:   totals[category],
			Variance: variance,
			Severity: ClassifySeverity(variance.Div(budget)),
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].Category < alerts[j].Category
	})

	return alerts
}

// ClassifySeverity maps an overspend ratio (variance / budget) to a severity.
// Each band includes its upper bound: 0.10 is LOW and 0.25 is MEDIUM.
func ClassifySeverity(ratio decimal.Decimal) Severity {
	switch {
	case ratio.LessThanOrEqual(lowSeverityCeiling):
		return SeverityLow
	case ratio.LessThanOrEqual(mediumSeverityCeiling):
		return SeverityMedium
	default:
		return SeverityHigh
	}
}
