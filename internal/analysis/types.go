// Package analysis turns a categorized transaction snapshot and a budget
// table into totals, variances, alerts, anomaly flags, an efficiency score
// and a spend ranking.
//
// Every function in this package is pure: inputs are never mutated, nothing
// is shared between calls and no function returns an error. Degenerate
// inputs (no transactions, no budget, no baseline) produce explicit results
// instead.
package analysis

import (
	"github.com/shopspring/decimal"
)

// Totals maps a category to the summed amount of its transactions.
// A category missing from Totals had no transactions.
type Totals map[string]decimal.Decimal

// Variances maps a category to actual minus budget. Positive is over budget.
type Variances map[string]decimal.Decimal

// Averages maps a category to its prior-period average spend.
type Averages map[string]decimal.Decimal

// Severity classifies how far a category ran over its budget
type Severity string

// Severity levels
const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

func (s Severity) String() string {
	return string(s)
}

// Alert describes a category that spent more than a configured, positive budget
type Alert struct {
	Category string          `json:"category"`
	Budget   decimal.Decimal `json:"budget"`
	Actual   decimal.Decimal `json:"actual"`
	Variance decimal.Decimal `json:"variance"`
	Severity Severity        `json:"severity"`
}

// AnomalyFlag describes a category whose spend rose at least the threshold
// above its historical average
type AnomalyFlag struct {
	Category          string          `json:"category"`
	Current           decimal.Decimal `json:"current"`
	HistoricalAverage decimal.Decimal `json:"historical_average"`
	PctIncrease       decimal.Decimal `json:"pct_increase"`
}

// EfficiencyScore is a 0-100 summary of how closely total spend tracked
// the total budget
type EfficiencyScore struct {
	Value       int    `json:"value"`
	Explanation string `json:"explanation"`
}

// CategoryAmount is one row of a ranking
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}
