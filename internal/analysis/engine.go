package analysis

import (
	"github.com/shopspring/decimal"

	"expense-tracker/internal/models"
)

// Input is one immutable snapshot handed to Analyze
type Input struct {
	Transactions       []models.Transaction
	Budgets            models.Budgets
	HistoricalAverages Averages
	// AnomalyThreshold defaults to DefaultAnomalyThreshold when nil.
	// A zero threshold flags every category that did not spend less than
	// its average.
	AnomalyThreshold *decimal.Decimal
}

// Report is the full result of one analysis pass
type Report struct {
	TransactionCount int              `json:"transaction_count"`
	TotalSpend       decimal.Decimal  `json:"total_spend"`
	TotalBudget      decimal.Decimal  `json:"total_budget"`
	CategoryTotals   Totals           `json:"category_totals"`
	Variances        Variances        `json:"variances"`
	Alerts           []Alert          `json:"alerts"`
	Anomalies        []AnomalyFlag    `json:"anomalies"`
	NoBaseline       []string         `json:"no_baseline"`
	Score            EfficiencyScore  `json:"score"`
	Ranking          []CategoryAmount `json:"ranking"`
}

// Analyze runs aggregation, variance evaluation, alerting, anomaly
// detection, scoring and ranking over a single snapshot.
func Analyze(in Input) Report {
	threshold := DefaultAnomalyThreshold
	if in.AnomalyThreshold != nil {
		threshold = *in.AnomalyThreshold
	}

	totalSpend, totals := Aggregate(in.Transactions)
	variances := EvaluateVariances(totals, in.Budgets)
	totalBudget := TotalBudget(in.Budgets)
	anomalies := DetectAnomaliesWithBaseline(totals, in.HistoricalAverages, threshold)

	return Report{
		TransactionCount: len(in.Transactions),
		TotalSpend:       totalSpend,
		TotalBudget:      totalBudget,
		CategoryTotals:   totals,
		Variances:        variances,
		Alerts:           GenerateAlerts(totals, in.Budgets),
		Anomalies:        anomalies.Flags,
		NoBaseline:       anomalies.NoBaseline,
		Score:            Score(totalSpend, totalBudget, variances),
		Ranking:          Rank(totals),
	}
}

// SeverityCounts tallies the report's alerts by severity
func (r Report) SeverityCounts() map[Severity]int {
	counts := map[Severity]int{
		SeverityLow:    0,
		SeverityMedium: 0,
		SeverityHigh:   0,
	}
	for _, alert := range r.Alerts {
		counts[alert.Severity]++
	}
	return counts
}
