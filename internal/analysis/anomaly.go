package analysis

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultAnomalyThreshold is the relative increase over the historical
// average at which a category is flagged.
var DefaultAnomalyThreshold = decimal.RequireFromString("0.30")

// AnomalyResult separates flagged categories from categories that could not
// be checked because they have no usable baseline.
type AnomalyResult struct {
	Flags      []AnomalyFlag `json:"flags"`
	NoBaseline []string      `json:"no_baseline"`
}

// DetectAnomalies flags categories whose current spend is at least
// thresholdPct above their historical average. Categories without a
// strictly positive average are skipped.
func DetectAnomalies(current Totals, historical Averages, thresholdPct decimal.Decimal) []AnomalyFlag {
	return DetectAnomaliesWithBaseline(current, historical, thresholdPct).Flags
}

// DetectAnomaliesWithBaseline is DetectAnomalies but also reports which
// categories were skipped for lack of a baseline. Both lists are sorted by
// category name.
func DetectAnomaliesWithBaseline(current Totals, historical Averages, thresholdPct decimal.Decimal) AnomalyResult {
	var result AnomalyResult

	for _, category := range sortedKeys(current) {
		avg, ok := historical[category]
		if !ok || !avg.IsPositive() {
			result.NoBaseline = append(result.NoBaseline, category)
			continue
		}

		spend := current[category]
		pct := spend.Sub(avg).Div(avg)
		if pct.GreaterThanOrEqual(thresholdPct) {
			result.Flags = append(result.Flags, AnomalyFlag{
				Category:          category,
				Current:           spend,
				HistoricalAverage: avg,
				PctIncrease:       pct,
			})
		}
	}

	return result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
