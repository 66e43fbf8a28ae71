package analysis

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/models"
)

// NoBudgetExplanation is returned when the total budget is zero or negative.
const NoBudgetExplanation = "no budget defined"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// TotalBudget sums every ceiling in the budget table
func TotalBudget(budgets models.Budgets) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range budgets {
		total = total.Add(amount)
	}
	return total
}

// Score rates how closely totalSpend tracked totalBudget on a 0-100 scale.
//
// The penalty is symmetric: spending 50% over budget and spending 50% under
// budget both score 50. A non-positive total budget scores 0 with an
// explicit "no budget defined" explanation. The value is rounded half away
// from zero.
func Score(totalSpend, totalBudget decimal.Decimal, variances Variances) EfficiencyScore {
	if !totalBudget.IsPositive() {
		return EfficiencyScore{Value: 0, Explanation: NoBudgetExplanation}
	}

	utilization := totalSpend.Div(totalBudget)
	penalty := utilization.Sub(one).Abs().Mul(hundred)
	raw := decimal.Max(decimal.Zero, decimal.Min(hundred, hundred.Sub(penalty)))

	return EfficiencyScore{
		Value:       int(raw.Round(0).IntPart()),
		Explanation: explain(variances),
	}
}

// explain lists overrun and under-budget categories in ascending name order.
func explain(variances Variances) string {
	var overruns, under []string
	for _, category := range sortedKeys(variances) {
		if variances[category].IsPositive() {
			overruns = append(overruns, category)
		} else {
			under = append(under, category)
		}
	}

	switch {
	case len(overruns) > 0 && len(under) > 0:
		return fmt.Sprintf("High overruns in %s offset strong cost control in %s.",
			strings.Join(overruns, ", "), strings.Join(under, ", "))
	case len(overruns) > 0:
		return fmt.Sprintf("Overspending in %s reduced efficiency.", strings.Join(overruns, ", "))
	default:
		return "Spending remained within budget across all categories."
	}
}
