package analysis

import (
	"github.com/shopspring/decimal"

	"expense-tracker/internal/models"
)

// Aggregate sums all transaction amounts and groups them by category.
// An empty input yields a zero total and an empty, non-nil map.
func Aggregate(txs []models.Transaction) (decimal.Decimal, Totals) {
	total := decimal.Zero
	totals := make(Totals)

	for _, tx := range txs {
		total = total.Add(tx.Amount)
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}

	return total, totals
}
