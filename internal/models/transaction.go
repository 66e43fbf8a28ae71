package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category constants
const (
	CatFuel          = "Fuel"
	CatMaintenance   = "Maintenance"
	CatFood          = "Food"
	CatInsurance     = "Insurance"
	CatOther         = "Other"
	CatUncategorized = "Uncategorized"
)

// DateLayout is the canonical date format used when writing transactions
const DateLayout = "2006-01-02"

// Transaction represents a single validated expense record.
// A positive Amount is an expense.
type Transaction struct {
	Date        time.Time
	Description string
	Category    string
	Amount      decimal.Decimal
}

// Budgets maps a category to its non-negative ceiling for the period
type Budgets map[string]decimal.Decimal

// Clone returns an independent copy of the budget table
func (b Budgets) Clone() Budgets {
	out := make(Budgets, len(b))
	for category, amount := range b {
		out[category] = amount
	}
	return out
}

// Snapshot returns a copy of the transactions that can be handed to the
// analysis engine while the caller keeps mutating its own slice.
func Snapshot(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	return out
}
