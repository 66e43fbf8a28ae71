package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBudgets_Clone(t *testing.T) {
	original := Budgets{CatFuel: decimal.NewFromInt(1000)}

	clone := original.Clone()
	clone[CatFuel] = decimal.NewFromInt(1)
	clone[CatFood] = decimal.NewFromInt(300)

	assert.True(t, original[CatFuel].Equal(decimal.NewFromInt(1000)))
	assert.NotContains(t, original, CatFood)
}

func TestSnapshot_IsIndependent(t *testing.T) {
	txs := []Transaction{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Description: "gas", Category: CatFuel, Amount: decimal.NewFromInt(40)},
	}

	snap := Snapshot(txs)
	txs[0].Amount = decimal.NewFromInt(999)

	assert.Len(t, snap, 1)
	assert.True(t, snap[0].Amount.Equal(decimal.NewFromInt(40)))
}
