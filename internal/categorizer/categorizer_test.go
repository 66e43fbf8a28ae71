package categorizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/models"
)

func TestCategorizer_Categorize(t *testing.T) {
	c := New(DefaultKeywords())

	cases := []struct {
		description string
		current     string
		want        string
	}{
		{"Shell GAS station", "", models.CatFuel},
		{"Fuel top-up", "Other", models.CatFuel},
		{"Brake repair", "", models.CatMaintenance},
		{"Street food market", "", models.CatFood},
		{"Car Insurance premium", "", models.CatInsurance},
		{"Cinema tickets", "Entertainment", "Entertainment"},
		{"Cinema tickets", "", models.CatUncategorized},
		{"Cinema tickets", "   ", models.CatUncategorized},
	}
	for _, tc := range cases {
		t.Run(tc.description+"/"+tc.current, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Categorize(tc.description, tc.current))
		})
	}
}

func TestCategorizer_LongestKeywordWins(t *testing.T) {
	c := New(map[string]string{
		"gas":         models.CatFuel,
		"gas repair":  models.CatMaintenance,
		"  ":          models.CatOther,
		"ignored-cat": "",
	})

	assert.Equal(t, models.CatMaintenance, c.Categorize("Gas repair shop", ""))
	assert.Equal(t, models.CatFuel, c.Categorize("gas", ""))
	assert.Len(t, c.rules, 2)
}

func TestCategorizer_Apply(t *testing.T) {
	c := New(DefaultKeywords())
	txs := []models.Transaction{
		{Description: "gas", Amount: decimal.NewFromInt(40)},
		{Description: "lunch", Category: "Food", Amount: decimal.NewFromInt(12)},
	}

	out := c.Apply(txs)

	require.Len(t, out, 2)
	assert.Equal(t, models.CatFuel, out[0].Category)
	assert.Equal(t, "Food", out[1].Category)
	assert.Empty(t, txs[0].Category, "input is not mutated")
}

func TestDefaultKeywords_FreshCopy(t *testing.T) {
	a := DefaultKeywords()
	a["gas"] = "Changed"

	assert.Equal(t, models.CatFuel, DefaultKeywords()["gas"])
}
