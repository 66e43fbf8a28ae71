package parser

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/models"
)

func testDefaults() models.Budgets {
	return models.Budgets{
		models.CatFuel:  decimal.NewFromInt(1000),
		models.CatOther: decimal.NewFromInt(200),
	}
}

func TestLoadBudgets(t *testing.T) {
	path := writeFile(t, "budgets.csv", "category,budget\nFuel,800\nFood,250.50\n")

	budgets, usedDefaults, err := LoadBudgets(path, testDefaults())

	require.NoError(t, err)
	assert.False(t, usedDefaults)
	assert.Len(t, budgets, 2)
	assert.True(t, decimal.NewFromInt(800).Equal(budgets["Fuel"]))
	assert.True(t, decimal.RequireFromString("250.5").Equal(budgets["Food"]))
}

func TestLoadBudgets_MissingFileUsesDefaults(t *testing.T) {
	defaults := testDefaults()

	budgets, usedDefaults, err := LoadBudgets(filepath.Join(t.TempDir(), "nope.csv"), defaults)

	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.True(t, usedDefaults)
	assert.Len(t, budgets, 2)

	budgets["Fuel"] = decimal.Zero
	assert.True(t, decimal.NewFromInt(1000).Equal(defaults["Fuel"]), "defaults are copied, not shared")
}

func TestLoadBudgets_MalformedUsesDefaults(t *testing.T) {
	cases := map[string]string{
		"missing column":  "category,amount\nFuel,10\n",
		"negative budget": "category,budget\nFuel,-10\n",
		"bad number":      "category,budget\nFuel,lots\n",
		"empty category":  "category,budget\n,10\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "budgets.csv", content)

			budgets, usedDefaults, err := LoadBudgets(path, testDefaults())

			assert.Error(t, err)
			assert.True(t, usedDefaults)
			assert.Len(t, budgets, 2)
		})
	}
}

func TestLoadBudgets_EmptyFileIsEmptyTable(t *testing.T) {
	path := writeFile(t, "budgets.csv", "")

	budgets, usedDefaults, err := LoadBudgets(path, testDefaults())

	require.NoError(t, err)
	assert.False(t, usedDefaults)
	assert.Empty(t, budgets)
}

func TestLoadAverages(t *testing.T) {
	path := writeFile(t, "averages.csv", "category,average\nFuel,1400\nFood,0\n")

	averages, err := LoadAverages(path)

	require.NoError(t, err)
	assert.Len(t, averages, 2)
	assert.True(t, decimal.NewFromInt(1400).Equal(averages["Fuel"]))
}

func TestLoadAverages_EmptyPath(t *testing.T) {
	averages, err := LoadAverages("")

	require.NoError(t, err)
	assert.Empty(t, averages)
}

func TestLoadAverages_NotFound(t *testing.T) {
	_, err := LoadAverages(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}
