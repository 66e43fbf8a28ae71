package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/analysis"
	"expense-tracker/internal/models"
	"expense-tracker/internal/utils"
)

// ErrMalformedRow is returned when a budget or average row cannot be used
var ErrMalformedRow = errors.New("malformed row")

// LoadBudgets reads a category,budget CSV file.
//
// A missing or unreadable file never stops the run: a copy of defaults is
// returned with usedDefaults set, along with the cause so the caller can
// report it.
func LoadBudgets(path string, defaults models.Budgets) (budgets models.Budgets, usedDefaults bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return defaults.Clone(), true, err
	}
	defer f.Close()

	values, err := readAmounts(f, "budget", false)
	if err != nil {
		return defaults.Clone(), true, fmt.Errorf("error loading budgets from %s: %w", path, err)
	}

	return models.Budgets(values), false, nil
}

// LoadAverages reads a category,average CSV file of historical baselines.
// An empty path yields no averages.
func LoadAverages(path string) (analysis.Averages, error) {
	if path == "" {
		return analysis.Averages{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	values, err := readAmounts(f, "average", true)
	if err != nil {
		return nil, fmt.Errorf("error loading averages from %s: %w", path, err)
	}

	return analysis.Averages(values), nil
}

// readAmounts reads a two-column category/amount table. Negative amounts
// are rejected unless allowNegative is set. A repeated category keeps the
// last value.
func readAmounts(r io.Reader, amountColumn string, allowNegative bool) (map[string]decimal.Decimal, error) {
	t, err := readTable(r, []string{ColCategory, amountColumn})
	if err != nil {
		return nil, err
	}

	values := make(map[string]decimal.Decimal, len(t.rows))
	for i, row := range t.rows {
		line := i + 2

		category := t.field(row, ColCategory)
		if category == "" {
			return nil, fmt.Errorf("%w: line %d: empty category", ErrMalformedRow, line)
		}

		amount, err := utils.ParseAmount(t.field(row, amountColumn))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		if amount.IsNegative() && !allowNegative {
			return nil, fmt.Errorf("%w: line %d: negative %s for %s", ErrMalformedRow, line, amountColumn, category)
		}

		values[strings.TrimSpace(category)] = amount
	}

	return values, nil
}
