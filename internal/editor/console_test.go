package editor

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/models"
)

func runConsole(t *testing.T, s *Session, input string) (Action, string) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	c := NewConsole(s, strings.NewReader(input), &out)
	c.now = func() time.Time { return time.Date(2024, 3, 15, 18, 30, 0, 0, time.Local) }

	action, err := c.Run()
	require.NoError(t, err)
	return action, out.String()
}

func TestConsole_AddThenAnalyze(t *testing.T) {
	s := NewSession(seed())

	action, out := runConsole(t, s, "1\nFood\n\nabc\n-3\n25.50\n\n4\n")

	assert.Equal(t, ActionAnalyze, action)
	assert.Contains(t, out, `Invalid amount "abc"`)
	assert.Contains(t, out, `Invalid amount "-3"`)
	assert.Contains(t, out, "Transaction added")

	require.Equal(t, 3, s.Len())
	tx, _ := s.Get(2)
	assert.Equal(t, models.CatFood, tx.Category)
	assert.Equal(t, "Food purchase", tx.Description)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, "2024-03-15", tx.Date.Format(models.DateLayout))
}

func TestConsole_EditKeepsBlankFields(t *testing.T) {
	s := NewSession(seed())

	action, out := runConsole(t, s, "2\n1\n\n\n30\n\n5\n")

	assert.Equal(t, ActionExit, action)
	assert.Contains(t, out, "Transaction updated")

	tx, _ := s.Get(1)
	assert.Equal(t, "Lunch", tx.Description)
	assert.Equal(t, models.CatFood, tx.Category)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, day(2), tx.Date)
}

func TestConsole_EditCategory(t *testing.T) {
	s := NewSession(seed())

	runConsole(t, s, "2\n0\nMaintenance\n2024-03-09\n\n\n5\n")

	tx, _ := s.Get(0)
	assert.Equal(t, models.CatMaintenance, tx.Category)
	assert.Equal(t, "Vehicle maintenance", tx.Description)
	assert.Equal(t, day(9), tx.Date)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(45)))
}

func TestConsole_DeleteAndInvalidIndex(t *testing.T) {
	s := NewSession(seed())

	action, out := runConsole(t, s, "3\n7\n3\n0\n9\n4\n")

	assert.Equal(t, ActionAnalyze, action)
	assert.Contains(t, out, "invalid index: 7")
	assert.Contains(t, out, "Transaction deleted")
	assert.Contains(t, out, `Invalid choice "9"`)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Dirty())
}

func TestConsole_EOFExits(t *testing.T) {
	s := NewSession(seed())

	action, _ := runConsole(t, s, "1\nFuel\n")

	assert.Equal(t, ActionExit, action)
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Dirty())
}
