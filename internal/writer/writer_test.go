package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/analysis"
	"expense-tracker/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWriteTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "transactions.csv")
	txs := []models.Transaction{
		{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Description: "Lunch, downtown", Category: models.CatFood, Amount: d("12.5")},
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Description: "Shell", Category: models.CatFuel, Amount: d("45")},
	}

	require.NoError(t, New(nil).WriteTransactions(path, txs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "date,description,category,amount\n" +
		"2024-03-01,Shell,Fuel,45.00\n" +
		"2024-03-05,\"Lunch, downtown\",Food,12.50\n"
	assert.Equal(t, want, string(data))

	assert.Equal(t, "Lunch, downtown", txs[0].Description, "input order is untouched")
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestAlertLog_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit_logs", "budget_alerts.csv")
	log := NewAlertLog(path)
	runAt := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	alerts := []analysis.Alert{
		{Category: models.CatFood, Budget: d("300"), Actual: d("330"), Variance: d("30"), Severity: analysis.SeverityLow},
	}

	require.NoError(t, log.Append(runAt, alerts))
	require.NoError(t, log.Append(runAt.Add(time.Hour), alerts))
	require.NoError(t, log.Append(runAt, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,category,budget,actual,variance,severity", lines[0])
	assert.Equal(t, "2024-03-31T12:00:00Z,Food,300.00,330.00,30.00,LOW", lines[1])
	assert.Equal(t, "2024-03-31T13:00:00Z,Food,300.00,330.00,30.00,LOW", lines[2])
}

func TestAlertLog_NoAlertsCreatesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.csv")

	require.NoError(t, NewAlertLog(path).Append(time.Now(), nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRenderer_Render(t *testing.T) {
	report := analysis.Report{
		TransactionCount: 4,
		TotalSpend:       d("2100"),
		TotalBudget:      d("2400"),
		Alerts: []analysis.Alert{
			{Category: models.CatFood, Budget: d("300"), Actual: d("400"), Variance: d("100"), Severity: analysis.SeverityHigh},
		},
		Anomalies: []analysis.AnomalyFlag{
			{Category: models.CatFuel, Current: d("1300"), HistoricalAverage: d("1000"), PctIncrease: d("0.3")},
		},
		NoBaseline: []string{models.CatFood},
		Score:      analysis.EfficiencyScore{Value: 88, Explanation: "Food over budget"},
		Ranking: []analysis.CategoryAmount{
			{Category: models.CatFuel, Amount: d("1300")},
			{Category: models.CatFood, Amount: d("400")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).Render(&buf, report))
	out := buf.String()

	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "Total Spend      : $2,100.00")
	assert.Contains(t, out, "Efficiency Score : 88/100")
	assert.Contains(t, out, "Food over budget")
	assert.Contains(t, out, "- 1 category(ies) over budget")
	assert.Contains(t, out, "HIGH severity")
	assert.Contains(t, out, "[HIGH] Food is over budget by $100.00 (actual $400.00, budget $300.00)")
	assert.Contains(t, out, "Fuel is 30.0% above its average of $1,000.00")
	assert.Contains(t, out, "no baseline: Food")
	assert.Contains(t, out, "1. Fuel            $1,300.00")
	assert.Contains(t, out, "2. Food            $400.00")
	assert.Less(t, strings.Index(out, "Expense Summary"), strings.Index(out, "Top Cost Drivers"))
}

func TestRenderer_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	report := analysis.Analyze(analysis.Input{})

	require.NoError(t, NewRenderer(true).Render(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "All categories are within budget")
	assert.Contains(t, out, "no spending recorded")
	assert.NotContains(t, out, "Spending Anomalies")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestRenderer_PropagatesWriteError(t *testing.T) {
	err := NewRenderer(true).Render(failingWriter{}, analysis.Report{})
	assert.ErrorIs(t, err, os.ErrClosed)
}
