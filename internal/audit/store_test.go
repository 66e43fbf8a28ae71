package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/analysis"
	"expense-tracker/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "db", "audit.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(at time.Time, totals analysis.Totals) Run {
	spend := decimal.Zero
	for _, amount := range totals {
		spend = spend.Add(amount)
	}
	return Run{
		RunAt:            at,
		Source:           "data/transactions.csv",
		TransactionCount: len(totals),
		TotalSpend:       spend,
		TotalBudget:      d("2400"),
		Score:            90,
		Explanation:      "Spending is within budget",
		CategoryTotals:   totals,
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	first, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestRecordRun_AndGetRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run := sampleRun(time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC), analysis.Totals{
		models.CatFood: d("400"),
		models.CatFuel: d("1000.50"),
	})
	run.Alerts = []analysis.Alert{
		{Category: models.CatFood, Budget: d("300"), Actual: d("400"), Variance: d("100"), Severity: analysis.SeverityHigh},
	}

	saved, err := store.RecordRun(ctx, run)
	require.NoError(t, err)
	_, err = uuid.Parse(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.AlertCount)

	got, err := store.GetRun(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.True(t, got.RunAt.Equal(run.RunAt))
	assert.True(t, got.TotalSpend.Equal(d("1400.50")))
	assert.Equal(t, 90, got.Score)
	assert.Equal(t, 1, got.AlertCount)
	require.Len(t, got.CategoryTotals, 2)
	assert.True(t, got.CategoryTotals[models.CatFuel].Equal(d("1000.50")))
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, analysis.SeverityHigh, got.Alerts[0].Severity)
	assert.True(t, got.Alerts[0].Variance.Equal(d("100")))
}

func TestGetRun_NotFound(t *testing.T) {
	store := openStore(t)

	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRecordRun_DuplicateIDRollsBack(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run := sampleRun(time.Now(), analysis.Totals{models.CatFood: d("10")})
	run.ID = "fixed"
	_, err := store.RecordRun(ctx, run)
	require.NoError(t, err)

	_, err = store.RecordRun(ctx, run)
	require.Error(t, err)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestListRuns_NewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		saved, err := store.RecordRun(ctx, sampleRun(base.AddDate(0, i, 0), analysis.Totals{models.CatFood: d("100")}))
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Nil(t, runs[0].CategoryTotals)

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListRuns_Empty(t *testing.T) {
	runs, err := openStore(t).ListRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestHistoricalAverages(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	history := []analysis.Totals{
		{models.CatFood: d("900"), models.CatFuel: d("900")},
		{models.CatFood: d("100"), models.CatFuel: d("200")},
		{models.CatFood: d("300"), models.CatFuel: d("400"), models.CatInsurance: d("300")},
	}
	for i, totals := range history {
		_, err := store.RecordRun(ctx, sampleRun(base.AddDate(0, i, 0), totals))
		require.NoError(t, err)
	}

	averages, err := store.HistoricalAverages(ctx, 2)
	require.NoError(t, err)

	assert.True(t, averages[models.CatFood].Equal(d("200")), averages[models.CatFood].String())
	assert.True(t, averages[models.CatFuel].Equal(d("300")), averages[models.CatFuel].String())
	assert.True(t, averages[models.CatInsurance].Equal(d("150")), "missing run counts as zero")
}

func TestHistoricalAverages_NoHistory(t *testing.T) {
	store := openStore(t)

	averages, err := store.HistoricalAverages(context.Background(), 6)
	require.NoError(t, err)
	assert.Empty(t, averages)

	averages, err = store.HistoricalAverages(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, averages)
}

func TestRunFromReport(t *testing.T) {
	report := analysis.Analyze(analysis.Input{
		Transactions: []models.Transaction{
			{Date: time.Now(), Category: models.CatFood, Amount: d("350")},
		},
		Budgets: models.Budgets{models.CatFood: d("300")},
	})
	at := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	run := RunFromReport(at, "tx.csv", report)

	assert.Equal(t, 1, run.TransactionCount)
	assert.Equal(t, 1, run.AlertCount)
	assert.Equal(t, report.Score.Value, run.Score)
	assert.Equal(t, "tx.csv", run.Source)
	run.CategoryTotals[models.CatFood] = d("1")
	assert.True(t, report.CategoryTotals[models.CatFood].Equal(d("350")))
}

func TestAppendTextLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit_logs", "audit.log")
	run := Run{
		RunAt:            time.Date(2024, 3, 31, 9, 5, 7, 0, time.UTC),
		TransactionCount: 12,
		TotalSpend:       d("2100.5"),
		Score:            88,
	}

	require.NoError(t, AppendTextLog(path, run))
	require.NoError(t, AppendTextLog(path, run))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[2024-03-31 09:05:07] Transactions=12, TotalSpend=$2,100.50, EfficiencyScore=88", lines[0])
}
