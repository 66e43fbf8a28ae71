package writer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"expense-tracker/internal/analysis"
)

// AlertLogHeaders is written once, when the alert log is created
var AlertLogHeaders = []string{"timestamp", "category", "budget", "actual", "variance", "severity"}

// AlertLog appends budget alerts to a CSV audit file
type AlertLog struct {
	path string
}

// NewAlertLog returns an alert log backed by path
func NewAlertLog(path string) *AlertLog {
	return &AlertLog{path: path}
}

// Append writes one row per alert, all stamped with runAt. Nothing is
// written when there are no alerts.
func (l *AlertLog) Append(runAt time.Time, alerts []analysis.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	if err := ensureDir(l.path); err != nil {
		return err
	}

	_, err := os.Stat(l.path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error checking %s: %w", l.path, err)
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", l.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if !exists {
		if err := writer.Write(AlertLogHeaders); err != nil {
			return fmt.Errorf("error writing header to %s: %w", l.path, err)
		}
	}

	stamp := runAt.Format(time.RFC3339)
	for _, alert := range alerts {
		record := []string{
			stamp,
			alert.Category,
			alert.Budget.StringFixed(2),
			alert.Actual.StringFixed(2),
			alert.Variance.StringFixed(2),
			alert.Severity.String(),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing alert to %s: %w", l.path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("error flushing writer for %s: %w", l.path, err)
	}
	return file.Close()
}
