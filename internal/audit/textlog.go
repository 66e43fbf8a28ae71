package audit

import (
	"fmt"
	"os"
	"path/filepath"

	"expense-tracker/internal/utils"
)

const textLogTimeLayout = "2006-01-02 15:04:05"

// FormatTextLogLine renders the one-line plain-text summary of a run
func FormatTextLogLine(run Run) string {
	return fmt.Sprintf("[%s] Transactions=%d, TotalSpend=%s, EfficiencyScore=%d\n",
		run.RunAt.Format(textLogTimeLayout),
		run.TransactionCount,
		utils.FormatMoney(run.TotalSpend),
		run.Score)
}

// AppendTextLog appends the run summary line to the plain-text audit log,
// creating the file and its directory when missing.
func AppendTextLog(path string, run Run) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatTextLogLine(run)); err != nil {
		return fmt.Errorf("write audit log %s: %w", path, err)
	}
	return f.Close()
}
