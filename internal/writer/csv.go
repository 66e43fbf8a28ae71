package writer

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"expense-tracker/internal/models"
)

// TransactionHeaders is the column order used when saving transactions
var TransactionHeaders = []string{"date", "description", "category", "amount"}

// Writer handles CSV file writing
type Writer struct {
	logger *slog.Logger
}

// New creates a new Writer instance
func New(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		logger: logger.With("system", "writer"),
	}
}

// WriteTransactions saves transactions to path sorted by date. The file is
// written to a temporary sibling first and renamed into place so a failed
// write never truncates the existing data.
func (w *Writer) WriteTransactions(path string, txs []models.Transaction) error {
	sorted := models.Snapshot(txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	if err := ensureDir(path); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := writeTransactionFile(tmp, sorted); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error replacing %s: %w", path, err)
	}

	w.logger.Info("Saved transactions", "file", path, "count", len(sorted))
	return nil
}

// writeTransactionFile writes a single CSV file
func writeTransactionFile(filename string, transactions []models.Transaction) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", filename, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(TransactionHeaders); err != nil {
		return fmt.Errorf("error writing header to %s: %w", filename, err)
	}

	for _, tx := range transactions {
		record := []string{
			tx.Date.Format(models.DateLayout),
			tx.Description,
			tx.Category,
			tx.Amount.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing transaction to %s: %w", filename, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("error flushing writer for %s: %w", filename, err)
	}

	return file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	return nil
}
