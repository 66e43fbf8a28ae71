package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"expense-tracker/internal/categorizer"
	"expense-tracker/internal/models"
	"expense-tracker/internal/utils"
)

var (
	// ErrFileNotFound is returned when an input file does not exist
	ErrFileNotFound = errors.New("file not found")
	// ErrMissingColumns is returned when a CSV header lacks required columns
	ErrMissingColumns = errors.New("missing required columns")
)

// Column names of the transactions file
const (
	ColDate        = "date"
	ColDescription = "description"
	ColAmount      = "amount"
	ColCategory    = "category"
)

var requiredTransactionColumns = []string{ColDate, ColDescription, ColAmount}

// Parser reads transaction files and hands every row to the categorizer
type Parser struct {
	categorizer *categorizer.Categorizer
	logger      *slog.Logger
}

// Result holds the clean transactions of one file and how many rows were dropped
type Result struct {
	Transactions []models.Transaction
	Dropped      int
}

// New creates a new Parser instance
func New(c *categorizer.Categorizer, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		categorizer: c,
		logger:      logger.With("system", "parser"),
	}
}

// ParseFile reads and parses a transactions CSV file
func (p *Parser) ParseFile(filePath string) (Result, error) {
	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		return Result{}, fmt.Errorf("error opening %s: %w", filePath, err)
	}
	defer f.Close()

	result, err := p.Parse(f)
	if err != nil {
		return Result{}, fmt.Errorf("error parsing %s: %w", filePath, err)
	}

	p.logger.Info("Loaded transactions", "file", filePath, "valid", len(result.Transactions), "dropped", result.Dropped)
	return result, nil
}

// Parse reads transactions from CSV data. Rows whose date or amount cannot
// be parsed are dropped and counted. An empty input yields an empty result.
func (p *Parser) Parse(r io.Reader) (Result, error) {
	table, err := readTable(r, requiredTransactionColumns)
	if err != nil {
		return Result{}, err
	}

	var result Result
	for i, row := range table.rows {
		line := i + 2 // header is line 1

		date, err := utils.ParseDate(table.field(row, ColDate))
		if err != nil {
			p.logger.Debug("Dropping row", "line", line, "error", err)
			result.Dropped++
			continue
		}

		amount, err := utils.ParseAmount(table.field(row, ColAmount))
		if err != nil {
			p.logger.Debug("Dropping row", "line", line, "error", err)
			result.Dropped++
			continue
		}

		tx := models.Transaction{
			Date:        date,
			Description: utils.CleanDescription(table.field(row, ColDescription)),
			Category:    strings.TrimSpace(table.field(row, ColCategory)),
			Amount:      amount,
		}
		if p.categorizer != nil {
			tx.Category = p.categorizer.Categorize(tx.Description, tx.Category)
		} else if tx.Category == "" {
			tx.Category = models.CatUncategorized
		}

		result.Transactions = append(result.Transactions, tx)
	}

	return result, nil
}

// table is a parsed CSV file with a lower-cased header index
type table struct {
	columns map[string]int
	rows    [][]string
}

// field returns the trimmed value of a column, or "" when the column or cell is absent
func (t *table) field(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// readTable reads a CSV document and checks that the header carries the required columns
func readTable(r io.Reader, required []string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &table{columns: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	t := &table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		t.columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := t.columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading row: %w", err)
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}
