// Package editor implements interactive add/edit/delete of transactions.
//
// A Session owns the only mutable copy of the transaction list. The analysis
// engine never sees it directly; callers hand it Snapshot() once editing is
// done.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/models"
)

var (
	ErrInvalidIndex  = errors.New("invalid index")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrEmptyCategory = errors.New("category cannot be empty")
	ErrInvalidDate   = errors.New("date is required")
)

var defaultDescriptions = map[string]string{
	models.CatFuel:        "Fuel expense",
	models.CatFood:        "Food purchase",
	models.CatMaintenance: "Vehicle maintenance",
	models.CatInsurance:   "Insurance payment",
	models.CatOther:       "General expense",
}

// DefaultDescription returns the description used when none is entered
func DefaultDescription(category string) string {
	if d, ok := defaultDescriptions[category]; ok {
		return d
	}
	return category + " expense"
}

// Patch lists the fields to change in an edit. Nil fields are left as they are.
type Patch struct {
	Date        *time.Time
	Category    *string
	Description *string
	Amount      *decimal.Decimal
}

// Session holds the editable transaction list
type Session struct {
	txs   []models.Transaction
	dirty bool
}

// NewSession starts a session over a copy of txs
func NewSession(txs []models.Transaction) *Session {
	return &Session{txs: models.Snapshot(txs)}
}

// Len returns the number of transactions
func (s *Session) Len() int {
	return len(s.txs)
}

// Dirty reports whether any command changed the list
func (s *Session) Dirty() bool {
	return s.dirty
}

// Snapshot returns an independent copy of the current transactions
func (s *Session) Snapshot() []models.Transaction {
	return models.Snapshot(s.txs)
}

// Get returns the transaction at index
func (s *Session) Get(index int) (models.Transaction, error) {
	if err := s.checkIndex(index); err != nil {
		return models.Transaction{}, err
	}
	return s.txs[index], nil
}

// Add appends a transaction. A blank description is replaced by the
// category's default description.
func (s *Session) Add(tx models.Transaction) error {
	tx.Category = strings.TrimSpace(tx.Category)
	if tx.Category == "" {
		return ErrEmptyCategory
	}
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(tx.Description) == "" {
		tx.Description = DefaultDescription(tx.Category)
	}

	s.txs = append(s.txs, tx)
	s.dirty = true
	return nil
}

// Edit applies a patch to the transaction at index. Changing the category
// without giving a description resets the description to the new
// category's default.
func (s *Session) Edit(index int, p Patch) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	tx := s.txs[index]

	if p.Date != nil {
		if p.Date.IsZero() {
			return ErrInvalidDate
		}
		tx.Date = *p.Date
	}
	if p.Amount != nil {
		if !p.Amount.IsPositive() {
			return ErrInvalidAmount
		}
		tx.Amount = *p.Amount
	}
	if p.Category != nil {
		category := strings.TrimSpace(*p.Category)
		if category == "" {
			return ErrEmptyCategory
		}
		tx.Category = category
		if p.Description == nil || strings.TrimSpace(*p.Description) == "" {
			tx.Description = DefaultDescription(category)
		}
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) != "" {
		tx.Description = strings.TrimSpace(*p.Description)
	}

	s.txs[index] = tx
	s.dirty = true
	return nil
}

// Delete removes the transaction at index; later transactions shift down
func (s *Session) Delete(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.txs = append(s.txs[:index], s.txs[index+1:]...)
	s.dirty = true
	return nil
}

func (s *Session) checkIndex(index int) error {
	if index < 0 || index >= len(s.txs) {
		return fmt.Errorf("%w: %d (have %d transactions)", ErrInvalidIndex, index, len(s.txs))
	}
	return nil
}
