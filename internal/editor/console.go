package editor

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"expense-tracker/internal/models"
	"expense-tracker/internal/utils"
)

// Action is what the caller should do once the menu loop ends
type Action int

const (
	ActionExit Action = iota
	ActionAnalyze
)

func (a Action) String() string {
	if a == ActionAnalyze {
		return "analyze"
	}
	return "exit"
}

const menu = `
Transaction Editor
  1) Add transaction
  2) Edit transaction
  3) Delete transaction
  4) Continue to analysis
  5) Exit
`

// Console drives a Session from line-oriented input
type Console struct {
	session *Session
	in      *bufio.Scanner
	out     io.Writer
	now     func() time.Time

	errColor *color.Color
	okColor  *color.Color
}

// NewConsole creates a menu loop reading commands from in and writing
// prompts to out.
func NewConsole(session *Session, in io.Reader, out io.Writer) *Console {
	return &Console{
		session:  session,
		in:       bufio.NewScanner(in),
		out:      out,
		now:      time.Now,
		errColor: color.New(color.FgRed),
		okColor:  color.New(color.FgGreen),
	}
}

// Run loops over the menu until the user continues to analysis or exits.
// End of input is treated as exit.
func (c *Console) Run() (Action, error) {
	for {
		fmt.Fprint(c.out, menu)
		choice, ok := c.prompt("Choose an option: ")
		if !ok {
			return ActionExit, c.in.Err()
		}

		var err error
		switch choice {
		case "1":
			err = c.add()
		case "2":
			err = c.edit()
		case "3":
			err = c.remove()
		case "4":
			return ActionAnalyze, nil
		case "5":
			return ActionExit, nil
		default:
			c.errColor.Fprintf(c.out, "Invalid choice %q\n", choice)
			continue
		}

		if err == io.EOF {
			return ActionExit, c.in.Err()
		}
		if err != nil {
			c.errColor.Fprintf(c.out, "Error: %v\n", err)
		}
	}
}

func (c *Console) add() error {
	category, ok := c.prompt("Category: ")
	if !ok {
		return io.EOF
	}
	if category == "" {
		return ErrEmptyCategory
	}

	date, err := c.readDate("Date (YYYY-MM-DD, blank for today): ", c.today())
	if err != nil {
		return err
	}
	amount, err := c.readAmount("Amount: ", nil)
	if err != nil {
		return err
	}
	description, ok := c.prompt("Description (blank for default): ")
	if !ok {
		return io.EOF
	}

	tx := models.Transaction{
		Date:        date,
		Description: description,
		Category:    category,
		Amount:      *amount,
	}
	if err := c.session.Add(tx); err != nil {
		return err
	}
	c.okColor.Fprintln(c.out, "Transaction added")
	return nil
}

func (c *Console) edit() error {
	index, err := c.pickIndex("Index to edit: ")
	if err != nil {
		return err
	}
	current, err := c.session.Get(index)
	if err != nil {
		return err
	}

	var patch Patch
	category, ok := c.prompt(fmt.Sprintf("Category [%s]: ", current.Category))
	if !ok {
		return io.EOF
	}
	if category != "" && category != current.Category {
		patch.Category = &category
	}

	date, err := c.readDate(fmt.Sprintf("Date [%s]: ", current.Date.Format(models.DateLayout)), current.Date)
	if err != nil {
		return err
	}
	if !date.Equal(current.Date) {
		patch.Date = &date
	}

	patch.Amount, err = c.readAmount(fmt.Sprintf("Amount [%s]: ", current.Amount.StringFixed(2)), &current.Amount)
	if err != nil {
		return err
	}

	description, ok := c.prompt("Description (blank to keep): ")
	if !ok {
		return io.EOF
	}
	if description != "" {
		patch.Description = &description
	}

	if err := c.session.Edit(index, patch); err != nil {
		return err
	}
	c.okColor.Fprintln(c.out, "Transaction updated")
	return nil
}

func (c *Console) remove() error {
	index, err := c.pickIndex("Index to delete: ")
	if err != nil {
		return err
	}
	if err := c.session.Delete(index); err != nil {
		return err
	}
	c.okColor.Fprintln(c.out, "Transaction deleted")
	return nil
}

func (c *Console) pickIndex(label string) (int, error) {
	if c.session.Len() == 0 {
		return 0, fmt.Errorf("%w: no transactions", ErrInvalidIndex)
	}
	c.list()
	raw, ok := c.prompt(label)
	if !ok {
		return 0, io.EOF
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, raw)
	}
	return index, nil
}

func (c *Console) list() {
	for i, tx := range c.session.txs {
		fmt.Fprintf(c.out, "%3d  %s  %-15s %-30s %12s\n",
			i, tx.Date.Format(models.DateLayout), tx.Category, tx.Description, utils.FormatMoney(tx.Amount))
	}
}

// readDate re-prompts until the input parses; blank input yields fallback
func (c *Console) readDate(label string, fallback time.Time) (time.Time, error) {
	for {
		raw, ok := c.prompt(label)
		if !ok {
			return time.Time{}, io.EOF
		}
		if raw == "" {
			return fallback, nil
		}
		date, err := utils.ParseDate(raw)
		if err == nil {
			return date, nil
		}
		c.errColor.Fprintf(c.out, "Invalid date %q\n", raw)
	}
}

// readAmount re-prompts until a positive amount is entered. With a non-nil
// fallback, blank input keeps the current value and returns nil.
func (c *Console) readAmount(label string, fallback *decimal.Decimal) (*decimal.Decimal, error) {
	for {
		raw, ok := c.prompt(label)
		if !ok {
			return nil, io.EOF
		}
		if raw == "" && fallback != nil {
			return nil, nil
		}
		amount, err := utils.ParseAmount(raw)
		if err == nil && amount.IsPositive() {
			return &amount, nil
		}
		c.errColor.Fprintf(c.out, "Invalid amount %q: %v\n", raw, ErrInvalidAmount)
	}
}

func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) today() time.Time {
	now := c.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
