package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"expense-tracker/internal/analysis"
	"expense-tracker/internal/utils"
)

var hundred = decimal.NewFromInt(100)

// Renderer prints a report for a terminal
type Renderer struct {
	title   *color.Color
	good    *color.Color
	warn    *color.Color
	bad     *color.Color
	subtle  *color.Color
	byLevel map[analysis.Severity]*color.Color
}

// NewRenderer creates a renderer. With noColor set, output never contains
// escape codes; otherwise fatih/color decides based on the terminal.
func NewRenderer(noColor bool) *Renderer {
	r := &Renderer{
		title:  color.New(color.Bold),
		good:   color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		bad:    color.New(color.FgRed, color.Bold),
		subtle: color.New(color.Faint),
	}
	r.byLevel = map[analysis.Severity]*color.Color{
		analysis.SeverityLow:    r.warn,
		analysis.SeverityMedium: color.New(color.FgHiRed),
		analysis.SeverityHigh:   r.bad,
	}

	if noColor {
		for _, c := range []*color.Color{r.title, r.good, r.warn, r.bad, r.subtle} {
			c.DisableColor()
		}
		for _, c := range r.byLevel {
			c.DisableColor()
		}
	}
	return r
}

// Render writes the executive summary, alerts, anomalies and ranking
func (r *Renderer) Render(w io.Writer, report analysis.Report) error {
	ew := &errWriter{w: w}

	r.summary(ew, report)
	r.alerts(ew, report)
	r.anomalies(ew, report)
	r.ranking(ew, report.Ranking)

	return ew.err
}

func (r *Renderer) summary(w io.Writer, report analysis.Report) {
	r.title.Fprintln(w, "Expense Summary")
	fmt.Fprintln(w, strings.Repeat("-", 18))
	fmt.Fprintf(w, "Transactions     : %d\n", report.TransactionCount)
	fmt.Fprintf(w, "Total Spend      : %s\n", utils.FormatMoney(report.TotalSpend))
	fmt.Fprintf(w, "Total Budget     : %s\n", utils.FormatMoney(report.TotalBudget))
	fmt.Fprintf(w, "Efficiency Score : %s\n", r.scoreColor(report.Score.Value).Sprintf("%d/100", report.Score.Value))
	if report.Score.Explanation != "" {
		fmt.Fprintf(w, "                   %s\n", r.subtle.Sprint(report.Score.Explanation))
	}
}

func (r *Renderer) scoreColor(score int) *color.Color {
	switch {
	case score >= 80:
		return r.good
	case score >= 50:
		return r.warn
	default:
		return r.bad
	}
}

func (r *Renderer) alerts(w io.Writer, report analysis.Report) {
	fmt.Fprintln(w)
	if len(report.Alerts) == 0 {
		r.good.Fprintln(w, "All categories are within budget")
		return
	}

	r.title.Fprintln(w, "Budget Alerts Summary")
	fmt.Fprintf(w, "- %d category(ies) over budget\n", len(report.Alerts))

	counts := report.SeverityCounts()
	for _, level := range []analysis.Severity{analysis.SeverityHigh, analysis.SeverityMedium, analysis.SeverityLow} {
		if counts[level] == 0 {
			continue
		}
		fmt.Fprintf(w, "  * %-16s: %d\n", level.String()+" severity", counts[level])
	}

	fmt.Fprintln(w)
	for _, alert := range report.Alerts {
		fmt.Fprintf(w, "  %s %s is over budget by %s (actual %s, budget %s)\n",
			r.byLevel[alert.Severity].Sprintf("[%s]", alert.Severity),
			alert.Category,
			utils.FormatMoney(alert.Variance),
			utils.FormatMoney(alert.Actual),
			utils.FormatMoney(alert.Budget),
		)
	}
}

func (r *Renderer) anomalies(w io.Writer, report analysis.Report) {
	if len(report.Anomalies) == 0 && len(report.NoBaseline) == 0 {
		return
	}

	fmt.Fprintln(w)
	r.title.Fprintln(w, "Spending Anomalies")
	if len(report.Anomalies) == 0 {
		fmt.Fprintln(w, "  none detected")
	}
	for _, flag := range report.Anomalies {
		fmt.Fprintf(w, "  %s %s is %s above its average of %s (now %s)\n",
			r.warn.Sprint("!"),
			flag.Category,
			flag.PctIncrease.Mul(hundred).StringFixed(1)+"%",
			utils.FormatMoney(flag.HistoricalAverage),
			utils.FormatMoney(flag.Current),
		)
	}
	if len(report.NoBaseline) > 0 {
		fmt.Fprintf(w, "  %s\n", r.subtle.Sprintf("no baseline: %s", strings.Join(report.NoBaseline, ", ")))
	}
}

func (r *Renderer) ranking(w io.Writer, ranking []analysis.CategoryAmount) {
	fmt.Fprintln(w)
	r.title.Fprintln(w, "Top Cost Drivers")
	fmt.Fprintln(w, strings.Repeat("-", 18))
	if len(ranking) == 0 {
		fmt.Fprintln(w, "  no spending recorded")
		return
	}
	for i, row := range ranking {
		fmt.Fprintf(w, "%d. %-15s %s\n", i+1, row.Category, utils.FormatMoney(row.Amount))
	}
}

// errWriter keeps the first write error so rendering code can stay linear
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
