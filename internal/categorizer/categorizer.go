package categorizer

import (
	"sort"
	"strings"

	"expense-tracker/internal/models"
	"expense-tracker/internal/utils"
)

// DefaultKeywords returns the built-in keyword to category table.
// A fresh map is returned on every call.
func DefaultKeywords() map[string]string {
	return map[string]string{
		"fuel":      models.CatFuel,
		"gas":       models.CatFuel,
		"repair":    models.CatMaintenance,
		"food":      models.CatFood,
		"insurance": models.CatInsurance,
	}
}

type rule struct {
	keyword  string
	category string
}

// Categorizer assigns categories to transactions by description keywords
type Categorizer struct {
	rules []rule
}

// New creates a Categorizer from a keyword to category table.
// Keywords match case-insensitively; when several match, the longest keyword wins.
func New(keywords map[string]string) *Categorizer {
	rules := make([]rule, 0, len(keywords))
	for keyword, category := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" || strings.TrimSpace(category) == "" {
			continue
		}
		rules = append(rules, rule{keyword: keyword, category: strings.TrimSpace(category)})
	}

	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].keyword) != len(rules[j].keyword) {
			return len(rules[i].keyword) > len(rules[j].keyword)
		}
		return rules[i].keyword < rules[j].keyword
	})

	return &Categorizer{rules: rules}
}

// Categorize returns the category for a description. Without a keyword
// match the current category is kept, and an empty category becomes
// Uncategorized.
func (c *Categorizer) Categorize(description, current string) string {
	text := strings.ToLower(description)

	for _, r := range c.rules {
		if utils.Contains(text, r.keyword) {
			return r.category
		}
	}

	if strings.TrimSpace(current) == "" {
		return models.CatUncategorized
	}
	return strings.TrimSpace(current)
}

// Apply returns a categorized copy of the transactions
func (c *Categorizer) Apply(txs []models.Transaction) []models.Transaction {
	out := models.Snapshot(txs)
	for i := range out {
		out[i].Category = c.Categorize(out[i].Description, out[i].Category)
	}
	return out
}
