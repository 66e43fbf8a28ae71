package analysis

import "sort"

// Rank orders categories by spend, largest first. Equal amounts are ordered
// by category name.
func Rank(totals Totals) []CategoryAmount {
	ranked := make([]CategoryAmount, 0, len(totals))
	for category, amount := range totals {
		ranked = append(ranked, CategoryAmount{Category: category, Amount: amount})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Amount.Cmp(ranked[j].Amount); c != 0 {
			return c > 0
		}
		return ranked[i].Category < ranked[j].Category
	})

	return ranked
}
