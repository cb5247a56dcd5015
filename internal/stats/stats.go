// Package stats computes aggregate views over one owner's expense rows.
// Functions are pure: they take the rows as listed and touch no storage.
package stats

import (
	"sort"
	"time"

	"github.com/fgomezproyectos/gestor-gastos/internal/models"
	"github.com/fgomezproyectos/gestor-gastos/internal/money"
)

// MonthSummary aggregates one calendar month. Month is 1-12; labels like
// "Enero 2025" are a presentation concern and live in the handlers.
type MonthSummary struct {
	Year    int
	Month   int
	Total   money.Amount
	Count   int
	Average money.Amount
}

// DescriptionSummary aggregates rows sharing an exact description string.
type DescriptionSummary struct {
	Description string
	Total       money.Amount
	Count       int
}

type monthKey struct {
	year  int
	month time.Month
}

func groupByMonth(expenses []models.Expense) []MonthSummary {
	totals := make(map[monthKey]*MonthSummary)
	for _, e := range expenses {
		k := monthKey{e.CreatedAt.Year(), e.CreatedAt.Month()}
		s, ok := totals[k]
		if !ok {
			s = &MonthSummary{Year: k.year, Month: int(k.month)}
			totals[k] = s
		}
		s.Total = s.Total.Add(e.Amount)
		s.Count++
	}

	summaries := make([]MonthSummary, 0, len(totals))
	for _, s := range totals {
		s.Average = s.Total.DivRound(s.Count)
		summaries = append(summaries, *s)
	}
	return summaries
}

// MonthlyAscending returns per-month totals, counts and averages over the
// full history, chronologically ascending. Empty input yields an empty slice.
func MonthlyAscending(expenses []models.Expense) []MonthSummary {
	summaries := groupByMonth(expenses)
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Year != summaries[j].Year {
			return summaries[i].Year < summaries[j].Year
		}
		return summaries[i].Month < summaries[j].Month
	})
	return summaries
}

// RecentFirst returns per-month summaries newest first, truncated to limit.
// A limit <= 0 means no truncation.
func RecentFirst(expenses []models.Expense, limit int) []MonthSummary {
	summaries := groupByMonth(expenses)
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Year != summaries[j].Year {
			return summaries[i].Year > summaries[j].Year
		}
		return summaries[i].Month > summaries[j].Month
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries
}

// TopDescriptions returns the n largest per-description totals, descending
// by total. Ties keep the order in which the descriptions first appear in
// the input rows.
func TopDescriptions(expenses []models.Expense, n int) []DescriptionSummary {
	totals := make(map[string]*DescriptionSummary)
	order := make([]string, 0)
	for _, e := range expenses {
		s, ok := totals[e.Description]
		if !ok {
			s = &DescriptionSummary{Description: e.Description}
			totals[e.Description] = s
			order = append(order, e.Description)
		}
		s.Total = s.Total.Add(e.Amount)
		s.Count++
	}

	summaries := make([]DescriptionSummary, 0, len(order))
	for _, desc := range order {
		summaries = append(summaries, *totals[desc])
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Total > summaries[j].Total
	})
	if n > 0 && len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries
}
