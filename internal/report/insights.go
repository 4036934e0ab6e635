package report

import (
	"context"
	"fmt"
	"time"

	"bilancio/internal/core"
)

type CategoryComparison struct {
	Name     string     `json:"name"`
	Current  core.Money `json:"current"`
	Previous core.Money `json:"previous"`
	Diff     core.Money `json:"diff"`
	Percent  float64    `json:"percent"`
}

type Insights struct {
	DailyAverage           core.Money           `json:"daily_average"`
	ProjectedTotal         core.Money           `json:"projected_total"`
	DaysPassed             int                  `json:"days_passed"`
	DaysInMonth            int                  `json:"days_in_month"`
	PrevMonthTotal         core.Money           `json:"prev_month_total"`
	TotalDifferencePercent float64              `json:"total_difference_percent"`
	CategoryComparisons    []CategoryComparison `json:"category_comparisons"`
}

// InsightsFor computes the projection and month-over-month comparison for
// the given month. today supplies the reference date: it decides how many
// days of the target month count as elapsed, so callers (and tests) inject
// it instead of the engine reading the wall clock.
func (e *Engine) InsightsFor(ctx context.Context, ownerID, month string, today time.Time) (Insights, error) {
	p, err := core.ResolvePeriod(month)
	if err != nil {
		return Insights{}, err
	}
	prev := p.Prev()

	daysInMonth := p.Days()
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	var daysPassed int
	switch {
	case p.Contains(todayDate):
		daysPassed = todayDate.Day()
	case todayDate.After(p.End):
		// Fully elapsed month: project over the whole month.
		daysPassed = daysInMonth
	default:
		// The target month has not started yet. One elapsed day keeps the
		// projection defined; see DESIGN.md before changing this to an error.
		daysPassed = 1
	}

	curTotal, err := e.ledger.SumExpenses(ctx, ownerID, p)
	if err != nil {
		return Insights{}, fmt.Errorf("sum expenses %s: %w", p.Token(), err)
	}
	prevTotal, err := e.ledger.SumExpenses(ctx, ownerID, prev)
	if err != nil {
		return Insights{}, fmt.Errorf("sum expenses %s: %w", prev.Token(), err)
	}
	curCats, err := e.ledger.CategoryTotals(ctx, ownerID, p)
	if err != nil {
		return Insights{}, fmt.Errorf("category totals %s: %w", p.Token(), err)
	}
	prevCats, err := e.ledger.CategoryTotals(ctx, ownerID, prev)
	if err != nil {
		return Insights{}, fmt.Errorf("category totals %s: %w", prev.Token(), err)
	}

	// Rounding happens once at the edge: the projection multiplies the
	// unrounded daily average, so 100.00 over 3 of 30 days projects to
	// "1000.00", not 33.33*30.
	dailyAvg := curTotal.Decimal().DivRound(intDec(daysPassed), 8)
	projected := dailyAvg.Mul(intDec(daysInMonth))

	prevBy := make(map[string]core.Money, len(prevCats))
	for _, c := range prevCats {
		prevBy[c.CategoryID] = c.Sum
	}

	comparisons := make([]CategoryComparison, 0, len(curCats))
	for _, c := range curCats {
		previous := prevBy[c.CategoryID]
		if c.Sum.IsZero() && previous.IsZero() {
			continue
		}
		diff := c.Sum.Sub(previous)
		comparisons = append(comparisons, CategoryComparison{
			Name:     c.Name,
			Current:  c.Sum,
			Previous: previous,
			Diff:     diff,
			Percent:  percent1(diff.Decimal(), previous.Decimal()),
		})
	}

	return Insights{
		DailyAverage:           core.MoneyFromDecimal(dailyAvg),
		ProjectedTotal:         core.MoneyFromDecimal(projected),
		DaysPassed:             daysPassed,
		DaysInMonth:            daysInMonth,
		PrevMonthTotal:         prevTotal,
		TotalDifferencePercent: percent1(curTotal.Sub(prevTotal).Decimal(), prevTotal.Decimal()),
		CategoryComparisons:    comparisons,
	}, nil
}
