package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
)

const (
	DefaultTrendMonths = 6
	MaxTrendMonths     = 24
)

type TrendPoint struct {
	Month       string     `json:"month"`
	Income      core.Money `json:"income"`
	Expenses    core.Money `json:"expenses"`
	Savings     core.Money `json:"savings"`
	SavingsRate float64    `json:"savings_rate"`
}

// Trends returns income/expense/savings totals for the last months
// calendar months, oldest first, ending with the month containing now.
// months falls back to DefaultTrendMonths when not positive and is capped
// at MaxTrendMonths to bound the query fan-out.
func (e *Engine) Trends(ctx context.Context, ownerID string, months int, now time.Time) ([]TrendPoint, error) {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	if months > MaxTrendMonths {
		months = MaxTrendMonths
	}

	// Walk backward from the current month, then fill the result slice
	// oldest-to-newest. The per-month queries are independent, so they run
	// concurrently; positional indexing keeps the output order fixed.
	periods := make([]core.Period, months)
	p := core.PeriodOf(now)
	for i := 0; i < months; i++ {
		periods[months-1-i] = p
		p = p.Prev()
	}

	points := make([]TrendPoint, months)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range periods {
		g.Go(func() error {
			expenses, err := e.ledger.SumExpenses(gctx, ownerID, p)
			if err != nil {
				return fmt.Errorf("sum expenses %s: %w", p.Token(), err)
			}
			income, err := e.ledger.IncomeStats(gctx, ownerID, p)
			if err != nil {
				return fmt.Errorf("income stats %s: %w", p.Token(), err)
			}
			savings := income.Sum.Sub(expenses)
			points[i] = TrendPoint{
				Month:       p.Token(),
				Income:      income.Sum,
				Expenses:    expenses,
				Savings:     savings,
				SavingsRate: percent1(savings.Decimal(), income.Sum.Decimal()),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
