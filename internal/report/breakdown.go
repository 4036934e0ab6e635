package report

import (
	"context"
	"fmt"
	"sort"

	"bilancio/internal/core"
)

type CategoryShare struct {
	CategoryID       string     `json:"category_id"`
	CategoryName     string     `json:"category_name"`
	TransactionCount int        `json:"transaction_count"`
	TotalAmount      core.Money `json:"total_amount"`
	Percentage       core.Money `json:"percentage"`
}

type Breakdown struct {
	Month       string          `json:"month"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	TotalAmount core.Money      `json:"total_amount"`
	Categories  []CategoryShare `json:"categories"`
}

// CategoryBreakdown returns per-category expense totals with each
// category's share of the month's grand total. Every active category
// appears, including those with no expenses in the period; the list is
// ordered by total descending, ties keeping the ledger's ordering.
func (e *Engine) CategoryBreakdown(ctx context.Context, ownerID, month string) (Breakdown, error) {
	p, err := core.ResolvePeriod(month)
	if err != nil {
		return Breakdown{}, err
	}

	grandTotal, err := e.ledger.SumExpenses(ctx, ownerID, p)
	if err != nil {
		return Breakdown{}, fmt.Errorf("sum expenses %s: %w", p.Token(), err)
	}
	rows, err := e.ledger.CategoryTotals(ctx, ownerID, p)
	if err != nil {
		return Breakdown{}, fmt.Errorf("category totals %s: %w", p.Token(), err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Sum.Decimal().GreaterThan(rows[j].Sum.Decimal())
	})

	shares := make([]CategoryShare, 0, len(rows))
	for _, row := range rows {
		shares = append(shares, CategoryShare{
			CategoryID:       row.CategoryID,
			CategoryName:     row.Name,
			TransactionCount: row.Count,
			TotalAmount:      row.Sum,
			Percentage:       ratioPercent(row.Sum.Decimal(), grandTotal.Decimal()),
		})
	}

	return Breakdown{
		Month:       p.Token(),
		StartDate:   p.StartDate(),
		EndDate:     p.EndDate(),
		TotalAmount: grandTotal,
		Categories:  shares,
	}, nil
}
