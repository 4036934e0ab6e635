package report

import (
	"context"
	"fmt"
	"sort"

	"bilancio/internal/core"
)

type TrendDay struct {
	Date             string     `json:"date"`
	TransactionCount int        `json:"transaction_count"`
	DailyTotal       core.Money `json:"daily_total"`
	RunningTotal     core.Money `json:"running_total"`
}

type DailyTrend struct {
	Month            string     `json:"month"`
	StartDate        string     `json:"start_date"`
	EndDate          string     `json:"end_date"`
	TotalAmount      core.Money `json:"total_amount"`
	DaysWithExpenses int        `json:"days_with_expenses"`
	DailyData        []TrendDay `json:"daily_data"`
}

// DailyTrendFor groups the month's expenses by calendar day and
// accumulates a running total in strict chronological order. Only days
// with at least one expense appear; gap days are not zero-filled. The
// final running total doubles as the period total.
func (e *Engine) DailyTrendFor(ctx context.Context, ownerID, month string) (DailyTrend, error) {
	p, err := core.ResolvePeriod(month)
	if err != nil {
		return DailyTrend{}, err
	}

	days, err := e.ledger.ExpensesByDay(ctx, ownerID, p)
	if err != nil {
		return DailyTrend{}, fmt.Errorf("expenses by day %s: %w", p.Token(), err)
	}

	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	var running core.Money
	data := make([]TrendDay, 0, len(days))
	for _, d := range days {
		running = running.Add(d.Sum)
		data = append(data, TrendDay{
			Date:             d.Date.Format("2006-01-02"),
			TransactionCount: d.Count,
			DailyTotal:       d.Sum,
			RunningTotal:     running,
		})
	}

	return DailyTrend{
		Month:            p.Token(),
		StartDate:        p.StartDate(),
		EndDate:          p.EndDate(),
		TotalAmount:      running,
		DaysWithExpenses: len(data),
		DailyData:        data,
	}, nil
}
