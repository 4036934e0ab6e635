package report

import (
	"context"
	"fmt"

	"bilancio/internal/core"
)

// Summary is the monthly aggregate over one owner's expenses and income.
// Field tags define the wire contract; core.Money marshals as a fixed
// two-decimal string.
type Summary struct {
	Month          string     `json:"month"`
	StartDate      string     `json:"start_date"`
	EndDate        string     `json:"end_date"`
	ExpenseCount   int        `json:"expense_count"`
	TotalExpense   core.Money `json:"total_expense"`
	TotalOwed      core.Money `json:"total_owed"`
	NetSpending    core.Money `json:"net_spending"`
	AverageExpense core.Money `json:"average_expense"`
	MinExpense     core.Money `json:"min_expense"`
	MaxExpense     core.Money `json:"max_expense"`
	IncomeCount    int        `json:"income_count"`
	TotalIncome    core.Money `json:"total_income"`
	NetBalance     core.Money `json:"net_balance"`
	SavingsRate    core.Money `json:"savings_rate"`
}

// MonthlySummary computes the summary for the given YYYY-MM month token.
// A month with no transactions is a valid result with zero counts and
// "0.00" amounts, never an error.
func (e *Engine) MonthlySummary(ctx context.Context, ownerID, month string) (Summary, error) {
	p, err := core.ResolvePeriod(month)
	if err != nil {
		return Summary{}, err
	}

	es, err := e.ledger.ExpenseStats(ctx, ownerID, p)
	if err != nil {
		return Summary{}, fmt.Errorf("expense stats %s: %w", p.Token(), err)
	}
	is, err := e.ledger.IncomeStats(ctx, ownerID, p)
	if err != nil {
		return Summary{}, fmt.Errorf("income stats %s: %w", p.Token(), err)
	}

	// Split money is owed back by someone else, so it is not truly spent.
	netSpending := es.Sum.Sub(es.SplitSum)
	netBalance := is.Sum.Sub(netSpending)

	var average core.Money
	if es.Count > 0 {
		average = core.MoneyFromDecimal(es.Sum.Decimal().DivRound(intDec(es.Count), 8))
	}

	return Summary{
		Month:          p.Token(),
		StartDate:      p.StartDate(),
		EndDate:        p.EndDate(),
		ExpenseCount:   es.Count,
		TotalExpense:   es.Sum,
		TotalOwed:      es.SplitSum,
		NetSpending:    netSpending,
		AverageExpense: average,
		MinExpense:     es.Min,
		MaxExpense:     es.Max,
		IncomeCount:    is.Count,
		TotalIncome:    is.Sum,
		NetBalance:     netBalance,
		SavingsRate:    ratioPercent(netBalance.Decimal(), is.Sum.Decimal()),
	}, nil
}
