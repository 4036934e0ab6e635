// Package report implements the monthly reporting and insights engine:
// summaries, category breakdowns, daily trends, projections, and
// multi-month series over a ledger of dated transactions.
//
// The engine is a pure read/compute layer. It owns no storage and mutates
// nothing; every operation is a stateless function of the ledger rows it
// queries, so concurrent invocations need no coordination.
package report

import (
	"context"
	"time"

	"bilancio/internal/core"
)

// Ledger is the query collaborator the engine reads from. Implementations
// must scope every query to exactly one owner; cross-owner leakage is a
// correctness violation, not a policy choice.
type Ledger interface {
	// ExpenseStats returns aggregate statistics over the owner's expenses
	// in the period. An empty range yields zero counts and zero sums, not
	// an error.
	ExpenseStats(ctx context.Context, ownerID string, p core.Period) (ExpenseStats, error)

	// IncomeStats returns count and sum over the owner's income in the period.
	IncomeStats(ctx context.Context, ownerID string, p core.Period) (IncomeStats, error)

	// SumExpenses returns the total expense amount for the period.
	SumExpenses(ctx context.Context, ownerID string, p core.Period) (core.Money, error)

	// ExpensesByDay groups the owner's expenses in the period by calendar
	// date, ordered ascending. Days without expenses do not appear.
	ExpensesByDay(ctx context.Context, ownerID string, p core.Period) ([]DayStat, error)

	// CategoryTotals returns one row per active category owned by the
	// user, with count and sum of the matching expenses in the period.
	// Categories with no expenses still appear with zero values.
	CategoryTotals(ctx context.Context, ownerID string, p core.Period) ([]CategoryStat, error)
}

// Typed query-result records. Row shapes are fixed here so the aggregation
// logic never branches on field presence.
type (
	ExpenseStats struct {
		Count    int
		Sum      core.Money
		Min      core.Money
		Max      core.Money
		SplitSum core.Money
	}

	IncomeStats struct {
		Count int
		Sum   core.Money
	}

	DayStat struct {
		Date  time.Time
		Count int
		Sum   core.Money
	}

	CategoryStat struct {
		CategoryID string
		Name       string
		Count      int
		Sum        core.Money
	}
)
