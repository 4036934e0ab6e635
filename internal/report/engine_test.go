package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func mny(s string) core.Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return core.MoneyFromDecimal(d)
}

// fakeLedger serves canned query results keyed by period token. Missing
// entries come back as zero values, which matches the zero-safe contract
// of the real queries.
type fakeLedger struct {
	expenses map[string]ExpenseStats
	income   map[string]IncomeStats
	sums     map[string]core.Money
	days     map[string][]DayStat
	cats     map[string][]CategoryStat

	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeLedger) called() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeLedger) ExpenseStats(_ context.Context, _ string, p core.Period) (ExpenseStats, error) {
	if err := f.called(); err != nil {
		return ExpenseStats{}, err
	}
	return f.expenses[p.Token()], nil
}

func (f *fakeLedger) IncomeStats(_ context.Context, _ string, p core.Period) (IncomeStats, error) {
	if err := f.called(); err != nil {
		return IncomeStats{}, err
	}
	return f.income[p.Token()], nil
}

func (f *fakeLedger) SumExpenses(_ context.Context, _ string, p core.Period) (core.Money, error) {
	if err := f.called(); err != nil {
		return core.Money{}, err
	}
	return f.sums[p.Token()], nil
}

func (f *fakeLedger) ExpensesByDay(_ context.Context, _ string, p core.Period) ([]DayStat, error) {
	if err := f.called(); err != nil {
		return nil, err
	}
	return f.days[p.Token()], nil
}

func (f *fakeLedger) CategoryTotals(_ context.Context, _ string, p core.Period) ([]CategoryStat, error) {
	if err := f.called(); err != nil {
		return nil, err
	}
	return f.cats[p.Token()], nil
}

func TestMonthlySummary(t *testing.T) {
	ledger := &fakeLedger{
		expenses: map[string]ExpenseStats{
			"2024-06": {Count: 2, Sum: mny("30.00"), Min: mny("10.00"), Max: mny("20.00"), SplitSum: mny("5.00")},
		},
		income: map[string]IncomeStats{
			"2024-06": {Count: 1, Sum: mny("50.00")},
		},
	}
	e := New(ledger)

	s, err := e.MonthlySummary(context.Background(), "user-1", "2024-06")
	if err != nil {
		t.Fatal(err)
	}
	if s.StartDate != "2024-06-01" || s.EndDate != "2024-06-30" {
		t.Fatalf("dates = %s..%s", s.StartDate, s.EndDate)
	}
	if s.NetSpending.String() != "25.00" {
		t.Fatalf("net_spending = %s, want 25.00", s.NetSpending)
	}
	if s.NetBalance.String() != "25.00" {
		t.Fatalf("net_balance = %s, want 25.00", s.NetBalance)
	}
	if s.SavingsRate.String() != "50.00" {
		t.Fatalf("savings_rate = %s, want 50.00", s.SavingsRate)
	}
	if s.AverageExpense.String() != "15.00" {
		t.Fatalf("average_expense = %s, want 15.00", s.AverageExpense)
	}
}

func TestMonthlySummaryEmptyMonth(t *testing.T) {
	e := New(&fakeLedger{})
	s, err := e.MonthlySummary(context.Background(), "user-1", "2024-01")
	if err != nil {
		t.Fatal(err)
	}
	if s.ExpenseCount != 0 || s.IncomeCount != 0 {
		t.Fatalf("counts = %d/%d, want 0/0", s.ExpenseCount, s.IncomeCount)
	}
	for name, v := range map[string]core.Money{
		"total_expense": s.TotalExpense,
		"net_spending":  s.NetSpending,
		"average":       s.AverageExpense,
		"min":           s.MinExpense,
		"max":           s.MaxExpense,
		"net_balance":   s.NetBalance,
		"savings_rate":  s.SavingsRate,
	} {
		if v.String() != "0.00" {
			t.Fatalf("%s = %s, want 0.00", name, v)
		}
	}
}

func TestMonthlySummaryInvalidMonthSkipsLedger(t *testing.T) {
	ledger := &fakeLedger{}
	e := New(ledger)
	_, err := e.MonthlySummary(context.Background(), "user-1", "2024-13")
	if !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("got %v, want ErrInvalidMonth", err)
	}
	if ledger.calls != 0 {
		t.Fatalf("ledger queried %d times before validation", ledger.calls)
	}
}

func TestMonthlySummaryPropagatesLedgerError(t *testing.T) {
	boom := errors.New("connection reset")
	e := New(&fakeLedger{err: boom})
	_, err := e.MonthlySummary(context.Background(), "user-1", "2024-06")
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped ledger error", err)
	}
}

func TestCategoryBreakdown(t *testing.T) {
	ledger := &fakeLedger{
		sums: map[string]core.Money{"2024-06": mny("200.00")},
		cats: map[string][]CategoryStat{
			"2024-06": {
				{CategoryID: "c1", Name: "Food", Count: 3, Sum: mny("50.00")},
				{CategoryID: "c2", Name: "Rent", Count: 1, Sum: mny("150.00")},
				{CategoryID: "c3", Name: "Idle", Count: 0, Sum: core.Money{}},
			},
		},
	}
	e := New(ledger)

	b, err := e.CategoryBreakdown(context.Background(), "user-1", "2024-06")
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Categories) != 3 {
		t.Fatalf("got %d categories, want 3 (zero-expense categories still appear)", len(b.Categories))
	}
	// Descending by total.
	if b.Categories[0].CategoryName != "Rent" || b.Categories[1].CategoryName != "Food" {
		t.Fatalf("order = %s, %s", b.Categories[0].CategoryName, b.Categories[1].CategoryName)
	}
	if b.Categories[0].Percentage.String() != "75.00" {
		t.Fatalf("Rent percentage = %s, want 75.00", b.Categories[0].Percentage)
	}
	if b.Categories[2].Percentage.String() != "0.00" || b.Categories[2].TotalAmount.String() != "0.00" {
		t.Fatalf("idle category not zero: %+v", b.Categories[2])
	}

	// Percentages are bounded and sum to <= 100 within rounding error.
	total := decimal.Zero
	for _, c := range b.Categories {
		if c.Percentage.IsNegative() {
			t.Fatalf("negative percentage for %s", c.CategoryName)
		}
		total = total.Add(c.Percentage.Decimal())
	}
	if total.GreaterThan(decimal.NewFromFloat(100.1)) {
		t.Fatalf("percentages sum to %s", total)
	}
}

func TestCategoryBreakdownZeroGrandTotal(t *testing.T) {
	ledger := &fakeLedger{
		cats: map[string][]CategoryStat{
			"2024-06": {{CategoryID: "c1", Name: "Food", Count: 0, Sum: core.Money{}}},
		},
	}
	e := New(ledger)
	b, err := e.CategoryBreakdown(context.Background(), "user-1", "2024-06")
	if err != nil {
		t.Fatal(err)
	}
	if b.TotalAmount.String() != "0.00" {
		t.Fatalf("total = %s", b.TotalAmount)
	}
	if b.Categories[0].Percentage.String() != "0.00" {
		t.Fatalf("percentage = %s, want 0.00 when grand total is zero", b.Categories[0].Percentage)
	}
}

func TestDailyTrend(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC) }
	ledger := &fakeLedger{
		days: map[string][]DayStat{
			"2024-06": {
				// Deliberately out of order; the engine must sort.
				{Date: d(10), Count: 1, Sum: mny("5.00")},
				{Date: d(2), Count: 2, Sum: mny("20.00")},
				{Date: d(25), Count: 1, Sum: mny("1.50")},
			},
		},
	}
	e := New(ledger)

	tr, err := e.DailyTrendFor(context.Background(), "user-1", "2024-06")
	if err != nil {
		t.Fatal(err)
	}
	if tr.DaysWithExpenses != 3 {
		t.Fatalf("days_with_expenses = %d", tr.DaysWithExpenses)
	}
	wantDates := []string{"2024-06-02", "2024-06-10", "2024-06-25"}
	wantRunning := []string{"20.00", "25.00", "26.50"}
	for i, row := range tr.DailyData {
		if row.Date != wantDates[i] || row.RunningTotal.String() != wantRunning[i] {
			t.Fatalf("row %d = {%s %s}, want {%s %s}", i, row.Date, row.RunningTotal, wantDates[i], wantRunning[i])
		}
	}
	// Last running total equals the independently summed period total.
	sum := core.Money{}
	for _, row := range tr.DailyData {
		sum = sum.Add(row.DailyTotal)
	}
	if !tr.TotalAmount.Equal(sum) {
		t.Fatalf("total %s != sum of daily totals %s", tr.TotalAmount, sum)
	}
}

func TestDailyTrendEmptyMonth(t *testing.T) {
	e := New(&fakeLedger{})
	tr, err := e.DailyTrendFor(context.Background(), "user-1", "2024-06")
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.DailyData) != 0 || tr.TotalAmount.String() != "0.00" {
		t.Fatalf("empty month: %+v", tr)
	}
}

func TestInsightsMidMonth(t *testing.T) {
	ledger := &fakeLedger{
		sums: map[string]core.Money{
			"2024-06": mny("100.00"),
			"2024-05": mny("80.00"),
		},
		cats: map[string][]CategoryStat{
			"2024-06": {
				{CategoryID: "c1", Name: "Food", Sum: mny("100.00")},
				{CategoryID: "c2", Name: "Idle", Sum: core.Money{}},
			},
			"2024-05": {
				{CategoryID: "c1", Name: "Food", Sum: mny("50.00")},
				{CategoryID: "c2", Name: "Idle", Sum: core.Money{}},
			},
		},
	}
	e := New(ledger)

	today := time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)
	ins, err := e.InsightsFor(context.Background(), "user-1", "2024-06", today)
	if err != nil {
		t.Fatal(err)
	}
	if ins.DaysPassed != 10 || ins.DaysInMonth != 30 {
		t.Fatalf("days = %d/%d, want 10/30", ins.DaysPassed, ins.DaysInMonth)
	}
	if ins.DailyAverage.String() != "10.00" {
		t.Fatalf("daily_average = %s, want 10.00", ins.DailyAverage)
	}
	if ins.ProjectedTotal.String() != "300.00" {
		t.Fatalf("projected_total = %s, want 300.00", ins.ProjectedTotal)
	}
	if ins.TotalDifferencePercent != 25.0 {
		t.Fatalf("total_difference_percent = %v, want 25", ins.TotalDifferencePercent)
	}
	// Idle category has no spend in either month and is dropped.
	if len(ins.CategoryComparisons) != 1 {
		t.Fatalf("comparisons = %d, want 1", len(ins.CategoryComparisons))
	}
	cmp := ins.CategoryComparisons[0]
	if cmp.Diff.String() != "50.00" || cmp.Percent != 100.0 {
		t.Fatalf("Food comparison = %+v", cmp)
	}
}

func TestInsightsProjectionRoundsAtEdge(t *testing.T) {
	// 100.00 over 3 of 30 days: the unrounded average projects to 1000.00,
	// not 33.33*30 = 999.90.
	ledger := &fakeLedger{sums: map[string]core.Money{"2024-06": mny("100.00")}}
	e := New(ledger)
	today := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	ins, err := e.InsightsFor(context.Background(), "user-1", "2024-06", today)
	if err != nil {
		t.Fatal(err)
	}
	if ins.DailyAverage.String() != "33.33" {
		t.Fatalf("daily_average = %s", ins.DailyAverage)
	}
	if ins.ProjectedTotal.String() != "1000.00" {
		t.Fatalf("projected_total = %s, want 1000.00", ins.ProjectedTotal)
	}
}

func TestInsightsDaysPassed(t *testing.T) {
	e := New(&fakeLedger{})
	cases := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"past month fully elapsed", time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC), 30},
		{"future month falls back to one day", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 1},
		{"last day of target month", time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC), 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ins, err := e.InsightsFor(context.Background(), "user-1", "2024-06", tc.today)
			if err != nil {
				t.Fatal(err)
			}
			if ins.DaysPassed != tc.want {
				t.Fatalf("days_passed = %d, want %d", ins.DaysPassed, tc.want)
			}
		})
	}
}

func TestInsightsZeroPrevMonth(t *testing.T) {
	ledger := &fakeLedger{sums: map[string]core.Money{"2024-06": mny("40.00")}}
	e := New(ledger)
	ins, err := e.InsightsFor(context.Background(), "user-1", "2024-06", time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if ins.TotalDifferencePercent != 0 {
		t.Fatalf("difference percent = %v, want 0 when previous month is empty", ins.TotalDifferencePercent)
	}
}

func TestTrends(t *testing.T) {
	ledger := &fakeLedger{
		sums: map[string]core.Money{
			"2024-06": mny("100.00"),
			"2024-05": mny("200.00"),
			"2024-04": mny("50.00"),
		},
		income: map[string]IncomeStats{
			"2024-06": {Count: 1, Sum: mny("400.00")},
			"2024-05": {Count: 1, Sum: mny("400.00")},
		},
	}
	e := New(ledger)

	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	points, err := e.Trends(context.Background(), "user-1", 3, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	// Oldest to newest, ending with the current month.
	wantMonths := []string{"2024-04", "2024-05", "2024-06"}
	for i, pt := range points {
		if pt.Month != wantMonths[i] {
			t.Fatalf("point %d month = %s, want %s", i, pt.Month, wantMonths[i])
		}
	}
	last := points[2]
	if last.Savings.String() != "300.00" || last.SavingsRate != 75.0 {
		t.Fatalf("current month point = %+v", last)
	}
	// April has no income: savings rate is 0, savings go negative.
	if points[0].SavingsRate != 0 || points[0].Savings.String() != "-50.00" {
		t.Fatalf("april point = %+v", points[0])
	}
}

func TestTrendsYearRollover(t *testing.T) {
	e := New(&fakeLedger{})
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	points, err := e.Trends(context.Background(), "user-1", 3, now)
	if err != nil {
		t.Fatal(err)
	}
	wantMonths := []string{"2024-11", "2024-12", "2025-01"}
	for i, pt := range points {
		if pt.Month != wantMonths[i] {
			t.Fatalf("point %d month = %s, want %s", i, pt.Month, wantMonths[i])
		}
	}
}

func TestTrendsDefaultsAndCap(t *testing.T) {
	e := New(&fakeLedger{})
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	points, err := e.Trends(context.Background(), "user-1", 0, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != DefaultTrendMonths {
		t.Fatalf("default = %d points", len(points))
	}

	points, err = e.Trends(context.Background(), "user-1", 500, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != MaxTrendMonths {
		t.Fatalf("capped = %d points", len(points))
	}
}
