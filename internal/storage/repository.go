// Package storage implements the ledger store on SQLite.
//
// Amounts are persisted as integer cents so SQL aggregates (SUM, MIN, MAX)
// stay exact; conversion to decimal Money happens only at this boundary.
// Every query is scoped to a single owner.
package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/report"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// Ledger port conformance.
var _ report.Ledger = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// newID generates an opaque record identifier.
func newID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("id_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

const dateLayout = "2006-01-02"

// --- report.Ledger queries ---

func (r *SQLiteRepository) ExpenseStats(ctx context.Context, ownerID string, p core.Period) (report.ExpenseStats, error) {
	var count int
	var sum, minCents, maxCents, splitSum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(amount_cents), 0),
		        COALESCE(MIN(amount_cents), 0),
		        COALESCE(MAX(amount_cents), 0),
		        COALESCE(SUM(split_amount_cents), 0)
		   FROM expenses
		  WHERE user_id = ? AND date >= ? AND date <= ?`,
		ownerID, p.StartDate(), p.EndDate(),
	).Scan(&count, &sum, &minCents, &maxCents, &splitSum)
	if err != nil {
		return report.ExpenseStats{}, fmt.Errorf("expense stats: %w", err)
	}
	return report.ExpenseStats{
		Count:    count,
		Sum:      core.MoneyFromCents(sum),
		Min:      core.MoneyFromCents(minCents),
		Max:      core.MoneyFromCents(maxCents),
		SplitSum: core.MoneyFromCents(splitSum),
	}, nil
}

func (r *SQLiteRepository) IncomeStats(ctx context.Context, ownerID string, p core.Period) (report.IncomeStats, error) {
	var count int
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount_cents), 0)
		   FROM income
		  WHERE user_id = ? AND date >= ? AND date <= ?`,
		ownerID, p.StartDate(), p.EndDate(),
	).Scan(&count, &sum)
	if err != nil {
		return report.IncomeStats{}, fmt.Errorf("income stats: %w", err)
	}
	return report.IncomeStats{Count: count, Sum: core.MoneyFromCents(sum)}, nil
}

func (r *SQLiteRepository) SumExpenses(ctx context.Context, ownerID string, p core.Period) (core.Money, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		   FROM expenses
		  WHERE user_id = ? AND date >= ? AND date <= ?`,
		ownerID, p.StartDate(), p.EndDate(),
	).Scan(&sum)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.MoneyFromCents(sum), nil
}

func (r *SQLiteRepository) ExpensesByDay(ctx context.Context, ownerID string, p core.Period) ([]report.DayStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, COUNT(*), SUM(amount_cents)
		   FROM expenses
		  WHERE user_id = ? AND date >= ? AND date <= ?
		  GROUP BY date
		  ORDER BY date ASC`,
		ownerID, p.StartDate(), p.EndDate(),
	)
	if err != nil {
		return nil, fmt.Errorf("expenses by day: %w", err)
	}
	defer rows.Close()

	var stats []report.DayStat
	for rows.Next() {
		var (
			day   string
			count int
			sum   int64
		)
		if err := rows.Scan(&day, &count, &sum); err != nil {
			return nil, fmt.Errorf("scan day stat: %w", err)
		}
		date, err := time.Parse(dateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		stats = append(stats, report.DayStat{Date: date, Count: count, Sum: core.MoneyFromCents(sum)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day stats: %w", err)
	}
	return stats, nil
}

func (r *SQLiteRepository) CategoryTotals(ctx context.Context, ownerID string, p core.Period) ([]report.CategoryStat, error) {
	// Left join: active categories with no expenses in range still appear
	// with zero values.
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, COUNT(e.id), COALESCE(SUM(e.amount_cents), 0)
		   FROM categories c
		   LEFT JOIN expenses e
		     ON c.id = e.category_id
		    AND e.date >= ? AND e.date <= ?
		    AND e.user_id = ?
		  WHERE c.is_active = 1 AND c.user_id = ?
		  GROUP BY c.id, c.name
		  ORDER BY SUM(e.amount_cents) DESC, c.name ASC`,
		p.StartDate(), p.EndDate(), ownerID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var stats []report.CategoryStat
	for rows.Next() {
		var (
			id, name string
			count    int
			sum      int64
		)
		if err := rows.Scan(&id, &name, &count, &sum); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		stats = append(stats, report.CategoryStat{
			CategoryID: id,
			Name:       name,
			Count:      count,
			Sum:        core.MoneyFromCents(sum),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return stats, nil
}

// --- ledger writes ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, is_active) VALUES (?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, boolToInt(c.IsActive),
	)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category created", "id", c.ID, "name", c.Name)
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, ownerID, id string) (core.Category, error) {
	var (
		c        core.Category
		isActive int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, is_active FROM categories WHERE id = ? AND user_id = ?`,
		id, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.Name, &isActive)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.IsActive = isActive != 0
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, is_active FROM categories WHERE user_id = ? ORDER BY name ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var (
			c        core.Category
			isActive int
		)
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &isActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.IsActive = isActive != 0
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, category_id, description, amount_cents, split_amount_cents, is_split, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.CategoryID, e.Description,
		e.Amount.Cents(), e.SplitAmount.Cents(), boolToInt(e.IsSplit),
		e.Date.Format(dateLayout),
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense created",
		"id", e.ID,
		"amount_cents", e.Amount.Cents(),
		"date", e.Date.Format(dateLayout))
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, ownerID string, p core.Period) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, description, amount_cents, split_amount_cents, is_split, date
		   FROM expenses
		  WHERE user_id = ? AND date >= ? AND date <= ?
		  ORDER BY date ASC, created_at ASC`,
		ownerID, p.StartDate(), p.EndDate(),
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func scanExpense(rows *sql.Rows) (core.Expense, error) {
	var e core.Expense
	var amountCents, splitCents int64
	var isSplit int
	var day string
	if err := rows.Scan(&e.ID, &e.OwnerID, &e.CategoryID, &e.Description,
		&amountCents, &splitCents, &isSplit, &day); err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	date, err := time.Parse(dateLayout, day)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", day, err)
	}
	e.Amount = core.MoneyFromCents(amountCents)
	e.SplitAmount = core.MoneyFromCents(splitCents)
	e.IsSplit = isSplit != 0
	e.Date = date
	return e, nil
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in.ID = newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO income (id, user_id, source, description, amount_cents, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.OwnerID, in.Source, in.Description, in.Amount.Cents(), in.Date.Format(dateLayout),
	)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	slog.InfoContext(ctx, "Income created",
		"id", in.ID,
		"amount_cents", in.Amount.Cents(),
		"date", in.Date.Format(dateLayout))
	return in, nil
}

func (r *SQLiteRepository) ListIncome(ctx context.Context, ownerID string, p core.Period) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, source, description, amount_cents, date
		   FROM income
		  WHERE user_id = ? AND date >= ? AND date <= ?
		  ORDER BY date ASC, created_at ASC`,
		ownerID, p.StartDate(), p.EndDate(),
	)
	if err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		var (
			in          core.Income
			amountCents int64
			day         string
		)
		if err := rows.Scan(&in.ID, &in.OwnerID, &in.Source, &in.Description, &amountCents, &day); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		date, err := time.Parse(dateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("parse income date %q: %w", day, err)
		}
		in.Amount = core.MoneyFromCents(amountCents)
		in.Date = date
		incomes = append(incomes, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate income: %w", err)
	}
	return incomes, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
