package core

import (
	"testing"
	"time"
)

func validExpense() Expense {
	amount, _ := ParseAmount("12.50")
	return Expense{
		OwnerID:     "user-1",
		CategoryID:  "cat-1",
		Description: "groceries",
		Amount:      amount,
		Date:        time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestExpenseValidate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	if err := validExpense().Validate(now); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	e := validExpense()
	e.Date = time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)
	if err := e.Validate(now); err != ErrFutureDate {
		t.Fatalf("future date: got %v, want ErrFutureDate", err)
	}

	// Same calendar day as "now" is not in the future.
	e = validExpense()
	e.Date = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if err := e.Validate(now); err != nil {
		t.Fatalf("today rejected: %v", err)
	}

	e = validExpense()
	e.Description = ""
	if err := e.Validate(now); err != ErrEmptyDescription {
		t.Fatalf("empty description: got %v", err)
	}

	e = validExpense()
	e.CategoryID = " "
	if err := e.Validate(now); err != ErrEmptyCategory {
		t.Fatalf("empty category: got %v", err)
	}

	e = validExpense()
	e.OwnerID = ""
	if err := e.Validate(now); err != ErrEmptyOwner {
		t.Fatalf("empty owner: got %v", err)
	}

	// A split larger than the amount is allowed.
	e = validExpense()
	e.IsSplit = true
	e.SplitAmount, _ = ParseAmount("99.00")
	if err := e.Validate(now); err != nil {
		t.Fatalf("oversized split rejected: %v", err)
	}
}

func TestIncomeValidate(t *testing.T) {
	amount, _ := ParseAmount("1500.00")
	inc := Income{
		OwnerID: "user-1",
		Source:  "salary",
		Amount:  amount,
		// Income has no future-date restriction.
		Date: time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := inc.Validate(); err != nil {
		t.Fatalf("valid income rejected: %v", err)
	}

	inc.Source = ""
	if err := inc.Validate(); err != ErrEmptyDescription {
		t.Fatalf("empty source: got %v", err)
	}
}

func TestCategoryValidate(t *testing.T) {
	c := Category{OwnerID: "user-1", Name: "Food", IsActive: true}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
	c.Name = ""
	if err := c.Validate(); err != ErrEmptyName {
		t.Fatalf("empty name: got %v", err)
	}
}
