package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrFutureDate       = errors.New("date cannot be in the future")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyOwner       = errors.New("empty owner")
)

type (
	// Category is a per-owner expense classification. Inactive categories
	// are excluded from breakdown and comparison views, but historical
	// expenses referencing them remain visible.
	Category struct {
		ID       string
		OwnerID  string
		Name     string
		IsActive bool
	}

	// Expense is a dated spending record owned by exactly one user.
	// SplitAmount is the portion owed back by someone else; it is only
	// meaningful when IsSplit is set and is excluded from net spending.
	Expense struct {
		ID          string
		OwnerID     string
		CategoryID  string
		Description string
		Amount      Money
		SplitAmount Money
		IsSplit     bool
		Date        time.Time
	}

	// Income is a dated earning record. Unlike expenses it carries no
	// category and no future-date restriction.
	Income struct {
		ID          string
		OwnerID     string
		Source      string
		Description string
		Amount      Money
		Date        time.Time
	}
)

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	return nil
}

// Validate checks an expense against the creation rules. now supplies the
// reference date for the future-date check; pass time.Now() outside tests.
//
// The split_amount <= amount relation is deliberately not enforced here.
func (e Expense) Validate(now time.Time) error {
	if strings.TrimSpace(e.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if e.Date.After(today) {
		return ErrFutureDate
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.SplitAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if i.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(i.Source)) == 0 {
		return ErrEmptyDescription
	}
	if len(i.Source) > 200 {
		return errors.New("source too long (max 200 characters)")
	}
	if !i.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
