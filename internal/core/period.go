package core

import (
	"regexp"
	"time"
)

// monthTokenRE matches the YYYY-MM month token with month in 01..12.
var monthTokenRE = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Period is an inclusive calendar day range covering one whole month.
// Both bounds participate in range queries (date >= Start AND date <= End).
// Times are UTC midnights; only the date component is meaningful.
type Period struct {
	Start time.Time
	End   time.Time
}

// ResolvePeriod converts a YYYY-MM month token into the period spanning
// that month. Month length (28/29/30/31, leap years) is handled by the
// calendar arithmetic, not by a lookup table.
func ResolvePeriod(token string) (Period, error) {
	if !monthTokenRE.MatchString(token) {
		return Period{}, ErrInvalidMonth
	}
	t, err := time.Parse("2006-01", token)
	if err != nil {
		return Period{}, ErrInvalidMonth
	}
	return PeriodOf(t), nil
}

// PeriodOf returns the period for the month containing t.
func PeriodOf(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return Period{Start: start, End: end}
}

// Token renders the period back to its YYYY-MM form.
func (p Period) Token() string {
	return p.Start.Format("2006-01")
}

// Days returns the number of calendar days in the month.
func (p Period) Days() int {
	return p.End.Day()
}

// Prev returns the period for the preceding month, rolling the year at
// January.
func (p Period) Prev() Period {
	return PeriodOf(p.Start.AddDate(0, -1, 0))
}

// Contains reports whether the calendar date of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(p.Start) && !d.After(p.End)
}

// StartDate and EndDate render the bounds as YYYY-MM-DD strings for wire
// responses and SQL parameters.
func (p Period) StartDate() string { return p.Start.Format("2006-01-02") }
func (p Period) EndDate() string   { return p.End.Format("2006-01-02") }
