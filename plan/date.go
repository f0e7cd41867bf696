/*
date.go - Due-date arithmetic for payment schedules

PURPOSE:
  Payment plans are anchored to a FINAL due date chosen by the buyer and
  walk backward one month at a time. This file holds the two date
  calculations everything else builds on:

  1. MonthsUntil: how many monthly installments fit between "day 1 of
     next month" and a target date. This drives the installment count.
  2. Sequence: the ordered due dates for N installments ending at the
     final date, preserving "pay on the Nth" day-of-month semantics.

DAY CLAMPING:
  A final due date on the 31st cannot land on the 31st of every month.
  Each generated date uses min(final day, last valid day of that month),
  so a day-31 plan passing through February yields Feb 28 (or 29 in a
  leap year).

LENIENT PARSING:
  Malformed or empty date input is "incomplete", not an error. Parsing
  returns a zero DueDate and callers treat it as "cannot compute yet".

SEE ALSO:
  - schedule.go: Combines Sequence with the even-split amount
  - reconcile.go: Rebalances amounts after manual edits
*/
package plan

import "time"

// ISOLayout is the wire format for due dates.
const ISOLayout = "2006-01-02"

// =============================================================================
// DUE DATE - Calendar date with day granularity
// =============================================================================

// DueDate is a calendar date (no time-of-day component).
// The zero value means "not set".
type DueDate struct {
	t time.Time
}

// NewDueDate builds a DueDate from calendar components.
func NewDueDate(year int, month time.Month, day int) DueDate {
	return DueDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDueDate parses an ISO YYYY-MM-DD string.
// Empty or malformed input yields ok=false and a zero DueDate.
func ParseDueDate(s string) (DueDate, bool) {
	if s == "" {
		return DueDate{}, false
	}
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return DueDate{}, false
	}
	return DueDate{t: t}, true
}

func (d DueDate) Year() int         { return d.t.Year() }
func (d DueDate) Month() time.Month { return d.t.Month() }
func (d DueDate) Day() int          { return d.t.Day() }
func (d DueDate) IsZero() bool      { return d.t.IsZero() }

func (d DueDate) Before(other DueDate) bool { return d.t.Before(other.t) }
func (d DueDate) Equal(other DueDate) bool  { return d.t.Equal(other.t) }

// String formats as ISO YYYY-MM-DD. A zero DueDate formats as "".
func (d DueDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(ISOLayout)
}

func (d DueDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, _ := ParseDueDate(s)
	*d = parsed
	return nil
}

// =============================================================================
// MONTH SPAN - Installment count from a target end date
// =============================================================================

// MonthsUntil returns the number of monthly installments between the
// first day of the month after `now` (the anchor: first payment month)
// and the target date, inclusive of the anchor month.
//
// A target equal to the anchor month yields 1. A target before the
// anchor yields 0, meaning no plan can be generated yet. ok is false
// when the target is unset.
func MonthsUntil(now time.Time, target DueDate) (int, bool) {
	if target.IsZero() {
		return 0, false
	}

	anchorYear, anchorMonth := rollMonth(now.Year(), now.Month(), 1)

	months := (target.Year()-anchorYear)*12 +
		int(target.Month()) - int(anchorMonth) + 1

	if months < 0 {
		months = 0
	}
	return months, true
}

// =============================================================================
// DATE SEQUENCER - Monthly dates walking back from the final due date
// =============================================================================

// Sequence returns count due dates ending at final, one month apart,
// earliest first. The day-of-month follows the final date's day,
// clamped to the last valid day of shorter months.
//
// count <= 0 or an unset final date yields an empty sequence.
func Sequence(count int, final DueDate) []DueDate {
	if count <= 0 || final.IsZero() {
		return nil
	}

	dates := make([]DueDate, 0, count)
	for i := 0; i < count; i++ {
		monthsBack := count - 1 - i
		year, month := rollMonth(final.Year(), final.Month(), -monthsBack)

		day := final.Day()
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		dates = append(dates, NewDueDate(year, month, day))
	}
	return dates
}

// rollMonth shifts a year/month pair by delta months, rolling the year
// in either direction.
func rollMonth(year int, month time.Month, delta int) (int, time.Month) {
	m := int(month) - 1 + delta
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	return year, time.Month(m + 1)
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
