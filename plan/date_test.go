package plan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/quotation-engine/plan"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) plan.DueDate {
	return plan.NewDueDate(year, month, day)
}

func mustParse(t *testing.T, s string) plan.DueDate {
	d, ok := plan.ParseDueDate(s)
	require.True(t, ok, "expected %q to parse", s)
	return d
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseDueDate(t *testing.T) {
	d, ok := plan.ParseDueDate("2025-12-31")
	require.True(t, ok)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.December, d.Month())
	assert.Equal(t, 31, d.Day())
	assert.Equal(t, "2025-12-31", d.String())
}

func TestParseDueDate_LenientOnBadInput(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "2025-13-01", "31/12/2025"} {
		d, ok := plan.ParseDueDate(input)
		assert.False(t, ok, "input %q should not parse", input)
		assert.True(t, d.IsZero())
		assert.Equal(t, "", d.String())
	}
}

// =============================================================================
// MONTH SPAN
// =============================================================================

func TestMonthsUntil_AnchorMonthYieldsOne(t *testing.T) {
	// GIVEN: today is mid-March
	// WHEN: the target is the first day of April (the anchor month)
	// THEN: exactly one installment fits
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

	months, ok := plan.MonthsUntil(now, date(2025, time.April, 1))
	require.True(t, ok)
	assert.Equal(t, 1, months)
}

func TestMonthsUntil_CurrentMonthYieldsZero(t *testing.T) {
	// A date in the current month sits before the anchor: no valid
	// installments, plan not generatable.
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	months, ok := plan.MonthsUntil(now, date(2025, time.March, 30))
	require.True(t, ok)
	assert.Equal(t, 0, months)
}

func TestMonthsUntil_PastDateClampsToZero(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	months, ok := plan.MonthsUntil(now, date(2023, time.January, 10))
	require.True(t, ok)
	assert.Equal(t, 0, months)
}

func TestMonthsUntil_SpansYearBoundary(t *testing.T) {
	// December now → anchor is January next year.
	now := time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC)

	months, ok := plan.MonthsUntil(now, date(2026, time.June, 15))
	require.True(t, ok)
	assert.Equal(t, 6, months)
}

func TestMonthsUntil_UnsetTarget(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	_, ok := plan.MonthsUntil(now, plan.DueDate{})
	assert.False(t, ok)
}

// =============================================================================
// DATE SEQUENCING
// =============================================================================

func TestSequence_WalksBackwardFromFinalDate(t *testing.T) {
	dates := plan.Sequence(6, mustParse(t, "2025-12-31"))
	require.Len(t, dates, 6)

	want := []string{
		"2025-07-31",
		"2025-08-31",
		"2025-09-30", // September has 30 days
		"2025-10-31",
		"2025-11-30", // November has 30 days
		"2025-12-31",
	}
	for i, w := range want {
		assert.Equal(t, w, dates[i].String())
	}
}

func TestSequence_ClampsFebruary(t *testing.T) {
	dates := plan.Sequence(3, mustParse(t, "2025-04-30"))
	require.Len(t, dates, 3)
	assert.Equal(t, "2025-02-28", dates[0].String())
	assert.Equal(t, "2025-03-30", dates[1].String())
	assert.Equal(t, "2025-04-30", dates[2].String())
}

func TestSequence_ClampsLeapYearFebruary(t *testing.T) {
	dates := plan.Sequence(2, mustParse(t, "2024-03-31"))
	require.Len(t, dates, 2)
	assert.Equal(t, "2024-02-29", dates[0].String())
	assert.Equal(t, "2024-03-31", dates[1].String())
}

func TestSequence_RollsAcrossYearBoundary(t *testing.T) {
	dates := plan.Sequence(4, mustParse(t, "2026-02-15"))
	require.Len(t, dates, 4)
	assert.Equal(t, "2025-11-15", dates[0].String())
	assert.Equal(t, "2025-12-15", dates[1].String())
	assert.Equal(t, "2026-01-15", dates[2].String())
	assert.Equal(t, "2026-02-15", dates[3].String())
}

func TestSequence_EmptyOnZeroCountOrUnsetDate(t *testing.T) {
	assert.Nil(t, plan.Sequence(0, mustParse(t, "2025-12-31")))
	assert.Nil(t, plan.Sequence(-3, mustParse(t, "2025-12-31")))
	assert.Nil(t, plan.Sequence(5, plan.DueDate{}))
}
