/*
errors.go - Reconciliation failure types

PURPOSE:
  Every way a plan can fail to balance, in one place. Failures are
  ordinary error values carrying the detail the form layer needs to
  render a message; nothing in this package panics.

ERROR CATEGORIES:
  1. Manual-sum mismatch - every row is manual and they don't add up
  2. Infeasible split - the automatic share falls under the floor
  3. Floor violation - a distributed row ended up under the floor

All three are recoverable: the user changes plan parameters (fewer
installments, smaller benefits, different manual amounts) and retries.

USAGE:
  if errors.Is(err, plan.ErrBelowMinimum) {
      // prompt for different parameters
  }
*/
package plan

import (
	"errors"
	"fmt"
	"strconv"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrManualSumMismatch is returned when all rows are manual and their
	// sum differs from the required total. There is nothing left for the
	// engine to adjust.
	ErrManualSumMismatch = errors.New("manual installments do not sum to the required total")

	// ErrBelowMinimum is returned when a reconciled installment would fall
	// under the minimum installment value.
	ErrBelowMinimum = errors.New("installment below minimum value")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ManualSumError reports the gap between fixed manual rows and the target.
type ManualSumError struct {
	ManualTotal int64
	Target      int64
}

func (e *ManualSumError) Error() string {
	return fmt.Sprintf("manual installments sum to $%s but the plan requires $%s",
		FormatAmount(e.ManualTotal), FormatAmount(e.Target))
}

func (e *ManualSumError) Unwrap() error { return ErrManualSumMismatch }

// InfeasibleSplitError reports an even split that lands under the floor
// before any distribution happens. Hard stop: the caller must change
// plan parameters.
type InfeasibleSplitError struct {
	PerInstallment int64
	Minimum        int64
	AutoCount      int
}

func (e *InfeasibleSplitError) Error() string {
	return fmt.Sprintf("rebalancing yields automatic installments of $%s, below the minimum allowed $%s",
		FormatAmount(e.PerInstallment), FormatAmount(e.Minimum))
}

func (e *InfeasibleSplitError) Unwrap() error { return ErrBelowMinimum }

// FloorViolationError reports a single row that fell under the floor
// after distribution. Guards the remainder-absorption edge case on the
// last automatic row.
type FloorViolationError struct {
	Index   int
	Amount  int64
	Minimum int64
}

func (e *FloorViolationError) Error() string {
	return fmt.Sprintf("installment %d fell to $%s, below the minimum allowed $%s",
		e.Index+1, FormatAmount(e.Amount), FormatAmount(e.Minimum))
}

func (e *FloorViolationError) Unwrap() error { return ErrBelowMinimum }

// IsInfeasible reports whether err is any reconciliation failure, as
// opposed to an I/O or programming error.
func IsInfeasible(err error) bool {
	return errors.Is(err, ErrManualSumMismatch) || errors.Is(err, ErrBelowMinimum)
}

// FormatAmount renders an integer amount with thousands separators for
// user-facing messages.
func FormatAmount(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
