package plan

import "github.com/shopspring/decimal"

// =============================================================================
// INSTALLMENT - One scheduled payment
// =============================================================================

// Installment is a single scheduled payment. Amounts are integers in the
// smallest currency unit; this system never deals in fractional cents.
//
// Manual flips true when a human explicitly edits the amount. Manual
// rows are excluded from automatic redistribution and never overwritten
// by the engine. Un-flipping is a user action, not engine-driven.
type Installment struct {
	DueDate DueDate `json:"due_date"`
	Amount  int64   `json:"amount"`
	Manual  bool    `json:"manual"`
}

// =============================================================================
// SCHEDULE GENERATOR - Initial even-split schedule
// =============================================================================

// GenerateOptions configures schedule generation.
type GenerateOptions struct {
	// Total to finance and the portion already covered by a down payment.
	Total       int64
	DownPayment int64

	// Number of monthly installments and the date of the last one.
	Count        int
	FinalDueDate DueDate

	// FlatAmount, when set, is used verbatim for every installment
	// instead of the even split. Used by add-on item schedules where the
	// buyer names a per-installment value directly.
	FlatAmount *int64
}

// Generate produces the initial schedule: Count rows ending at the final
// due date, every row carrying the same amount. This baseline is
// intentionally naive; Reconcile is what enforces exactness once manual
// overrides enter the picture.
//
// Count <= 0 or an unset final date yields nil.
func Generate(opts GenerateOptions) []Installment {
	dates := Sequence(opts.Count, opts.FinalDueDate)
	if len(dates) == 0 {
		return nil
	}

	amount := MonthlyAmount(opts.Total, opts.DownPayment, opts.Count)
	if opts.FlatAmount != nil {
		amount = *opts.FlatAmount
	}

	rows := make([]Installment, len(dates))
	for i, date := range dates {
		rows[i] = Installment{DueDate: date, Amount: amount}
	}
	return rows
}

// MonthlyAmount returns the even per-installment share of the financed
// balance, rounded half-up. Zero when count <= 0.
func MonthlyAmount(total, downPayment int64, count int) int64 {
	if count <= 0 {
		return 0
	}
	financed := decimal.NewFromInt(total - downPayment)
	return financed.Div(decimal.NewFromInt(int64(count))).Round(0).IntPart()
}
