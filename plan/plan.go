// Package plan implements the financing-plan computation core: deriving
// an installment count from a target end date, generating a monthly
// schedule anchored to that date, and rebalancing automatic installments
// around manual overrides so the plan always sums to the financed total.
//
// Everything here is pure, synchronous computation over explicit inputs.
// Persistence, HTTP, and form wiring live elsewhere.
package plan

// PaymentPlan is an ordered installment schedule bound to a target
// total and a minimum installment floor. Row order is chronological,
// earliest first, ending at the buyer's chosen final due date; order is
// significant for display and for remainder absorption.
type PaymentPlan struct {
	Rows        []Installment `json:"rows"`
	TargetTotal int64         `json:"target_total"`
	MinimumRow  int64         `json:"minimum_row"`
}

// NewPaymentPlan generates a fresh plan from the given options. The row
// set is created in bulk; regenerating discards any previous rows and
// manual flags.
func NewPaymentPlan(opts GenerateOptions, minimum int64) *PaymentPlan {
	return &PaymentPlan{
		Rows:        Generate(opts),
		TargetTotal: opts.Total - opts.DownPayment,
		MinimumRow:  minimum,
	}
}

// Total sums all row amounts.
func (p *PaymentPlan) Total() int64 {
	var sum int64
	for _, r := range p.Rows {
		sum += r.Amount
	}
	return sum
}

// Balanced reports whether the sum invariant holds. It is re-asserted
// after every mutation via Reconcile, never assumed.
func (p *PaymentPlan) Balanced() bool {
	return p.Total() == p.TargetTotal
}

// Reconcile rebalances the automatic rows in place. On failure no row
// is mutated and the error carries the reason.
func (p *PaymentPlan) Reconcile() error {
	amounts, err := Reconcile(p.TargetTotal, p.rowSet(), p.MinimumRow)
	if err != nil {
		return err
	}
	for i := range p.Rows {
		p.Rows[i].Amount = amounts[i]
	}
	return nil
}

// SetManual flips the manual flag on row i. The caller reconciles after.
func (p *PaymentPlan) SetManual(i int, manual bool) {
	if i < 0 || i >= len(p.Rows) {
		return
	}
	p.Rows[i].Manual = manual
}

// EditRow commits a hand-entered amount on row i and marks it manual.
// The caller reconciles after; the edit must be committed before the
// engine reads the row set.
func (p *PaymentPlan) EditRow(i int, amount int64) {
	if i < 0 || i >= len(p.Rows) {
		return
	}
	p.Rows[i].Amount = amount
	p.Rows[i].Manual = true
}

// SubFloorManualRows returns the indexes of manual rows sitting under
// the minimum. These do not fail reconciliation; the form layer flags
// them visually instead.
func (p *PaymentPlan) SubFloorManualRows() []int {
	var out []int
	for i, r := range p.Rows {
		if r.Manual && r.Amount < p.MinimumRow && r.Amount != 0 {
			out = append(out, i)
		}
	}
	return out
}

func (p *PaymentPlan) rowSet() []Row {
	rows := make([]Row, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = Row{Amount: r.Amount, Manual: r.Manual}
	}
	return rows
}
