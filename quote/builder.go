/*
builder.go - Quotation orchestration

PURPOSE:
  Wires the committed form inputs to the pure calculators in a fixed
  dependency order and owns the mutable row state between edits. This
  replaces the reactive field-listener cascade of a form UI with one
  explicit recalculation step:

    pricing -> installment count -> unit schedule -> add-on schedules

  run after every committed edit, so derived values are never stale and
  never recomputed out of order.

EDIT FLOW:
  EditInstallment commits the buyer's amount (flipping the row manual),
  then reconciles. ToggleAutomatic hands a row back to the engine, then
  reconciles. Reconciliation runs to completion as one atomic step; the
  guard flag keeps engine writes from re-triggering a nested pass.

FAILURE SURFACING:
  A failed reconciliation mutates nothing. The triggering control is
  marked invalid and the reason is surfaced at most once per distinct
  message per control (lastReported), so repeated identical failures
  don't spam the user.
*/
package quote

import (
	"errors"
	"fmt"
	"time"

	"github.com/warp/quotation-engine/plan"
)

var (
	// ErrPlanNotReady is returned when the plan cannot be generated from
	// the current inputs (no valid installment months yet).
	ErrPlanNotReady = errors.New("payment plan not generatable from current inputs")

	// ErrApproverRequired is returned on finalize when benefits exceed
	// the cap and no approver has been named.
	ErrApproverRequired = errors.New("benefit cap exceeded: approver required")

	// ErrRowOutOfRange is returned when an edit names an installment
	// index the current plan does not have.
	ErrRowOutOfRange = errors.New("installment index out of range")
)

// Input is the full committed form state a quotation derives from.
type Input struct {
	ClientID  string `json:"client_id"`
	AdvisorID int64  `json:"advisor_id"`
	UnitID    string `json:"unit_id"`

	Pricing      PricingInput `json:"pricing"`
	FinalDueDate plan.DueDate `json:"final_due_date"`

	// ApproverName is required only when the benefit cap is exceeded.
	ApproverName string `json:"approver_name,omitempty"`

	AddOns []AddOnInput `json:"add_ons,omitempty"`
}

// Builder holds the working state of one quotation between edits.
// Single-threaded by design: every method runs synchronously on the
// caller's goroutine in response to a discrete input event.
type Builder struct {
	policy FinancingPolicy
	clock  func() time.Time

	input   Input
	pricing Pricing
	count   int

	unitPlan *plan.PaymentPlan
	addOns   []*AddOnPlan

	// Per-control state for failure surfacing.
	invalid      map[string]bool
	lastReported map[string]string

	// Guards against a reconcile pass re-entering itself when engine
	// writes are observed by the same listener that triggers edits.
	reconciling bool
}

// NewBuilder creates a builder under the given policy. clock defaults
// to time.Now; tests inject a fixed clock.
func NewBuilder(policy FinancingPolicy, clock func() time.Time) *Builder {
	if clock == nil {
		clock = time.Now
	}
	return &Builder{
		policy:       policy,
		clock:        clock,
		invalid:      make(map[string]bool),
		lastReported: make(map[string]string),
	}
}

// SetInput commits a new input snapshot and recalculates everything.
// Existing rows and manual flags are discarded: a regenerated plan
// starts from the even-split baseline.
func (b *Builder) SetInput(in Input) {
	b.input = in
	b.recalculateAll()
}

// recalculateAll runs the pure calculators in fixed dependency order.
func (b *Builder) recalculateAll() {
	now := b.clock()

	b.pricing = ComputePricing(b.input.Pricing, b.policy)

	b.count = 0
	if months, ok := plan.MonthsUntil(now, b.input.FinalDueDate); ok {
		b.count = months
	}

	b.unitPlan = nil
	if b.count > 0 {
		b.unitPlan = plan.NewPaymentPlan(plan.GenerateOptions{
			Total:        b.pricing.NetPrice,
			DownPayment:  b.pricing.DownPayment,
			Count:        b.count,
			FinalDueDate: b.input.FinalDueDate,
		}, b.policy.MinUnitInstallment)
	}

	b.addOns = b.addOns[:0]
	for _, in := range b.input.AddOns {
		if ap := BuildAddOnPlan(now, in, b.policy); ap != nil {
			b.addOns = append(b.addOns, ap)
		}
	}

	b.invalid = make(map[string]bool)
	b.lastReported = make(map[string]string)
}

// EditInstallment commits a hand-entered amount on unit-plan row i and
// reconciles. The returned alert is the message to surface, empty when
// the same reason was already reported for this row. err is non-nil on
// any reconciliation failure regardless of deduplication.
func (b *Builder) EditInstallment(i int, amount int64) (alert string, err error) {
	if b.unitPlan == nil {
		return "", ErrPlanNotReady
	}
	if i < 0 || i >= len(b.unitPlan.Rows) {
		return "", fmt.Errorf("installment %d: %w", i+1, ErrRowOutOfRange)
	}
	if b.reconciling {
		return "", nil
	}
	b.reconciling = true
	defer func() { b.reconciling = false }()

	// Commit the edit to the row model before the engine reads it.
	b.unitPlan.EditRow(i, amount)
	return b.reconcileUnit(rowControl(i))
}

// ToggleAutomatic flips row i between manual and automatic ownership
// and reconciles. Handing a row back to the engine rewrites its amount.
func (b *Builder) ToggleAutomatic(i int, manual bool) (alert string, err error) {
	if b.unitPlan == nil {
		return "", ErrPlanNotReady
	}
	if i < 0 || i >= len(b.unitPlan.Rows) {
		return "", fmt.Errorf("installment %d: %w", i+1, ErrRowOutOfRange)
	}
	if b.reconciling {
		return "", nil
	}
	b.reconciling = true
	defer func() { b.reconciling = false }()

	b.unitPlan.SetManual(i, manual)
	return b.reconcileUnit(rowControl(i))
}

func (b *Builder) reconcileUnit(control string) (string, error) {
	err := b.unitPlan.Reconcile()
	if err == nil {
		delete(b.invalid, control)
		delete(b.lastReported, control)
		return "", nil
	}

	b.invalid[control] = true
	msg := err.Error()
	if b.lastReported[control] == msg {
		return "", err // already surfaced, don't repeat
	}
	b.lastReported[control] = msg
	return msg, err
}

// OverrideInstallments commits a batch of hand-entered amounts as one
// step, with no reconcile between rows: an override set that only
// balances as a whole must not be rejected on an intermediate state.
// The caller reconciles after; Finalize always runs a full pass.
// Every index is validated before any row is touched.
func (b *Builder) OverrideInstallments(amounts map[int]int64) error {
	if b.unitPlan == nil {
		return ErrPlanNotReady
	}
	for i := range amounts {
		if i < 0 || i >= len(b.unitPlan.Rows) {
			return fmt.Errorf("installment %d: %w", i+1, ErrRowOutOfRange)
		}
	}
	for i, amount := range amounts {
		b.unitPlan.EditRow(i, amount)
	}
	return nil
}

// Finalize reconciles every plan once more and produces the snapshot to
// persist. Nothing stale can slip through: a plan edited since its last
// reconcile pass fails here and blocks submission.
func (b *Builder) Finalize() (*Snapshot, error) {
	if b.unitPlan == nil {
		return nil, ErrPlanNotReady
	}
	if err := b.unitPlan.Reconcile(); err != nil {
		return nil, fmt.Errorf("unit plan: %w", err)
	}
	for _, ap := range b.addOns {
		if ap.Plan == nil {
			continue
		}
		if err := ap.Plan.Reconcile(); err != nil {
			return nil, fmt.Errorf("add-on %s: %w", ap.Kind, err)
		}
	}
	if b.pricing.BenefitsExceeded && b.input.ApproverName == "" {
		return nil, ErrApproverRequired
	}

	return newSnapshot(b), nil
}

// Invalid reports whether unit-plan row i is currently marked invalid.
func (b *Builder) Invalid(i int) bool {
	return b.invalid[rowControl(i)]
}

// Accessors for the derived state.
func (b *Builder) Pricing() Pricing            { return b.pricing }
func (b *Builder) InstallmentCount() int       { return b.count }
func (b *Builder) UnitPlan() *plan.PaymentPlan { return b.unitPlan }
func (b *Builder) AddOnPlans() []*AddOnPlan    { return b.addOns }

func rowControl(i int) string {
	return fmt.Sprintf("installment-%d", i)
}
