package quote

import (
	"time"

	"github.com/warp/quotation-engine/plan"
)

// =============================================================================
// ADD-ON ITEMS - Secondary financed items alongside the unit
// =============================================================================

// AddOnKind identifies a financeable add-on item.
type AddOnKind string

const (
	AddOnParking       AddOnKind = "parking"
	AddOnFinishesKit   AddOnKind = "finishes_kit"
	AddOnAutomationKit AddOnKind = "automation_kit"
	AddOnStorage       AddOnKind = "storage"
)

// AddOnConfig describes a selectable add-on item.
type AddOnConfig struct {
	Kind        AddOnKind
	DisplayName string
	// HasQuantity marks items the buyer can take more than one of
	// (parking spots); the rest are single-unit.
	HasQuantity bool
}

// AddOnCatalog returns the selectable add-on items in display order.
func AddOnCatalog() []AddOnConfig {
	return []AddOnConfig{
		{Kind: AddOnParking, DisplayName: "Parking spot", HasQuantity: true},
		{Kind: AddOnFinishesKit, DisplayName: "Finishes kit"},
		{Kind: AddOnAutomationKit, DisplayName: "Home automation kit"},
		{Kind: AddOnStorage, DisplayName: "Storage unit"},
	}
}

// AddOnInput is the committed form state for one add-on item.
type AddOnInput struct {
	Kind    AddOnKind `json:"kind"`
	Enabled bool      `json:"enabled"`
	// Quantity applies only to kinds with HasQuantity; 0 means 1.
	Quantity   int   `json:"quantity,omitempty"`
	TotalPrice int64 `json:"total_price"`
	Benefit    int64 `json:"benefit"`
	// InstallmentAmount, when positive, is a buyer-named flat value per
	// installment instead of the even split.
	InstallmentAmount int64        `json:"installment_amount,omitempty"`
	FinalDueDate      plan.DueDate `json:"final_due_date"`
}

// FinancedTotal is the post-benefit balance this add-on finances.
func (a AddOnInput) FinancedTotal() int64 {
	financed := a.TotalPrice - a.Benefit
	if financed < 0 {
		return 0
	}
	return financed
}

// AddOnPlan is the generated schedule for one enabled add-on.
type AddOnPlan struct {
	Kind     AddOnKind         `json:"kind"`
	Quantity int               `json:"quantity,omitempty"`
	Count    int               `json:"count"`
	Plan     *plan.PaymentPlan `json:"plan,omitempty"`
}

// BuildAddOnPlan derives the installment count from the add-on's own
// final due date and generates its schedule. Disabled items yield nil.
// An item whose date yields no valid installment months gets Count 0
// and no plan; the form treats it as incomplete.
func BuildAddOnPlan(now time.Time, in AddOnInput, policy FinancingPolicy) *AddOnPlan {
	if !in.Enabled {
		return nil
	}

	out := &AddOnPlan{Kind: in.Kind, Quantity: in.Quantity}

	count, ok := plan.MonthsUntil(now, in.FinalDueDate)
	if !ok || count <= 0 {
		return out
	}
	out.Count = count

	opts := plan.GenerateOptions{
		Total:        in.FinancedTotal(),
		Count:        count,
		FinalDueDate: in.FinalDueDate,
	}
	if in.InstallmentAmount > 0 {
		flat := in.InstallmentAmount
		opts.FlatAmount = &flat
	}
	out.Plan = plan.NewPaymentPlan(opts, policy.MinAddOnInstallment)

	// A buyer-named flat amount is a manual choice on every row.
	// Reconciliation must never rewrite it; a flat value that doesn't
	// sum to the financed total surfaces as a manual-sum mismatch.
	if opts.FlatAmount != nil {
		for i := range out.Plan.Rows {
			out.Plan.Rows[i].Manual = true
		}
	}
	return out
}
