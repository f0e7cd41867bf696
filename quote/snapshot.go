package quote

import (
	"time"

	"github.com/warp/quotation-engine/plan"
)

// Snapshot is the finalized quotation handed to persistence. It is an
// opaque, self-contained record: rendering a saved quote needs nothing
// beyond this plus the catalog references it names.
type Snapshot struct {
	ClientID  string `json:"client_id"`
	AdvisorID int64  `json:"advisor_id"`
	UnitID    string `json:"unit_id"`

	Pricing          Pricing `json:"pricing"`
	BenefitsExceeded bool    `json:"benefits_exceeded"`
	ApproverName     string  `json:"approver_name,omitempty"`

	InstallmentCount int                `json:"installment_count"`
	FinalDueDate     plan.DueDate       `json:"final_due_date"`
	UnitRows         []plan.Installment `json:"unit_rows"`

	AddOns []AddOnSnapshot `json:"add_ons,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// AddOnSnapshot freezes one add-on plan.
type AddOnSnapshot struct {
	Kind          AddOnKind          `json:"kind"`
	Quantity      int                `json:"quantity,omitempty"`
	FinancedTotal int64              `json:"financed_total"`
	Count         int                `json:"count"`
	Rows          []plan.Installment `json:"rows,omitempty"`
}

func newSnapshot(b *Builder) *Snapshot {
	snap := &Snapshot{
		ClientID:         b.input.ClientID,
		AdvisorID:        b.input.AdvisorID,
		UnitID:           b.input.UnitID,
		Pricing:          b.pricing,
		BenefitsExceeded: b.pricing.BenefitsExceeded,
		ApproverName:     b.input.ApproverName,
		InstallmentCount: b.count,
		FinalDueDate:     b.input.FinalDueDate,
		UnitRows:         append([]plan.Installment(nil), b.unitPlan.Rows...),
		GeneratedAt:      b.clock(),
	}

	for _, ap := range b.addOns {
		as := AddOnSnapshot{
			Kind:     ap.Kind,
			Quantity: ap.Quantity,
			Count:    ap.Count,
		}
		if ap.Plan != nil {
			as.FinancedTotal = ap.Plan.TargetTotal
			as.Rows = append([]plan.Installment(nil), ap.Plan.Rows...)
		}
		snap.AddOns = append(snap.AddOns, as)
	}
	return snap
}
