package quote

import "github.com/shopspring/decimal"

// FinancingPolicy carries the business constants the engine applies.
// These are policy, not code: sales management tunes them per project,
// so they load from configuration rather than living as literals.
type FinancingPolicy struct {
	// BenefitCapRatio is the fraction of the gross price that combined
	// discretionary benefits may reach before approval is required.
	BenefitCapRatio decimal.Decimal

	// MinUnitInstallment is the floor for installments on the unit plan.
	MinUnitInstallment int64

	// MinAddOnInstallment is the floor for add-on item plans.
	MinAddOnInstallment int64
}

// DefaultPolicy returns the standard residential policy: benefits capped
// at 15% of gross price, unit installments of at least 1,000,000 and
// add-on installments of at least 500,000.
func DefaultPolicy() FinancingPolicy {
	return FinancingPolicy{
		BenefitCapRatio:     decimal.NewFromFloat(0.15),
		MinUnitInstallment:  1_000_000,
		MinAddOnInstallment: 500_000,
	}
}

// NewPolicy builds a policy from configured values.
func NewPolicy(capRatio float64, minUnit, minAddOn int64) FinancingPolicy {
	return FinancingPolicy{
		BenefitCapRatio:     decimal.NewFromFloat(capRatio),
		MinUnitInstallment:  minUnit,
		MinAddOnInstallment: minAddOn,
	}
}
