package quote_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/quotation-engine/plan"
	"github.com/warp/quotation-engine/quote"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// Fixed clock: anchor month is October 2025, so a final due date of
// 2026-06-15 yields 9 installments.
func septemberClock() time.Time {
	return time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
}

func standardInput() quote.Input {
	due, _ := plan.ParseDueDate("2026-06-15")
	return quote.Input{
		ClientID:  "client-77",
		AdvisorID: 3,
		UnitID:    "T2-1204",
		Pricing: quote.PricingInput{
			GrossPrice:              400 * million,
			AppreciationBenefit:     20 * million,
			EarlyReservationBenefit: 10 * million,
			DownPaymentPercent:      10,
		},
		FinalDueDate: due,
	}
}

func newTestBuilder(in quote.Input) *quote.Builder {
	b := quote.NewBuilder(quote.DefaultPolicy(), septemberClock)
	b.SetInput(in)
	return b
}

// =============================================================================
// RECALCULATION ORDER
// =============================================================================

func TestBuilder_DerivesCountAndScheduleFromInput(t *testing.T) {
	b := newTestBuilder(standardInput())

	// Net 370M, down 37M -> 333M financed over 9 months = 37M each.
	assert.Equal(t, 9, b.InstallmentCount())
	p := b.UnitPlan()
	require.NotNil(t, p)
	require.Len(t, p.Rows, 9)
	assert.Equal(t, int64(333*million), p.TargetTotal)
	assert.True(t, p.Balanced())
	assert.Equal(t, "2025-10-15", p.Rows[0].DueDate.String())
	assert.Equal(t, "2026-06-15", p.Rows[8].DueDate.String())
	for _, r := range p.Rows {
		assert.Equal(t, int64(37*million), r.Amount)
	}
}

func TestBuilder_NoDueDateMeansNoPlan(t *testing.T) {
	in := standardInput()
	in.FinalDueDate = plan.DueDate{}
	b := newTestBuilder(in)

	assert.Equal(t, 0, b.InstallmentCount())
	assert.Nil(t, b.UnitPlan())

	_, err := b.EditInstallment(0, million)
	assert.True(t, errors.Is(err, quote.ErrPlanNotReady))

	_, err = b.Finalize()
	assert.True(t, errors.Is(err, quote.ErrPlanNotReady))
}

func TestBuilder_SetInputDiscardsManualEdits(t *testing.T) {
	b := newTestBuilder(standardInput())
	_, err := b.EditInstallment(0, 45*million)
	require.NoError(t, err)

	b.SetInput(standardInput()) // regenerate
	for _, r := range b.UnitPlan().Rows {
		assert.False(t, r.Manual)
		assert.Equal(t, int64(37*million), r.Amount)
	}
}

// =============================================================================
// MANUAL EDITS AND TOGGLES
// =============================================================================

func TestBuilder_ManualEditRebalancesOthers(t *testing.T) {
	b := newTestBuilder(standardInput())

	alert, err := b.EditInstallment(0, 45*million)
	require.NoError(t, err)
	assert.Empty(t, alert)

	p := b.UnitPlan()
	assert.True(t, p.Rows[0].Manual)
	assert.Equal(t, int64(45*million), p.Rows[0].Amount)
	for i := 1; i < 9; i++ {
		assert.Equal(t, int64(36*million), p.Rows[i].Amount, "row %d", i)
	}
	assert.True(t, p.Balanced())
}

func TestBuilder_ToggleBackToAutomaticRestoresEvenSplit(t *testing.T) {
	b := newTestBuilder(standardInput())
	_, err := b.EditInstallment(0, 45*million)
	require.NoError(t, err)

	alert, err := b.ToggleAutomatic(0, false)
	require.NoError(t, err)
	assert.Empty(t, alert)

	for _, r := range b.UnitPlan().Rows {
		assert.False(t, r.Manual)
		assert.Equal(t, int64(37*million), r.Amount)
	}
}

func TestBuilder_FailedEditMarksRowInvalidAndAlertsOnce(t *testing.T) {
	b := newTestBuilder(standardInput())

	// 330M on one row leaves 3M over 8 rows: 375,000 < 1M floor.
	alert, err := b.EditInstallment(0, 330*million)
	require.Error(t, err)
	assert.True(t, plan.IsInfeasible(err))
	assert.NotEmpty(t, alert)
	assert.True(t, b.Invalid(0))

	// Same failure again: still an error, but no repeated alert.
	alert, err = b.EditInstallment(0, 330*million)
	require.Error(t, err)
	assert.Empty(t, alert)

	// Automatic rows kept their last good amounts.
	for i := 1; i < 9; i++ {
		assert.Equal(t, int64(37*million), b.UnitPlan().Rows[i].Amount)
	}
}

func TestBuilder_RecoveringEditClearsInvalidState(t *testing.T) {
	b := newTestBuilder(standardInput())

	_, err := b.EditInstallment(0, 330*million)
	require.Error(t, err)

	alert, err := b.EditInstallment(0, 45*million)
	require.NoError(t, err)
	assert.Empty(t, alert)
	assert.False(t, b.Invalid(0))

	// The earlier failure reason was cleared, so a repeat failure
	// surfaces again rather than being treated as a duplicate.
	alert, err = b.EditInstallment(0, 330*million)
	require.Error(t, err)
	assert.NotEmpty(t, alert)
}

// =============================================================================
// FINALIZE
// =============================================================================

func TestBuilder_FinalizeProducesSnapshot(t *testing.T) {
	in := standardInput()
	b := newTestBuilder(in)
	_, err := b.EditInstallment(2, 40*million)
	require.NoError(t, err)

	snap, err := b.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "client-77", snap.ClientID)
	assert.Equal(t, "T2-1204", snap.UnitID)
	assert.Equal(t, 9, snap.InstallmentCount)
	assert.False(t, snap.BenefitsExceeded)
	require.Len(t, snap.UnitRows, 9)

	var total int64
	for _, r := range snap.UnitRows {
		total += r.Amount
	}
	assert.Equal(t, int64(333*million), total)
}

func TestBuilder_FinalizeBlocksOnInfeasiblePlan(t *testing.T) {
	b := newTestBuilder(standardInput())
	_, err := b.EditInstallment(0, 330*million)
	require.Error(t, err)

	_, err = b.Finalize()
	require.Error(t, err)
	assert.True(t, plan.IsInfeasible(err))
}

func TestBuilder_FinalizeRequiresApproverWhenCapExceeded(t *testing.T) {
	in := standardInput()
	in.Pricing.AppreciationBenefit = 70 * million // over the 60M cap

	b := newTestBuilder(in)
	_, err := b.Finalize()
	assert.True(t, errors.Is(err, quote.ErrApproverRequired))

	in.ApproverName = "Sales Director"
	b.SetInput(in)
	snap, err := b.Finalize()
	require.NoError(t, err)
	assert.True(t, snap.BenefitsExceeded)
	assert.Equal(t, "Sales Director", snap.ApproverName)
}

// =============================================================================
// BATCH OVERRIDES
// =============================================================================

func TestBuilder_OverrideInstallments_BatchBalancesAsAWhole(t *testing.T) {
	b := newTestBuilder(standardInput())

	// All nine rows hand-set; only the complete set sums to the 333M
	// target. A row-by-row reconcile would reject it partway through,
	// and the outcome would depend on application order.
	overrides := map[int]int64{0: 333*million - 8}
	for i := 1; i < 9; i++ {
		overrides[i] = 1
	}
	require.NoError(t, b.OverrideInstallments(overrides))

	snap, err := b.Finalize()
	require.NoError(t, err)
	assert.Equal(t, int64(333*million-8), snap.UnitRows[0].Amount)
	for i := 1; i < 9; i++ {
		assert.Equal(t, int64(1), snap.UnitRows[i].Amount, "row %d", i)
	}
}

func TestBuilder_EditRejectsOutOfRangeIndex(t *testing.T) {
	b := newTestBuilder(standardInput())

	_, err := b.EditInstallment(9, million)
	assert.True(t, errors.Is(err, quote.ErrRowOutOfRange))

	_, err = b.ToggleAutomatic(-1, true)
	assert.True(t, errors.Is(err, quote.ErrRowOutOfRange))

	err = b.OverrideInstallments(map[int]int64{0: 40 * million, 42: million})
	assert.True(t, errors.Is(err, quote.ErrRowOutOfRange))
	// Nothing from the rejected batch was committed.
	assert.False(t, b.UnitPlan().Rows[0].Manual)
}

// =============================================================================
// ADD-ON PLANS
// =============================================================================

func TestBuilder_AddOnPlansGenerated(t *testing.T) {
	due, _ := plan.ParseDueDate("2026-03-10") // 6 months from October anchor
	in := standardInput()
	in.AddOns = []quote.AddOnInput{
		{
			Kind:         quote.AddOnParking,
			Enabled:      true,
			Quantity:     2,
			TotalPrice:   40 * million,
			Benefit:      5 * million,
			FinalDueDate: due,
		},
		{Kind: quote.AddOnStorage}, // not enabled, ignored
	}

	b := newTestBuilder(in)
	plans := b.AddOnPlans()
	require.Len(t, plans, 1)

	parking := plans[0]
	assert.Equal(t, quote.AddOnParking, parking.Kind)
	assert.Equal(t, 2, parking.Quantity)
	assert.Equal(t, 6, parking.Count)
	require.NotNil(t, parking.Plan)
	assert.Equal(t, int64(35*million), parking.Plan.TargetTotal)
	assert.Equal(t, "2026-03-10", parking.Plan.Rows[5].DueDate.String())
}

func TestBuilder_AddOnFlatAmountAndFinalizeReconciles(t *testing.T) {
	due, _ := plan.ParseDueDate("2026-03-10")
	in := standardInput()
	in.AddOns = []quote.AddOnInput{{
		Kind:              quote.AddOnFinishesKit,
		Enabled:           true,
		TotalPrice:        4_500_000,
		Benefit:           0,
		InstallmentAmount: 750_000,
		FinalDueDate:      due,
	}}

	b := newTestBuilder(in)
	kit := b.AddOnPlans()[0]
	require.NotNil(t, kit.Plan)
	for _, r := range kit.Plan.Rows {
		assert.Equal(t, int64(750_000), r.Amount)
	}

	snap, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, snap.AddOns, 1)
	assert.Equal(t, int64(4_500_000), snap.AddOns[0].FinancedTotal)
	require.Len(t, snap.AddOns[0].Rows, 6)
	for _, r := range snap.AddOns[0].Rows {
		assert.Equal(t, int64(750_000), r.Amount)
	}
}

func TestBuilder_AddOnFlatAmountMismatchBlocksFinalize(t *testing.T) {
	// 750k over 6 rows is 4.5M, not the 5M financed: the buyer-named
	// amount is never rewritten to make the plan balance, so finalize
	// must fail instead.
	due, _ := plan.ParseDueDate("2026-03-10")
	in := standardInput()
	in.AddOns = []quote.AddOnInput{{
		Kind:              quote.AddOnFinishesKit,
		Enabled:           true,
		TotalPrice:        5 * million,
		InstallmentAmount: 750_000,
		FinalDueDate:      due,
	}}

	b := newTestBuilder(in)
	_, err := b.Finalize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, plan.ErrManualSumMismatch))

	// The named amount survives the failed pass untouched.
	for _, r := range b.AddOnPlans()[0].Plan.Rows {
		assert.Equal(t, int64(750_000), r.Amount)
	}
}

func TestAddOnCatalog_ParkingIsTheOnlyQuantityItem(t *testing.T) {
	for _, cfg := range quote.AddOnCatalog() {
		if cfg.Kind == quote.AddOnParking {
			assert.True(t, cfg.HasQuantity)
		} else {
			assert.False(t, cfg.HasQuantity, "%s", cfg.Kind)
		}
	}
}
