package quote_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/quotation-engine/quote"
)

const million = 1_000_000

func TestComputePricing_StandardFlow(t *testing.T) {
	p := quote.ComputePricing(quote.PricingInput{
		GrossPrice:              400 * million,
		AppreciationBenefit:     20 * million,
		EarlyReservationBenefit: 10 * million,
		DownPaymentPercent:      30,
	}, quote.DefaultPolicy())

	assert.Equal(t, int64(60*million), p.MaxBenefit) // 15% of 400M
	assert.Equal(t, int64(30*million), p.TotalBenefits)
	assert.False(t, p.BenefitsExceeded)
	assert.Equal(t, int64(370*million), p.NetPrice)
	assert.Equal(t, int64(111*million), p.DownPayment)
}

func TestComputePricing_BenefitCapExceeded(t *testing.T) {
	p := quote.ComputePricing(quote.PricingInput{
		GrossPrice:              400 * million,
		AppreciationBenefit:     50 * million,
		EarlyReservationBenefit: 11 * million,
	}, quote.DefaultPolicy())

	assert.True(t, p.BenefitsExceeded)
	assert.Equal(t, int64(61*million), p.TotalBenefits)
}

func TestComputePricing_ExactlyAtCapIsNotExceeded(t *testing.T) {
	p := quote.ComputePricing(quote.PricingInput{
		GrossPrice:          400 * million,
		AppreciationBenefit: 60 * million,
	}, quote.DefaultPolicy())

	assert.False(t, p.BenefitsExceeded)
}

func TestComputePricing_ConfigurableCapRatio(t *testing.T) {
	// Older projects ran a 50% cap; the ratio is policy, not a literal.
	policy := quote.DefaultPolicy()
	policy.BenefitCapRatio = decimal.NewFromFloat(0.50)

	p := quote.ComputePricing(quote.PricingInput{
		GrossPrice:          100 * million,
		AppreciationBenefit: 40 * million,
	}, policy)

	assert.Equal(t, int64(50*million), p.MaxBenefit)
	assert.False(t, p.BenefitsExceeded)
}

func TestComputePricing_NetPriceFlooredAtZero(t *testing.T) {
	p := quote.ComputePricing(quote.PricingInput{
		GrossPrice:          10 * million,
		AppreciationBenefit: 15 * million,
		DownPaymentPercent:  30,
	}, quote.DefaultPolicy())

	assert.Equal(t, int64(0), p.NetPrice)
	assert.Equal(t, int64(0), p.DownPayment)
}

func TestComputePricing_DownPaymentRoundsHalfUp(t *testing.T) {
	p := quote.ComputePricing(quote.PricingInput{
		GrossPrice:         101,
		DownPaymentPercent: 10.5, // 10.605 -> 11
	}, quote.DefaultPolicy())

	assert.Equal(t, int64(11), p.DownPayment)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"350000000", 350 * million},
		{"$ 350.000.000", 350 * million},
		{"350,000,000", 350 * million},
		{"", 0},
		{"abc", 0},
		{"-1200", -1200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quote.ParseAmount(tt.in), "input %q", tt.in)
	}
}
