/*
pricing.go - Price, benefit and down-payment derivation

PURPOSE:
  Turns the raw quotation inputs (gross price, the two discretionary
  benefits, the down-payment percentage) into the derived figures every
  later step depends on:

  MaxBenefit   = gross price x cap ratio
  Exceeded     = combined benefits > MaxBenefit
  NetPrice     = max(gross - benefits, 0)
  DownPayment  = round(net x percent / 100)

BENEFIT CAP:
  Exceeding the cap is non-fatal. It does not block the quote; it
  unlocks a normally-locked approver field that must then be filled.
  The escalation, not the arithmetic, is the enforcement.

PURITY:
  This is a projection with no persisted identity, recomputed on every
  change to any input. All state comes in through PricingInput.
*/
package quote

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PricingInput is the committed form state pricing derives from.
type PricingInput struct {
	GrossPrice              int64   `json:"gross_price"`
	AppreciationBenefit     int64   `json:"appreciation_benefit"`
	EarlyReservationBenefit int64   `json:"early_reservation_benefit"`
	DownPaymentPercent      float64 `json:"down_payment_percent"`
}

// Pricing is the derived projection.
type Pricing struct {
	MaxBenefit       int64 `json:"max_benefit"`
	TotalBenefits    int64 `json:"total_benefits"`
	BenefitsExceeded bool  `json:"benefits_exceeded"`
	NetPrice         int64 `json:"net_price"`
	DownPayment      int64 `json:"down_payment"`
}

// ComputePricing derives the pricing projection under the given policy.
func ComputePricing(in PricingInput, policy FinancingPolicy) Pricing {
	gross := decimal.NewFromInt(in.GrossPrice)
	totalBenefits := in.AppreciationBenefit + in.EarlyReservationBenefit

	maxBenefit := gross.Mul(policy.BenefitCapRatio)
	exceeded := decimal.NewFromInt(totalBenefits).GreaterThan(maxBenefit)

	netPrice := in.GrossPrice - totalBenefits
	if netPrice < 0 {
		netPrice = 0
	}

	downPayment := decimal.NewFromInt(netPrice).
		Mul(decimal.NewFromFloat(in.DownPaymentPercent)).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart()

	return Pricing{
		MaxBenefit:       maxBenefit.Round(0).IntPart(),
		TotalBenefits:    totalBenefits,
		BenefitsExceeded: exceeded,
		NetPrice:         netPrice,
		DownPayment:      downPayment,
	}
}

// ParseAmount converts formatted currency text ("$ 350.000.000",
// "350,000,000") to an integer amount. Malformed input is 0, never an
// error: the form treats it as "not entered yet".
func ParseAmount(s string) int64 {
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '-' && i == 0 {
			b.WriteRune(r)
		}
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
