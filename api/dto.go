package api

import (
	"github.com/warp/quotation-engine/plan"
	"github.com/warp/quotation-engine/quote"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// GeneratePlanRequest asks for an initial schedule. The installment
// count is derived from the final due date, never supplied directly.
type GeneratePlanRequest struct {
	FinancedAmount int64  `json:"financed_amount"`
	DownPayment    int64  `json:"down_payment"`
	FinalDueDate   string `json:"final_due_date"`
	FlatAmount     *int64 `json:"flat_amount,omitempty"`
}

type GeneratePlanResponse struct {
	Months int                `json:"months"`
	Rows   []plan.Installment `json:"rows"`
}

// ReconcileRequest rebalances a row set against a target total.
type ReconcileRequest struct {
	TargetTotal     int64          `json:"target_total"`
	Rows            []ReconcileRow `json:"rows"`
	MinimumRowValue int64          `json:"minimum_row_value"`
}

type ReconcileRow struct {
	Amount int64 `json:"amount"`
	Manual bool  `json:"manual"`
}

type ReconcileResponse struct {
	Amounts []int64 `json:"amounts"`
}

// CreateQuoteRequest is the full quotation input; the server runs the
// same builder pipeline the form uses and persists the snapshot.
type CreateQuoteRequest struct {
	quote.Input
	// InstallmentOverrides pre-applies manual edits by row index before
	// finalizing.
	InstallmentOverrides map[int]int64 `json:"installment_overrides,omitempty"`
}

type CreateQuoteResponse struct {
	SerialID int64           `json:"serial_id"`
	Snapshot *quote.Snapshot `json:"snapshot"`
}

type QuoteDTO struct {
	SerialID  int64          `json:"serial_id"`
	ClientID  string         `json:"client_id"`
	AdvisorID int64          `json:"advisor_id"`
	UnitID    string         `json:"unit_id"`
	Snapshot  quote.Snapshot `json:"snapshot"`
	CreatedAt string         `json:"created_at"`
}

type ClientRequest struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

type ClientDTO struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// RateResponse carries the market rate and, when a COP amount was
// supplied, its USD equivalent. Display-only.
type RateResponse struct {
	Rate string `json:"rate"`
	USD  int64  `json:"usd,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
