/*
handlers.go - HTTP handlers for the quotation API

PATTERN:
  Each handler:
  1. Parse and validate input
  2. Call the pure engine / store
  3. Serialize response

ERROR HANDLING:
  - 400: malformed JSON, invalid parameters
  - 404: missing quote or client
  - 422: plan infeasible with the given inputs (manual sum mismatch,
         sub-floor split, missing approver) - user-correctable
  - 500: store failures

  Engine failures are structured error values; the mapping to status
  codes happens here and nowhere else.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/quotation-engine/currency"
	"github.com/warp/quotation-engine/plan"
	"github.com/warp/quotation-engine/quote"
	"github.com/warp/quotation-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Policy   quote.FinancingPolicy
	Currency *currency.Service
	Log      *zap.Logger

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(store *sqlite.Store, policy quote.FinancingPolicy, rates *currency.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Policy:   policy,
		Currency: rates,
		Log:      log,
		now:      time.Now,
	}
}

// =============================================================================
// PLAN ENDPOINTS
// =============================================================================

// GeneratePlan derives the installment count from the final due date
// and returns the even-split baseline schedule.
// POST /api/plans/generate
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req GeneratePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	due, ok := plan.ParseDueDate(req.FinalDueDate)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid final due date", nil)
		return
	}
	months, _ := plan.MonthsUntil(h.now(), due)
	if months <= 0 {
		writeError(w, http.StatusUnprocessableEntity,
			"No valid installment months before the requested date", nil)
		return
	}

	rows := plan.Generate(plan.GenerateOptions{
		Total:        req.FinancedAmount,
		DownPayment:  req.DownPayment,
		Count:        months,
		FinalDueDate: due,
		FlatAmount:   req.FlatAmount,
	})
	writeJSON(w, http.StatusOK, GeneratePlanResponse{Months: months, Rows: rows})
}

// ReconcilePlan rebalances automatic rows against a target total.
// POST /api/plans/reconcile
func (h *Handler) ReconcilePlan(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "At least one row is required", nil)
		return
	}

	rows := make([]plan.Row, len(req.Rows))
	for i, rr := range req.Rows {
		rows[i] = plan.Row{Amount: rr.Amount, Manual: rr.Manual}
	}

	amounts, err := plan.Reconcile(req.TargetTotal, rows, req.MinimumRowValue)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Plan cannot be balanced", err)
		return
	}
	writeJSON(w, http.StatusOK, ReconcileResponse{Amounts: amounts})
}

// AssessPricing computes the pricing projection including the benefit
// cap check.
// POST /api/pricing
func (h *Handler) AssessPricing(w http.ResponseWriter, r *http.Request) {
	var req quote.PricingInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	writeJSON(w, http.StatusOK, quote.ComputePricing(req, h.Policy))
}

// =============================================================================
// QUOTE ENDPOINTS
// =============================================================================

// CreateQuote runs the full builder pipeline and persists the snapshot.
// POST /api/quotes
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b := quote.NewBuilder(h.Policy, h.now)
	b.SetInput(req.Input)

	// Overrides are committed as one batch and validated by the single
	// reconcile pass in Finalize. Applying them one at a time would make
	// acceptance depend on application order.
	if len(req.InstallmentOverrides) > 0 {
		if err := b.OverrideInstallments(req.InstallmentOverrides); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Installment override rejected", err)
			return
		}
	}

	snap, err := b.Finalize()
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !plan.IsInfeasible(err) &&
			!errors.Is(err, quote.ErrApproverRequired) &&
			!errors.Is(err, quote.ErrPlanNotReady) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, "Quotation cannot be finalized", err)
		return
	}

	id, err := h.Store.SaveQuote(r.Context(), snap)
	if err != nil {
		h.Log.Error("failed to save quote", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save quote", err)
		return
	}

	h.Log.Info("quote saved",
		zap.Int64("serial_id", id),
		zap.String("client_id", snap.ClientID),
		zap.Int("installments", snap.InstallmentCount))
	writeJSON(w, http.StatusCreated, CreateQuoteResponse{SerialID: id, Snapshot: snap})
}

// ListQuotes returns all saved quotes, most recent first.
// GET /api/quotes
func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListQuotes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list quotes", err)
		return
	}

	dtos := make([]QuoteDTO, len(records))
	for i, rec := range records {
		dtos[i] = toQuoteDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetQuote returns a single saved quote.
// GET /api/quotes/{id}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quote id", err)
		return
	}

	rec, err := h.Store.GetQuote(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get quote", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Quote not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteDTO(*rec))
}

// =============================================================================
// CLIENT ENDPOINTS
// =============================================================================

// CreateClient upserts a client record.
// POST /api/clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.FullName == "" {
		writeError(w, http.StatusBadRequest, "Client id and full name are required", nil)
		return
	}

	err := h.Store.SaveClient(r.Context(), sqlite.Client{
		ID:         req.ID,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save client", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListClients returns all clients.
// GET /api/clients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.ListClients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = ClientDTO{
			ID:         c.ID,
			FullName:   c.FullName,
			Email:      c.Email,
			Phone:      c.Phone,
			DocumentID: c.DocumentID,
			CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CURRENCY ENDPOINT
// =============================================================================

// GetRate returns the cached market rate and optionally converts a COP
// amount from the query string.
// GET /api/currency/trm?cop=350000000
func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	if h.Currency == nil {
		writeError(w, http.StatusNotFound, "Currency service not configured", nil)
		return
	}

	rate := h.Currency.Rate(r.Context())
	resp := RateResponse{Rate: rate.String()}
	if raw := r.URL.Query().Get("cop"); raw != "" {
		cop, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid cop amount", err)
			return
		}
		resp.USD = currency.ConvertToUSD(cop, rate)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func toQuoteDTO(rec sqlite.QuoteRecord) QuoteDTO {
	return QuoteDTO{
		SerialID:  rec.SerialID,
		ClientID:  rec.ClientID,
		AdvisorID: rec.AdvisorID,
		UnitID:    rec.UnitID,
		Snapshot:  rec.Snapshot,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
