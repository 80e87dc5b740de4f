/*
handlers.go - HTTP API handlers for the pay-cycle projection service

PURPOSE:
  Exposes pay settings, bills, and the projected schedule over REST.
  Handlers parse and validate, delegate to the store and the paycycle
  engine, and serialize. The engine itself stays pure: handlers materialize
  all inputs (settings, bills, today) before calling it.

ENDPOINTS:
  Settings:
    GET    /api/users/{userID}/settings
    PUT    /api/users/{userID}/settings

  Bills:
    GET    /api/users/{userID}/bills
    POST   /api/users/{userID}/bills
    GET    /api/users/{userID}/bills/{billID}
    PUT    /api/users/{userID}/bills/{billID}
    DELETE /api/users/{userID}/bills/{billID}

  Projection:
    GET    /api/users/{userID}/schedule?periods=N&today=YYYY-MM-DD
    GET    /api/users/{userID}/payday

ERROR HANDLING:
  - 400: malformed input (amounts, dates, frequencies)
  - 404: unknown user/bill
  - 500: store failures
  Incomplete pay settings are NOT an error: the schedule endpoint returns
  200 with an empty schedule and a reason string, so the UI renders a
  "complete your setup" prompt rather than a failure state.
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/icaruswings/Budgeto/paycycle"
	"github.com/icaruswings/Budgeto/store"
)

// defaultSchedulePeriods is how many allowance periods the schedule
// endpoint projects when the client does not say.
const defaultSchedulePeriods = 6

// maxSchedulePeriods caps a single projection request.
const maxSchedulePeriods = 104

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    store.Store
	Log      zerolog.Logger
	Location *time.Location

	// Now is injectable for tests.
	Now func() time.Time
}

// NewHandler creates a handler around the given store.
func NewHandler(st store.Store, log zerolog.Logger, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{Store: st, Log: log, Location: loc, Now: time.Now}
}

func (h *Handler) today() paycycle.TimePoint {
	return paycycle.TimePointOf(h.Now(), h.Location)
}

// =============================================================================
// PAY SETTINGS
// =============================================================================

// GetSettings returns the user's pay settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	settings, err := h.Store.GetPaySettings(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "pay settings not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load pay settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settingsToDTO(*settings))
}

// UpdateSettings upserts the user's pay settings. The desired amount is
// rederived on save; clients never supply it.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req UpdatePaySettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	settings := paycycle.PaySettings{UserID: userID, Email: req.Email}

	if req.ActualPayAmount != "" {
		amount, err := decimal.NewFromString(req.ActualPayAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid actual_pay_amount", err)
			return
		}
		settings.ActualPayAmount = amount
	}
	if req.ActualPayFrequency != "" {
		freq, err := paycycle.ParsePayFrequency(req.ActualPayFrequency)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid actual_pay_frequency", err)
			return
		}
		settings.ActualPayFrequency = freq
	}
	if req.ActualPayDayOfMonth != 0 {
		if req.ActualPayDayOfMonth < 1 || req.ActualPayDayOfMonth > 31 {
			writeError(w, http.StatusBadRequest, "actual_pay_day_of_month must be 1..31", nil)
			return
		}
		settings.ActualPayDayOfMonth = req.ActualPayDayOfMonth
	}
	if req.DesiredPayFrequency != "" {
		freq, err := paycycle.ParsePayFrequency(req.DesiredPayFrequency)
		if err != nil || freq == paycycle.Monthly {
			writeError(w, http.StatusBadRequest, "desired_pay_frequency must be weekly or fortnightly", err)
			return
		}
		settings.DesiredPayFrequency = freq
	}
	if req.DesiredPayDayOfWeek != "" {
		wd, ok := parseWeekday(req.DesiredPayDayOfWeek)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid desired_pay_day_of_week", nil)
			return
		}
		settings.DesiredPayDayOfWeek = &wd
	}
	if req.NextActualPayday != "" {
		tp, err := paycycle.ParseTimePoint(req.NextActualPayday)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid next_actual_payday, want YYYY-MM-DD", err)
			return
		}
		settings.NextActualPayday = &tp
	}

	if err := h.Store.SavePaySettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save pay settings", err)
		return
	}

	// Read back so the response carries the derived desired amount.
	saved, err := h.Store.GetPaySettings(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload pay settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settingsToDTO(*saved))
}

// =============================================================================
// BILLS
// =============================================================================

// ListBills returns all of a user's bills, active and inactive.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	bills, err := h.Store.ListBills(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bills", err)
		return
	}

	dtos := make([]BillDTO, len(bills))
	for i, b := range bills {
		dtos[i] = billToDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBill adds a bill for the user.
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	// A new bill's recurrence anchor is its creation day.
	bill, err := h.billFromRequest(userID, req.Name, req.Amount, req.Frequency, req.DueDate, req.DueDayOfMonth, req.Active, h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	created, err := h.Store.CreateBill(r.Context(), bill)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create bill", err)
		return
	}
	writeJSON(w, http.StatusCreated, billToDTO(created))
}

// GetBill returns a single bill.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	billID := chi.URLParam(r, "billID")

	bill, err := h.Store.GetBill(r.Context(), userID, billID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load bill", err)
		return
	}
	writeJSON(w, http.StatusOK, billToDTO(*bill))
}

// UpdateBill rewrites a bill's mutable fields.
func (h *Handler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	billID := chi.URLParam(r, "billID")

	var req UpdateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	// The existing record supplies the immutable recurrence anchor.
	existing, err := h.Store.GetBill(r.Context(), userID, billID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load bill", err)
		return
	}

	bill, err := h.billFromRequest(userID, req.Name, req.Amount, req.Frequency, req.DueDate, req.DueDayOfMonth, req.Active, existing.CreatedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	bill.ID = billID

	err = h.Store.UpdateBill(r.Context(), bill)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update bill", err)
		return
	}

	updated, err := h.Store.GetBill(r.Context(), userID, billID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload bill", err)
		return
	}
	writeJSON(w, http.StatusOK, billToDTO(*updated))
}

// DeleteBill removes a bill.
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	billID := chi.URLParam(r, "billID")

	err := h.Store.DeleteBill(r.Context(), userID, billID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "bill not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete bill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) billFromRequest(userID, name, amount, frequency, dueDate string, dueDay int, active *bool, anchor paycycle.TimePoint) (paycycle.Bill, error) {
	if name == "" {
		return paycycle.Bill{}, fmt.Errorf("bill name is required")
	}

	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return paycycle.Bill{}, fmt.Errorf("invalid amount")
	}

	freq, err := paycycle.ParseBillFrequency(frequency)
	if err != nil {
		return paycycle.Bill{}, fmt.Errorf("invalid frequency")
	}

	bill := paycycle.Bill{
		UserID:        userID,
		Name:          name,
		Amount:        parsedAmount,
		Frequency:     freq,
		DueDayOfMonth: dueDay,
		Active:        true,
		CreatedAt:     anchor,
	}
	if active != nil {
		bill.Active = *active
	}
	if dueDate != "" {
		tp, err := paycycle.ParseTimePoint(dueDate)
		if err != nil {
			return paycycle.Bill{}, fmt.Errorf("invalid due_date, want YYYY-MM-DD")
		}
		bill.DueDate = &tp
	}

	if err := bill.Validate(); err != nil {
		return paycycle.Bill{}, err
	}
	return bill, nil
}

// =============================================================================
// PROJECTION
// =============================================================================

// GetSchedule projects the user's forward allowance schedule. Computed on
// every request; nothing is persisted.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	periods := defaultSchedulePeriods
	if raw := r.URL.Query().Get("periods"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSchedulePeriods {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("periods must be 1..%d", maxSchedulePeriods), err)
			return
		}
		periods = n
	}

	today := h.today()
	if raw := r.URL.Query().Get("today"); raw != "" {
		tp, err := paycycle.ParseTimePoint(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid today, want YYYY-MM-DD", err)
			return
		}
		today = tp
	}

	settings, err := h.Store.GetPaySettings(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, ScheduleResponse{
			UserID: userID, Today: today.String(),
			Schedule: []ScheduleItemDTO{},
			Reason:   "pay settings not configured",
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load pay settings", err)
		return
	}

	bills, err := h.Store.ListBills(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bills", err)
		return
	}

	items := paycycle.GenerateSchedule(*settings, bills, today, periods, h.Log)
	resp := ScheduleResponse{
		UserID:   userID,
		Today:    today.String(),
		Schedule: make([]ScheduleItemDTO, len(items)),
	}
	for i, item := range items {
		resp.Schedule[i] = ScheduleItemDTO{
			AllowanceDate:   item.AllowanceDate.String(),
			AllowanceAmount: item.AllowanceAmount.StringFixed(2),
			BillsDue:        item.BillsDue.StringFixed(2),
			Leftover:        item.Leftover.StringFixed(2),
		}
	}
	if len(items) == 0 {
		resp.Reason = "complete your pay settings to generate a schedule"
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPayday returns the next actual and preferred paydays. Fields the
// configuration cannot support come back null.
func (h *Handler) GetPayday(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	settings, err := h.Store.GetPaySettings(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, PaydayResponse{})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load pay settings", err)
		return
	}

	today := h.today()
	var resp PaydayResponse

	if next, err := paycycle.NextActualPayday(today, settings.ActualPayDayOfMonth); err == nil {
		s := next.String()
		resp.NextActualPayday = &s
	}
	if settings.NextActualPayday != nil {
		s := settings.NextActualPayday.String()
		resp.NextActualPayday = &s
	}
	if settings.HasDesiredCycle() {
		preferred := paycycle.FirstPreferredPayday(settings.PaydayAnchor(today), *settings.DesiredPayDayOfWeek)
		s := preferred.String()
		resp.NextPreferredPayday = &s
		amount := settings.DesiredPayAmount.StringFixed(2)
		resp.DesiredPayAmount = &amount
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// =============================================================================
// DTO MAPPING
// =============================================================================

func settingsToDTO(s paycycle.PaySettings) PaySettingsDTO {
	dto := PaySettingsDTO{
		UserID:              s.UserID,
		Email:               s.Email,
		ActualPayAmount:     s.ActualPayAmount.String(),
		ActualPayFrequency:  string(s.ActualPayFrequency),
		ActualPayDayOfMonth: s.ActualPayDayOfMonth,
		DesiredPayFrequency: string(s.DesiredPayFrequency),
	}
	if s.DesiredPayDayOfWeek != nil {
		name := weekdayName(*s.DesiredPayDayOfWeek)
		dto.DesiredPayDayOfWeek = &name
	}
	if s.DesiredPayAmount != nil {
		amount := s.DesiredPayAmount.StringFixed(2)
		dto.DesiredPayAmount = &amount
	}
	if s.NextActualPayday != nil {
		date := s.NextActualPayday.String()
		dto.NextActualPayday = &date
	}
	return dto
}

func billToDTO(b paycycle.Bill) BillDTO {
	dto := BillDTO{
		ID:            b.ID,
		Name:          b.Name,
		Amount:        b.Amount.String(),
		Frequency:     string(b.Frequency),
		DueDayOfMonth: b.DueDayOfMonth,
		Active:        b.Active,
		CreatedAt:     b.CreatedAt.String(),
	}
	if b.DueDate != nil {
		date := b.DueDate.String()
		dto.DueDate = &date
	}
	return dto
}
