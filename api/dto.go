/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the engine types.
  Amounts travel as strings so clients never see float drift; dates as
  2006-01-02; weekdays and frequencies as lowercase names.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Done in handlers; DTOs are pure data carriers.
*/
package api

import (
	"strings"
	"time"
)

// =============================================================================
// PAY SETTINGS
// =============================================================================

// PaySettingsDTO mirrors paycycle.PaySettings. Derived and optional fields
// come back as null when unset so the UI can render its "N/A" state.
type PaySettingsDTO struct {
	UserID              string  `json:"user_id"`
	Email               string  `json:"email,omitempty"`
	ActualPayAmount     string  `json:"actual_pay_amount"`
	ActualPayFrequency  string  `json:"actual_pay_frequency"`
	ActualPayDayOfMonth int     `json:"actual_pay_day_of_month,omitempty"`
	DesiredPayFrequency string  `json:"desired_pay_frequency,omitempty"`
	DesiredPayDayOfWeek *string `json:"desired_pay_day_of_week"`
	DesiredPayAmount    *string `json:"desired_pay_amount"`
	NextActualPayday    *string `json:"next_actual_payday"`
}

// UpdatePaySettingsRequest upserts a user's settings.
type UpdatePaySettingsRequest struct {
	Email               string `json:"email"`
	ActualPayAmount     string `json:"actual_pay_amount"`
	ActualPayFrequency  string `json:"actual_pay_frequency"`
	ActualPayDayOfMonth int    `json:"actual_pay_day_of_month"`
	DesiredPayFrequency string `json:"desired_pay_frequency"`
	DesiredPayDayOfWeek string `json:"desired_pay_day_of_week"`
	NextActualPayday    string `json:"next_actual_payday"`
}

// =============================================================================
// BILLS
// =============================================================================

type BillDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Amount        string  `json:"amount"`
	Frequency     string  `json:"frequency"`
	DueDate       *string `json:"due_date"`
	DueDayOfMonth int     `json:"due_day_of_month,omitempty"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"created_at"`
}

type CreateBillRequest struct {
	Name          string `json:"name"`
	Amount        string `json:"amount"`
	Frequency     string `json:"frequency"`
	DueDate       string `json:"due_date"`
	DueDayOfMonth int    `json:"due_day_of_month"`
	Active        *bool  `json:"active"` // defaults to true
}

type UpdateBillRequest struct {
	Name          string `json:"name"`
	Amount        string `json:"amount"`
	Frequency     string `json:"frequency"`
	DueDate       string `json:"due_date"`
	DueDayOfMonth int    `json:"due_day_of_month"`
	Active        *bool  `json:"active"`
}

// =============================================================================
// SCHEDULE
// =============================================================================

type ScheduleItemDTO struct {
	AllowanceDate   string `json:"allowance_date"`
	AllowanceAmount string `json:"allowance_amount"`
	BillsDue        string `json:"bills_due"`
	Leftover        string `json:"leftover"`
}

// ScheduleResponse always carries a schedule array; Reason explains an empty
// one ("complete your pay settings"), so incomplete setup is a state, not an
// error.
type ScheduleResponse struct {
	UserID   string            `json:"user_id"`
	Today    string            `json:"today"`
	Schedule []ScheduleItemDTO `json:"schedule"`
	Reason   string            `json:"reason,omitempty"`
}

type PaydayResponse struct {
	NextActualPayday    *string `json:"next_actual_payday"`
	NextPreferredPayday *string `json:"next_preferred_payday"`
	DesiredPayAmount    *string `json:"desired_pay_amount"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// WEEKDAY NAMES
// =============================================================================

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}

func weekdayName(w time.Weekday) string {
	return strings.ToLower(w.String())
}
