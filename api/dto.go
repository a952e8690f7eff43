/*
dto.go - Request and response types of the HTTP API

PURPOSE:
  Defines the JSON structures exchanged with the frontend. These types
  decouple the domain model from the wire contract: dates travel as
  YYYY-MM-DD strings, timestamps as RFC 3339, and every record carries
  its derived display status so clients never re-implement that logic.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Create bodies carry validator tags for the required-field checks;
  everything with domain meaning (date format, department membership,
  date order) is validated in the handlers so the error messages stay
  uniform.

SEE ALSO:
  - handlers.go: uses these types
  - vacation/status.go: the StatusView and Alert sources
*/
package api

import (
	"time"

	"github.com/eigida/vacations/auth"
	"github.com/eigida/vacations/vacation"
)

// =============================================================================
// VACATION RECORDS
// =============================================================================

// StatusViewDTO is the derived display status of a record.
type StatusViewDTO struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// VacationDTO represents one vacation record in API responses.
type VacationDTO struct {
	ID           string `json:"id"`
	EmployeeName string `json:"employee_name"`
	Department   string `json:"department"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Status       string `json:"status"`

	SignedRequestReceived   bool    `json:"signed_request_received"`
	SignedRequestReceivedAt *string `json:"signed_request_received_at,omitempty"`
	ReminderSentAt          *string `json:"reminder_sent_at,omitempty"`

	StatusView StatusViewDTO `json:"status_view"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateVacationRequest is the employee-facing submission body.
type CreateVacationRequest struct {
	EmployeeName string `json:"employee_name" validate:"required"`
	Department   string `json:"department"`
	StartDate    string `json:"start_date" validate:"required"`
	EndDate      string `json:"end_date" validate:"required"`
}

// UpdateVacationRequest is the manager-facing partial update body.
// Absent fields are left unchanged.
type UpdateVacationRequest struct {
	EmployeeName          *string `json:"employee_name"`
	Department            *string `json:"department"`
	StartDate             *string `json:"start_date"`
	EndDate               *string `json:"end_date"`
	Status                *string `json:"status"`
	SignedRequestReceived *bool   `json:"signed_request_received"`
}

// =============================================================================
// MANAGER VIEW
// =============================================================================

// SessionDTO describes the authenticated manager session.
type SessionDTO struct {
	Department              string    `json:"department"`
	ManagerDepartment       string    `json:"manager_department"`
	Role                    auth.Role `json:"role"`
	CanManageAllDepartments bool      `json:"can_manage_all_departments"`
	CanEditSignedRequest    bool      `json:"can_edit_signed_request"`
}

// AlertDTO is one signed-request reminder entry in the manager view.
type AlertDTO struct {
	VacationID     string `json:"vacation_id"`
	EmployeeName   string `json:"employee_name"`
	StartDate      string `json:"start_date"`
	Key            string `json:"key"`
	Label          string `json:"label"`
	DaysUntilStart int    `json:"days_until_start"`
}

// ManagerVacationsResponse is the manager listing: every record of the
// department (rejected included) plus the current reminder entries.
type ManagerVacationsResponse struct {
	Vacations []VacationDTO `json:"vacations"`
	Alerts    []AlertDTO    `json:"alerts"`
}

// =============================================================================
// SCHEDULE VIEW
// =============================================================================

// DayDTO is one visible calendar day with its shading metadata and the
// number of people away on it.
type DayDTO struct {
	Date         string `json:"date"`
	Weekday      string `json:"weekday"`
	IsWeekend    bool   `json:"is_weekend"`
	IsHoliday    bool   `json:"is_holiday"`
	OverlapCount int    `json:"overlap_count"`
}

// BarDTO is one visible vacation segment within the window.
type BarDTO struct {
	Vacation VacationDTO `json:"vacation"`
	Lane     int         `json:"lane"`
	Offset   int         `json:"offset"`
	Length   int         `json:"length"`
}

// RowDTO is one employee's lane-stacked bars.
type RowDTO struct {
	EmployeeName string   `json:"employee_name"`
	LaneCount    int      `json:"lane_count"`
	Bars         []BarDTO `json:"bars"`
}

// ScheduleResponse is the full Gantt payload for a department and window.
type ScheduleResponse struct {
	Department string   `json:"department"`
	View       string   `json:"view"`
	RangeStart string   `json:"range_start"`
	RangeEnd   string   `json:"range_end"`
	Days       []DayDTO `json:"days"`
	Rows       []RowDTO `json:"rows"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func toVacationDTO(v vacation.VacationRequest, today time.Time) VacationDTO {
	view := vacation.Classify(v, today)
	return VacationDTO{
		ID:                      v.ID,
		EmployeeName:            v.EmployeeName,
		Department:              string(v.Department),
		StartDate:               v.StartDate,
		EndDate:                 v.EndDate,
		Status:                  string(v.Status),
		SignedRequestReceived:   v.SignedRequestReceived,
		SignedRequestReceivedAt: formatTimePtr(v.SignedRequestReceivedAt),
		ReminderSentAt:          formatTimePtr(v.ReminderSentAt),
		StatusView:              StatusViewDTO{Key: view.Key, Label: view.Label},
		CreatedAt:               v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:               v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toVacationDTOs(records []vacation.VacationRequest, today time.Time) []VacationDTO {
	dtos := make([]VacationDTO, len(records))
	for i, v := range records {
		dtos[i] = toVacationDTO(v, today)
	}
	return dtos
}
