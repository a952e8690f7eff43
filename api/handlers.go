/*
handlers.go - HTTP handlers of the vacation planner API

PURPOSE:
  Exposes submissions, the Gantt schedule, and the manager console over
  REST. Handlers parse and validate raw input, delegate to the domain,
  and map domain errors to HTTP statuses with Lithuanian user messages.

ENDPOINTS:
  Public:
    GET  /api/health                    Liveness probe
    GET  /api/vacations                 List active records (?department=)
    POST /api/vacations                 Submit a vacation request
    GET  /api/schedule                  Gantt payload (?department=&anchor=&view=)

  Manager (token-gated, see server.go):
    GET   /api/manager/{department}/session
    GET   /api/manager/{department}/vacations
    PATCH /api/manager/{department}/vacations/{id}
    POST  /api/manager/{department}/vacations/{id}/approve
    POST  /api/manager/{department}/vacations/{id}/reject

ERROR HANDLING:
  Domain sentinels map to statuses in one place (httpError):
  - 400: validation failures, with a Lithuanian message
  - 401: missing/unknown manager token
  - 403: recognized manager lacking the required role
  - 404: unknown record, or a record outside the manager's department
  - 500: everything else

SEE ALSO:
  - dto.go: request/response types
  - server.go: router, CORS, manager auth middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eigida/vacations/auth"
	"github.com/eigida/vacations/calendar"
	"github.com/eigida/vacations/config"
	"github.com/eigida/vacations/vacation"
)

// Sweeper is the slice of the reminder scheduler the handlers need:
// a nudge to re-evaluate reminder candidates after a manager mutation.
type Sweeper interface {
	ScheduleSoon()
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies of the HTTP handlers.
type Handler struct {
	Store   vacation.Store
	Tokens  auth.TokenSet
	Sweeper Sweeper
	Log     *zap.Logger

	// Now is injectable so tests can pin "today". Defaults to time.Now.
	Now func() time.Time

	validate *validator.Validate
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(store vacation.Store, tokens auth.TokenSet, sweeper Sweeper, log *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		Tokens:   tokens,
		Sweeper:  sweeper,
		Log:      log,
		Now:      time.Now,
		validate: validator.New(),
	}
}

func (h *Handler) today() time.Time {
	return h.Now().UTC()
}

func (h *Handler) scheduleSweep() {
	if h.Sweeper != nil {
		h.Sweeper.ScheduleSoon()
	}
}

// =============================================================================
// PUBLIC ENDPOINTS
// =============================================================================

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListVacations returns active (non-rejected) records, optionally
// narrowed to one department.
func (h *Handler) ListVacations(w http.ResponseWriter, r *http.Request) {
	filter := vacation.ListFilter{}
	if raw := r.URL.Query().Get("department"); raw != "" {
		dept, ok := vacation.ParseDepartment(raw)
		if !ok {
			httpError(w, vacation.ErrInvalidDepartment)
			return
		}
		filter.Department = &dept
	}

	records, err := h.Store.ListVacations(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Nepavyko nuskaityti įrašų", err)
		return
	}

	writeJSON(w, http.StatusOK, toVacationDTOs(records, h.today()))
}

// CreateVacation accepts an employee submission. Every new record starts
// pending and unsigned.
func (h *Handler) CreateVacation(w http.ResponseWriter, r *http.Request) {
	var req CreateVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Neteisingas užklausos formatas", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Užpildykite visus privalomus laukus", err)
		return
	}
	if !calendar.IsValidDate(req.StartDate) || !calendar.IsValidDate(req.EndDate) {
		httpError(w, vacation.ErrInvalidDate)
		return
	}

	created, err := h.Store.CreateVacation(r.Context(), vacation.CreateInput{
		EmployeeName: req.EmployeeName,
		Department:   vacation.Department(req.Department),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		httpError(w, err)
		return
	}

	h.Log.Info("vacation request submitted",
		zap.String("id", created.ID),
		zap.String("department", string(created.Department)),
		zap.String("start", created.StartDate),
		zap.String("end", created.EndDate))

	writeJSON(w, http.StatusCreated, toVacationDTO(*created, h.today()))
}

// Schedule returns the Gantt payload for a department and visible window.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	dept := vacation.DepartmentOrDefault(q.Get("department"))
	mode := calendar.ParseViewMode(q.Get("view"))

	anchor := h.today()
	if raw := q.Get("anchor"); raw != "" {
		parsed, err := calendar.ParseDate(raw)
		if err != nil {
			httpError(w, vacation.ErrInvalidDate)
			return
		}
		anchor = parsed
	}

	rangeStart, rangeEnd := calendar.VisibleRange(anchor, mode)

	records, err := h.Store.ListVacations(r.Context(), vacation.ListFilter{Department: &dept})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Nepavyko nuskaityti įrašų", err)
		return
	}

	today := h.today()
	overlaps := vacation.OverlapCounts(records, rangeStart, rangeEnd)
	days := calendar.EnumerateDays(rangeStart, rangeEnd)

	dayDTOs := make([]DayDTO, len(days))
	for i, day := range days {
		dayDTOs[i] = DayDTO{
			Date:         calendar.FormatDate(day),
			Weekday:      day.Weekday().String(),
			IsWeekend:    calendar.IsWeekend(day),
			IsHoliday:    calendar.IsHoliday(day),
			OverlapCount: overlaps[i],
		}
	}

	rows := vacation.BuildRows(records, rangeStart, rangeEnd)
	rowDTOs := make([]RowDTO, len(rows))
	for i, row := range rows {
		bars := make([]BarDTO, len(row.Bars))
		for j, bar := range row.Bars {
			bars[j] = BarDTO{
				Vacation: toVacationDTO(bar.Vacation, today),
				Lane:     bar.Lane,
				Offset:   bar.Offset,
				Length:   bar.Length,
			}
		}
		rowDTOs[i] = RowDTO{EmployeeName: row.EmployeeName, LaneCount: row.LaneCount, Bars: bars}
	}

	writeJSON(w, http.StatusOK, ScheduleResponse{
		Department: string(dept),
		View:       string(mode),
		RangeStart: calendar.FormatDate(rangeStart),
		RangeEnd:   calendar.FormatDate(rangeEnd),
		Days:       dayDTOs,
		Rows:       rowDTOs,
	})
}

// =============================================================================
// MANAGER ENDPOINTS
// =============================================================================

// Session echoes the resolved manager grant so the frontend can adapt
// its controls to the caller's role.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	grant := grantFrom(r.Context())
	writeJSON(w, http.StatusOK, SessionDTO{
		Department:              string(grant.Department),
		ManagerDepartment:       string(grant.ManagerDepartment),
		Role:                    grant.Role,
		CanManageAllDepartments: grant.CanManageAllDepartments,
		CanEditSignedRequest:    grant.CanEditSignedRequest,
	})
}

// ManagerListVacations returns the records of the manager's department,
// together with the current signed-request reminders. Rejected records
// are hidden unless ?includeRejected= asks for them.
func (h *Handler) ManagerListVacations(w http.ResponseWriter, r *http.Request) {
	grant := grantFrom(r.Context())

	records, err := h.Store.ListVacations(r.Context(), vacation.ListFilter{
		Department:      &grant.Department,
		IncludeRejected: config.ParseBool(r.URL.Query().Get("includeRejected"), false),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Nepavyko nuskaityti įrašų", err)
		return
	}

	today := h.today()

	alerts := make([]AlertDTO, 0)
	for _, v := range records {
		if alert := vacation.SignedRequestAlert(v, today); alert != nil {
			alerts = append(alerts, AlertDTO{
				VacationID:     v.ID,
				EmployeeName:   v.EmployeeName,
				StartDate:      v.StartDate,
				Key:            alert.Key,
				Label:          alert.Label,
				DaysUntilStart: alert.DaysUntilStart,
			})
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysUntilStart < alerts[j].DaysUntilStart
	})

	writeJSON(w, http.StatusOK, ManagerVacationsResponse{
		Vacations: toVacationDTOs(records, today),
		Alerts:    alerts,
	})
}

// UpdateVacation applies a manager's partial edit to one record.
func (h *Handler) UpdateVacation(w http.ResponseWriter, r *http.Request) {
	grant := grantFrom(r.Context())

	var req UpdateVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Neteisingas užklausos formatas", err)
		return
	}

	update, err := buildUpdate(req, grant)
	if err != nil {
		httpError(w, err)
		return
	}

	h.applyScopedUpdate(w, r, grant, update)
}

// ApproveVacation marks one record approved.
func (h *Handler) ApproveVacation(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, vacation.StatusApproved)
}

// RejectVacation marks one record rejected. The record is kept, only
// hidden from default listings.
func (h *Handler) RejectVacation(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, vacation.StatusRejected)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status vacation.Status) {
	grant := grantFrom(r.Context())
	h.applyScopedUpdate(w, r, grant, vacation.Update{Status: &status})
}

// applyScopedUpdate verifies the record belongs to the department of the
// request path before mutating it. An out-of-scope record reads as not
// found so existence never leaks across departments.
func (h *Handler) applyScopedUpdate(w http.ResponseWriter, r *http.Request, grant auth.Grant, update vacation.Update) {
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetVacationByID(r.Context(), id)
	if err != nil {
		httpError(w, err)
		return
	}
	if existing.Department != grant.Department {
		httpError(w, vacation.ErrNotFound)
		return
	}

	updated, err := h.Store.UpdateVacation(r.Context(), id, update)
	if err != nil {
		httpError(w, err)
		return
	}

	h.Log.Info("vacation record updated",
		zap.String("id", updated.ID),
		zap.String("department", string(updated.Department)),
		zap.String("status", string(updated.Status)),
		zap.String("manager_role", string(grant.Role)))

	h.scheduleSweep()
	writeJSON(w, http.StatusOK, toVacationDTO(*updated, h.today()))
}

// buildUpdate validates a raw manager edit field by field and enforces
// the role gates: only the administration super role may change the
// signed-request flag or move a record across departments.
func buildUpdate(req UpdateVacationRequest, grant auth.Grant) (vacation.Update, error) {
	var update vacation.Update

	if req.EmployeeName != nil {
		name := vacation.SanitizeName(*req.EmployeeName)
		if name == "" {
			return vacation.Update{}, vacation.ErrEmptyName
		}
		update.EmployeeName = &name
	}

	if req.Department != nil {
		dept, ok := vacation.ParseDepartment(*req.Department)
		if !ok {
			return vacation.Update{}, vacation.ErrInvalidDepartment
		}
		if !grant.CanManageAllDepartments {
			return vacation.Update{}, vacation.ErrForbidden
		}
		update.Department = &dept
	}

	if req.StartDate != nil {
		if !calendar.IsValidDate(*req.StartDate) {
			return vacation.Update{}, vacation.ErrInvalidDate
		}
		update.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		if !calendar.IsValidDate(*req.EndDate) {
			return vacation.Update{}, vacation.ErrInvalidDate
		}
		update.EndDate = req.EndDate
	}

	if req.Status != nil {
		status, ok := vacation.ParseStatus(*req.Status)
		if !ok {
			return vacation.Update{}, vacation.ErrInvalidStatus
		}
		update.Status = &status
	}

	if req.SignedRequestReceived != nil {
		if !grant.CanEditSignedRequest {
			return vacation.Update{}, vacation.ErrForbidden
		}
		update.SignedRequestReceived = req.SignedRequestReceived
	}

	return update, nil
}

// =============================================================================
// ERROR MAPPING AND JSON HELPERS
// =============================================================================

// httpError maps domain sentinels to statuses and Lithuanian messages.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vacation.ErrNotFound):
		writeError(w, http.StatusNotFound, "Įrašas nerastas", nil)
	case errors.Is(err, vacation.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Neteisingas arba trūkstamas prieigos raktas", nil)
	case errors.Is(err, vacation.ErrForbidden):
		writeError(w, http.StatusForbidden, "Šiam veiksmui reikia administracijos teisių", nil)
	case errors.Is(err, vacation.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "Darbuotojo vardas yra privalomas", nil)
	case errors.Is(err, vacation.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "Neteisinga data, naudokite formatą YYYY-MM-DD", nil)
	case errors.Is(err, vacation.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, "Pabaigos data negali būti ankstesnė už pradžios datą", nil)
	case errors.Is(err, vacation.ErrInvalidDepartment):
		writeError(w, http.StatusBadRequest, "Neteisingas padalinys", nil)
	case errors.Is(err, vacation.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "Nežinomas statusas", nil)
	default:
		writeError(w, http.StatusInternalServerError, "Vidinė serverio klaida", err)
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
