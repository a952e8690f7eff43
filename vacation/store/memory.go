/*
Package store provides an in-memory vacation.Store for tests.

PURPOSE:
  A mutex-guarded map implementation of the persistence interface with
  the exact same observable semantics as the SQLite store: listing
  order, partial-update behavior, timestamp stamping. Used by unit
  tests that do not want a database on disk or in memory.

NOT FOR PRODUCTION:
  No durability. Data lives as long as the process.

SEE ALSO:
  - store/sqlite: the production implementation
*/
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eigida/vacations/vacation"
)

// Memory implements vacation.Store with in-process maps.
type Memory struct {
	mu        sync.RWMutex
	vacations map[string]vacation.VacationRequest
	settings  map[string]string

	// Now is injectable so tests can pin timestamps. Defaults to time.Now.
	Now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		vacations: make(map[string]vacation.VacationRequest),
		settings:  make(map[string]string),
		Now:       time.Now,
	}
}

func (m *Memory) now() time.Time {
	return m.Now().UTC()
}

// CreateVacation inserts a new pending, unsigned record.
func (m *Memory) CreateVacation(ctx context.Context, in vacation.CreateInput) (*vacation.VacationRequest, error) {
	if err := vacation.ValidateCreate(&in); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	v := vacation.VacationRequest{
		ID:           uuid.NewString(),
		EmployeeName: in.EmployeeName,
		Department:   in.Department,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       vacation.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.vacations[v.ID] = v

	out := v
	return &out, nil
}

// ListVacations returns matching records in listing order.
func (m *Memory) ListVacations(ctx context.Context, filter vacation.ListFilter) ([]vacation.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []vacation.VacationRequest
	for _, v := range m.vacations {
		if filter.Department != nil && v.Department != *filter.Department {
			continue
		}
		if !filter.IncludeRejected && v.Status == vacation.StatusRejected {
			continue
		}
		records = append(records, v)
	}

	vacation.SortVacations(records)
	return records, nil
}

// GetVacationByID returns the record or vacation.ErrNotFound.
func (m *Memory) GetVacationByID(ctx context.Context, id string) (*vacation.VacationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vacations[id]
	if !ok {
		return nil, vacation.ErrNotFound
	}
	out := v
	return &out, nil
}

// UpdateVacation applies the provided fields only.
func (m *Memory) UpdateVacation(ctx context.Context, id string, u vacation.Update) (*vacation.VacationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vacations[id]
	if !ok {
		return nil, vacation.ErrNotFound
	}

	// Validate the resulting combined state before touching anything.
	start, end := v.StartDate, v.EndDate
	if u.StartDate != nil {
		start = *u.StartDate
	}
	if u.EndDate != nil {
		end = *u.EndDate
	}
	if err := vacation.ValidateDateOrder(start, end); err != nil {
		return nil, err
	}

	if u.EmployeeName != nil {
		v.EmployeeName = *u.EmployeeName
	}
	if u.Department != nil {
		v.Department = vacation.DepartmentOrDefault(string(*u.Department))
	}
	v.StartDate = start
	v.EndDate = end
	if u.Status != nil {
		v.Status = *u.Status
	}

	now := m.now()
	if u.SignedRequestReceived != nil {
		v.SignedRequestReceived = *u.SignedRequestReceived
		if *u.SignedRequestReceived {
			receivedAt := now
			v.SignedRequestReceivedAt = &receivedAt
		} else {
			v.SignedRequestReceivedAt = nil
		}
	}
	if u.ReminderSentAt != nil {
		sentAt := *u.ReminderSentAt
		v.ReminderSentAt = &sentAt
	}

	if !u.IsEmpty() {
		v.UpdatedAt = now
	}

	m.vacations[id] = v
	out := v
	return &out, nil
}

// GetSetting returns the stored value or "".
func (m *Memory) GetSetting(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[key], nil
}

// SetSetting inserts or replaces a value.
func (m *Memory) SetSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}
