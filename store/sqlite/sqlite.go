/*
Package sqlite provides the SQLite-backed implementation of vacation.Store.

PURPOSE:
  Persists vacation records and the settings key-value table (generated
  manager tokens) with plain parameterized SQL. In production the same
  patterns would apply to PostgreSQL - only dialect differences.

KEY TABLES:
  vacations: one row per request; status constrained by CHECK to the
             three known lifecycle values
  settings:  key-value pairs, currently one manager token per department

CONCURRENCY:
  Uses sync.RWMutex around the *sql.DB. Each HTTP request performs one
  short-lived statement, so row-level last-write-wins is sufficient;
  SQLite's WAL mode gives multiple readers and a single writer.

MIGRATION:
  Schema is auto-migrated on New(). The legacy deployment gained the
  signed-request columns over time; here the full schema is created up
  front, plus an additive migration for the reminder column so existing
  database files keep working.

USAGE:
  store, err := sqlite.New("./data/vacations.db")
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - vacation/store.go: interface definition and shared validation
  - vacation/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eigida/vacations/vacation"
)

// Store implements vacation.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; a second pooled
	// connection would see an empty schema.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetNowFunc overrides the clock used for stored timestamps (tests only).
func (s *Store) SetNowFunc(now func() time.Time) {
	s.now = now
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vacations (
		id TEXT PRIMARY KEY,
		employee_name TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT 'gamyba',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		signed_request_received INTEGER NOT NULL DEFAULT 0,
		signed_request_received_at TEXT,
		signed_request_reminder_sent_at TEXT,
		status TEXT NOT NULL CHECK(status IN ('pending', 'approved', 'rejected')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vacations_dates ON vacations (start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_vacations_status ON vacations (status);
	CREATE INDEX IF NOT EXISTS idx_vacations_department ON vacations (department);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Additive migration: database files created before the reminder
	// feature lack the column.
	hasReminderColumn, err := s.hasColumn("vacations", "signed_request_reminder_sent_at")
	if err != nil {
		return err
	}
	if !hasReminderColumn {
		if _, err := s.db.Exec(`ALTER TABLE vacations ADD COLUMN signed_request_reminder_sent_at TEXT`); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) hasColumn(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// =============================================================================
// VACATION RECORDS (vacation.Store interface)
// =============================================================================

const vacationColumns = `
	id, employee_name, department, start_date, end_date,
	signed_request_received, signed_request_received_at,
	signed_request_reminder_sent_at, status, created_at, updated_at`

// CreateVacation inserts a new pending, unsigned record.
func (s *Store) CreateVacation(ctx context.Context, in vacation.CreateInput) (*vacation.VacationRequest, error) {
	if err := vacation.ValidateCreate(&in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := s.now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vacations (
			id, employee_name, department, start_date, end_date,
			signed_request_received, signed_request_received_at,
			signed_request_reminder_sent_at, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, 0, NULL, NULL, ?, ?, ?)`,
		id, in.EmployeeName, in.Department, in.StartDate, in.EndDate,
		vacation.StatusPending, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vacation: %w", err)
	}

	return s.getByID(ctx, id)
}

// ListVacations returns records matching the filter in listing order.
func (s *Store) ListVacations(ctx context.Context, filter vacation.ListFilter) ([]vacation.VacationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conditions []string
	var args []any

	if filter.Department != nil {
		conditions = append(conditions, "department = ?")
		args = append(args, vacation.DepartmentOrDefault(string(*filter.Department)))
	}
	if !filter.IncludeRejected {
		conditions = append(conditions, "status != ?")
		args = append(args, vacation.StatusRejected)
	}

	whereSQL := ""
	if len(conditions) > 0 {
		whereSQL = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM vacations
		%s
		ORDER BY start_date ASC, employee_name COLLATE NOCASE ASC`,
		vacationColumns, whereSQL)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacations: %w", err)
	}
	defer rows.Close()

	var records []vacation.VacationRequest
	for rows.Next() {
		v, err := scanVacation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *v)
	}
	return records, rows.Err()
}

// GetVacationByID returns the record or vacation.ErrNotFound.
func (s *Store) GetVacationByID(ctx context.Context, id string) (*vacation.VacationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getByID(ctx, id)
}

func (s *Store) getByID(ctx context.Context, id string) (*vacation.VacationRequest, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s
		FROM vacations
		WHERE id = ?`, vacationColumns), id)

	v, err := scanVacation(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vacation: %w", err)
	}
	return v, nil
}

// UpdateVacation applies the provided fields only. The resulting date
// order is validated against the stored record, not just the delta.
func (s *Store) UpdateVacation(ctx context.Context, id string, u vacation.Update) (*vacation.VacationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end := existing.StartDate, existing.EndDate
	if u.StartDate != nil {
		start = *u.StartDate
	}
	if u.EndDate != nil {
		end = *u.EndDate
	}
	if err := vacation.ValidateDateOrder(start, end); err != nil {
		return nil, err
	}

	if u.IsEmpty() {
		return existing, nil
	}

	now := s.now().UTC()
	nowISO := now.Format(time.RFC3339)

	var sets []string
	var args []any

	if u.EmployeeName != nil {
		sets = append(sets, "employee_name = ?")
		args = append(args, *u.EmployeeName)
	}
	if u.Department != nil {
		sets = append(sets, "department = ?")
		args = append(args, vacation.DepartmentOrDefault(string(*u.Department)))
	}
	if u.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *u.StartDate)
	}
	if u.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, *u.EndDate)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if u.SignedRequestReceived != nil {
		sets = append(sets, "signed_request_received = ?", "signed_request_received_at = ?")
		if *u.SignedRequestReceived {
			args = append(args, 1, nowISO)
		} else {
			args = append(args, 0, nil)
		}
	}
	if u.ReminderSentAt != nil {
		sets = append(sets, "signed_request_reminder_sent_at = ?")
		args = append(args, u.ReminderSentAt.UTC().Format(time.RFC3339))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, nowISO, id)

	query := fmt.Sprintf(`UPDATE vacations SET %s WHERE id = ?`, strings.Join(sets, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update vacation: %w", err)
	}

	return s.getByID(ctx, id)
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSetting returns the stored value or "".
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// SetSetting inserts or replaces a value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// =============================================================================
// ROW SCANNING
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVacation(row rowScanner) (*vacation.VacationRequest, error) {
	var (
		v          vacation.VacationRequest
		department string
		status     string
		signed     int
		receivedAt sql.NullString
		reminderAt sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := row.Scan(
		&v.ID, &v.EmployeeName, &department, &v.StartDate, &v.EndDate,
		&signed, &receivedAt, &reminderAt, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Department = vacation.Department(department)
	v.Status = vacation.Status(status)
	v.SignedRequestReceived = signed == 1

	if receivedAt.Valid {
		t, err := time.Parse(time.RFC3339, receivedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad signed_request_received_at: %w", err)
		}
		v.SignedRequestReceivedAt = &t
	}
	if reminderAt.Valid {
		t, err := time.Parse(time.RFC3339, reminderAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad signed_request_reminder_sent_at: %w", err)
		}
		v.ReminderSentAt = &t
	}

	if v.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if v.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at: %w", err)
	}

	return &v, nil
}
