/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists everything the engine consumes but does not own: policy
  definitions, the holiday calendar, and the raw shifts recorded for each
  employee. Derived numbers (evaluations, totals) are never stored.

INTERFACES IMPLEMENTED:
  generic.ShiftStore:      Raw shifts keyed by (entity, date)
  generic.HolidayCalendar: Company and global holidays

KEY TABLES:
  shifts:   One raw tuple per entity and date; a correction replaces it
  policies: Policy definitions as factory JSON (versioned)
  holidays: Company-specific and global holidays, optionally recurring

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite allows a single writer; the
  mutex keeps readers from seeing a half-applied write.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/overtime.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  oracle := generic.CalendarOracle{Calendar: store, CompanyID: "acme"}

SEE ALSO:
  - generic/store.go: ShiftStore interface
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/overtime-engine/generic"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ generic.ShiftStore      = (*Store)(nil)
	_ generic.HolidayCalendar = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Raw shifts, one per entity and day
	CREATE TABLE IF NOT EXISTS shifts (
		entity_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		break TEXT NOT NULL DEFAULT '',
		net TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (entity_id, date)
	);

	-- Policies
	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Holidays (company-specific and global)
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_company_date
		ON holidays(company_id, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(company_id, date, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SHIFT STORE (generic.ShiftStore interface)
// =============================================================================

// Put inserts or replaces the shift for (EntityID, Date).
func (s *Store) Put(ctx context.Context, sh generic.StoredShift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO shifts (entity_id, date, start_time, end_time, break, net, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id, date) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			break = excluded.break,
			net = excluded.net,
			source = excluded.source,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(sh.EntityID), sh.Date.String(),
		sh.Start, sh.End, sh.Break, sh.Net, sh.Source,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Get returns the shift for one date.
func (s *Store) Get(ctx context.Context, entityID generic.EntityID, date generic.TimePoint) (generic.StoredShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT entity_id, date, start_time, end_time, break, net, source FROM shifts WHERE entity_id = ? AND date = ?",
		string(entityID), date.String(),
	)
	sh, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.StoredShift{}, fmt.Errorf("shift %s on %s: %w", entityID, date, generic.ErrNotFound)
	}
	return sh, err
}

// Range returns shifts in [from, to] ordered by date.
func (s *Store) Range(ctx context.Context, entityID generic.EntityID, from, to generic.TimePoint) ([]generic.StoredShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_id, date, start_time, end_time, break, net, source
		FROM shifts
		WHERE entity_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		string(entityID), from.String(), to.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []generic.StoredShift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

// Delete removes the shift for one date.
func (s *Store) Delete(ctx context.Context, entityID generic.EntityID, date generic.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE entity_id = ? AND date = ?", string(entityID), date.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shift %s on %s: %w", entityID, date, generic.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShift(row scanner) (generic.StoredShift, error) {
	var (
		sh       generic.StoredShift
		entityID string
		dateStr  string
	)
	if err := row.Scan(&entityID, &dateStr, &sh.Start, &sh.End, &sh.Break, &sh.Net, &sh.Source); err != nil {
		return generic.StoredShift{}, err
	}
	date, err := generic.ParseDate(dateStr)
	if err != nil {
		return generic.StoredShift{}, fmt.Errorf("stored shift date %q: %w", dateStr, err)
	}
	sh.EntityID = generic.EntityID(entityID)
	sh.Date = date
	return sh, nil
}

// =============================================================================
// POLICY STORE
// =============================================================================

// PolicyRecord is a stored policy with its JSON config.
type PolicyRecord struct {
	ID         string
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SavePolicy saves a policy record. Saving an existing ID bumps its version.
func (s *Store) SavePolicy(ctx context.Context, policy PolicyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO policies (id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = policies.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query, policy.ID, policy.Name, policy.ConfigJSON, now, now)
	return err
}

// GetPolicy retrieves a policy by ID.
func (s *Store) GetPolicy(ctx context.Context, id string) (*PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p PolicyRecord
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM policies WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.ConfigJSON, &p.Version, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("policy %s: %w", id, generic.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// ListPolicies returns all policies.
func (s *Store) ListPolicies(ctx context.Context) ([]PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM policies ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []PolicyRecord
	for rows.Next() {
		var p PolicyRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.ConfigJSON, &p.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// =============================================================================
// HOLIDAY CALENDAR IMPLEMENTATION
// =============================================================================

// SaveHoliday saves a holiday, assigning an ID when it has none. Saving the
// same company, date and name again only updates the recurring flag.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) (generic.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	query := `
		INSERT INTO holidays (id, company_id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_id, date, name) DO UPDATE SET
			recurring = excluded.recurring
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		h.ID, h.CompanyID, h.Date.String(), h.Name, h.Recurring,
		time.Now().UTC().Format(time.RFC3339),
	).Scan(&h.ID)
	return h, err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("holiday %s: %w", id, generic.ErrNotFound)
	}
	return nil
}

// GetHolidays returns all holidays for a company in a given year, global
// ones included. Recurring holidays are moved into the requested year.
func (s *Store) GetHolidays(companyID string, year int) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, date, name, recurring
		FROM holidays
		WHERE (company_id = ? OR company_id = '')
		  AND (recurring = TRUE OR strftime('%Y', date) = ?)
	`

	rows, err := s.db.Query(query, companyID, fmt.Sprintf("%04d", year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays, err := scanHolidays(rows)
	if err != nil {
		return nil, err
	}
	for i, h := range holidays {
		if h.Recurring {
			holidays[i].Date = generic.NewTimePoint(year, h.Date.Month(), h.Date.Day())
		}
	}
	sortHolidays(holidays)
	return holidays, nil
}

// IsHoliday checks if a date is a holiday for the given company.
func (s *Store) IsHoliday(companyID string, date generic.TimePoint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT COUNT(*) FROM holidays
		WHERE (company_id = ? OR company_id = '')
		  AND (
			(recurring = FALSE AND date = ?)
			OR (recurring = TRUE AND strftime('%m-%d', date) = ?)
		  )
	`

	var count int
	err := s.db.QueryRow(query, companyID, date.String(), date.Time.Format("01-02")).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("holiday lookup: %w", err)
	}
	return count > 0, nil
}

// ListHolidays returns every holiday visible to a company (for admin UI).
func (s *Store) ListHolidays(ctx context.Context, companyID string) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, date, name, recurring
		FROM holidays
		WHERE company_id = ? OR company_id = ''
		ORDER BY date ASC`,
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHolidays(rows)
}

func scanHolidays(rows *sql.Rows) ([]generic.Holiday, error) {
	var holidays []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &h.CompanyID, &dateStr, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		date, err := generic.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("stored holiday date %q: %w", dateStr, err)
		}
		h.Date = date
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func sortHolidays(hs []generic.Holiday) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"shifts", "policies", "holidays"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
