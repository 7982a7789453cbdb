/*
Package sqlite provides a SQLite-backed person directory.

PURPOSE:
  Implements people.Store so the server can resolve taxpayers by id without
  a remote people service. Tax results are never stored here; the engine is
  stateless.

KEY TABLES:
  people: one row per taxpayer, single-table layout keyed by person_type
    amount         annual salary, hourly rate or turnover (decimal text)
    hours_worked   contractors only
    profession     self-employed only
    business_type  business owners only

MONEY:
  Amounts are stored as decimal text, never REAL, so values read back are
  exactly what was written.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. An in-memory database is pinned to
  one connection; every new connection to ":memory:" would otherwise open an
  empty database.

USAGE:
  store, err := sqlite.New("./data/taxengine.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  p, err := store.Get(ctx, 42)

SEE ALSO:
  - people/directory.go: Store interface
  - people/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/tax-engine/people"
	"github.com/warp/tax-engine/tax"
)

// Store implements people.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
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
	CREATE TABLE IF NOT EXISTS people (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		person_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		hours_worked INTEGER,
		profession TEXT,
		business_type TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_people_type
		ON people(person_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PEOPLE
// =============================================================================

// row is the flattened storage form of a person.
type row struct {
	ID           int64
	Name         string
	Email        sql.NullString
	PersonType   string
	Amount       string
	HoursWorked  sql.NullInt64
	Profession   sql.NullString
	BusinessType sql.NullString
}

func toRow(p tax.Person) (row, error) {
	id := p.Identification()
	r := row{
		ID:         id.ID,
		Name:       id.Name,
		Email:      nullString(id.Email),
		PersonType: string(p.Category()),
	}
	switch v := p.(type) {
	case tax.FullTimeEmployee:
		r.Amount = v.AnnualSalary.String()
	case tax.Contractor:
		r.Amount = v.HourlyRate.String()
		r.HoursWorked = sql.NullInt64{Int64: v.HoursWorked, Valid: true}
	case tax.SelfEmployed:
		r.Amount = v.AnnualTurnover.String()
		r.Profession = nullString(v.Profession)
	case tax.BusinessOwner:
		r.Amount = v.AnnualTurnover.String()
		r.BusinessType = nullString(v.BusinessType)
	default:
		return row{}, &tax.UnknownPersonVariantError{Category: p.Category()}
	}
	return r, nil
}

func (r row) toPerson() (tax.Person, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("person %d: corrupt amount %q: %w", r.ID, r.Amount, err)
	}
	id := tax.Identity{ID: r.ID, Name: r.Name, Email: r.Email.String}

	category, err := tax.ParseCategory(r.PersonType)
	if err != nil {
		return nil, fmt.Errorf("person %d: %w", r.ID, err)
	}
	switch category {
	case tax.CategoryFullTimeEmployee:
		return tax.FullTimeEmployee{Identity: id, AnnualSalary: amount}, nil
	case tax.CategoryContractor:
		return tax.Contractor{Identity: id, HourlyRate: amount, HoursWorked: r.HoursWorked.Int64}, nil
	case tax.CategorySelfEmployed:
		return tax.SelfEmployed{Identity: id, AnnualTurnover: amount, Profession: r.Profession.String}, nil
	case tax.CategoryBusinessOwner:
		return tax.BusinessOwner{Identity: id, AnnualTurnover: amount, BusinessType: r.BusinessType.String}, nil
	}
	return nil, &tax.UnknownPersonVariantError{Category: category}
}

// Save inserts or replaces a person. A zero id gets the next autoincrement id.
func (s *Store) Save(ctx context.Context, p tax.Person) (tax.Person, error) {
	if err := tax.Validate(p); err != nil {
		return nil, err
	}
	r, err := toRow(p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	var id any
	if r.ID != 0 {
		id = r.ID
	}

	query := `
		INSERT INTO people (id, name, email, person_type, amount, hours_worked, profession, business_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			person_type = excluded.person_type,
			amount = excluded.amount,
			hours_worked = excluded.hours_worked,
			profession = excluded.profession,
			business_type = excluded.business_type,
			updated_at = excluded.updated_at
	`
	res, err := s.db.ExecContext(ctx, query,
		id, r.Name, r.Email, r.PersonType, r.Amount,
		r.HoursWorked, r.Profession, r.BusinessType,
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save person: %w", err)
	}
	if r.ID == 0 {
		newID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		p = people.WithID(p, newID)
	}
	return p, nil
}

// Get retrieves a person by id.
func (s *Store) Get(ctx context.Context, id int64) (tax.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r row
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, person_type, amount, hours_worked, profession, business_type
		 FROM people WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Name, &r.Email, &r.PersonType, &r.Amount, &r.HoursWorked, &r.Profession, &r.BusinessType)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, &people.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return r.toPerson()
}

// List returns all people ordered by id.
func (s *Store) List(ctx context.Context) ([]tax.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, person_type, amount, hours_worked, profession, business_type
		 FROM people ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []tax.Person
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.PersonType, &r.Amount, &r.HoursWorked, &r.Profession, &r.BusinessType); err != nil {
			return nil, err
		}
		p, err := r.toPerson()
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Delete removes a person. A missing id yields a people.NotFoundError.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete person %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &people.NotFoundError{ID: id}
	}
	return nil
}

var _ people.Store = (*Store)(nil)

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
