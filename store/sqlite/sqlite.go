/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

INTERFACES IMPLEMENTED:
  booking.Store: booking records and their payment ledger fields
  catalog.Store: tests, centers, categories, prices, agents, credentials

LEGACY HETEROGENEITY:
  The bookings.mobile and bookings.center_id columns are declared
  without a type. SQLite then preserves whatever representation a row
  was written with, which is exactly the situation inherited from old
  data: the same phone or center id exists as INTEGER in old rows and
  TEXT in new ones. Lookups bind both representations and reads coerce
  to the canonical text form, so the ambiguity stops at this boundary.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around the single connection.
  Mutations touch exactly one row; same-row races are last-write-wins.

WAL MODE:
  SQLite is opened with WAL so readers do not block the single writer.

USAGE:
  store, err := sqlite.New("./data/sebooking.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - booking/store.go: Interface definition and consistency contract
  - catalog/catalog.go: Catalog records and contract
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sebooking/booking-engine/booking"
)

// Store implements booking.Store and catalog.Store using SQLite.
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
	-- Bookings: the payment ledger lives on the booking row itself.
	-- mobile and center_id are intentionally typeless so legacy INTEGER
	-- rows and current TEXT rows coexist.
	CREATE TABLE IF NOT EXISTS bookings (
		booking_id TEXT PRIMARY KEY,
		patient_name TEXT NOT NULL,
		mobile NOT NULL,
		center_id NOT NULL,
		test_id INTEGER NOT NULL,
		age INTEGER,
		gender TEXT,
		address TEXT,
		price TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		created_at INTEGER NOT NULL,
		booked_by TEXT NOT NULL DEFAULT 'Customer',
		agent_collected TEXT NOT NULL DEFAULT '0',
		center_collected TEXT NOT NULL DEFAULT '0',
		admin_collected TEXT NOT NULL DEFAULT '0',
		payment_status TEXT NOT NULL DEFAULT 'Unpaid',
		payment_updated_by TEXT,
		payment_updated_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_created_at
		ON bookings(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_bookings_mobile
		ON bookings(mobile);
	CREATE INDEX IF NOT EXISTS idx_bookings_center
		ON bookings(center_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_bookings_booked_by
		ON bookings(booked_by, created_at DESC);

	-- Catalog reference data.
	CREATE TABLE IF NOT EXISTS centers (
		id INTEGER PRIMARY KEY,
		center_name TEXT NOT NULL,
		address TEXT NOT NULL,
		lat REAL,
		lng REAL,
		timings_json TEXT NOT NULL DEFAULT '[]',
		enabled BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS tests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category_id INTEGER NOT NULL,
		test_name TEXT NOT NULL UNIQUE
	);

	CREATE INDEX IF NOT EXISTS idx_tests_category
		ON tests(category_id);

	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS prices (
		center_id INTEGER NOT NULL,
		test_id INTEGER NOT NULL,
		price TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (center_id, test_id)
	);

	CREATE INDEX IF NOT EXISTS idx_prices_test
		ON prices(test_id);

	CREATE TABLE IF NOT EXISTS agents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS admins (
		username TEXT PRIMARY KEY,
		password TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS center_users (
		center_id INTEGER PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	);

	-- Single-row home banner, keyed like the legacy document.
	CREATE TABLE IF NOT EXISTS notices (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL DEFAULT '',
		enabled BOOLEAN NOT NULL DEFAULT FALSE
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BOOKING STORE (booking.Store interface)
// =============================================================================

const bookingColumns = `booking_id, patient_name, mobile, center_id, test_id,
	age, gender, address, price, status, created_at, booked_by,
	agent_collected, center_collected, admin_collected,
	payment_status, payment_updated_by, payment_updated_at`

// Insert persists a newly created booking.
func (s *Store) Insert(ctx context.Context, b booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		b.ID,
		b.PatientName,
		b.Mobile,
		b.CenterID,
		b.TestID,
		nullInt(int64(b.Age)),
		nullString(b.Gender),
		nullString(b.Address),
		b.Price.String(),
		string(b.Status),
		b.CreatedAt,
		b.BookedBy,
		b.AgentCollected.String(),
		b.CenterCollected.String(),
		b.AdminCollected.String(),
		string(b.PaymentStatus),
		nullString(b.PaymentUpdatedBy),
		nullInt(b.PaymentUpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("%w: insert booking: %v", booking.ErrStore, err)
	}
	return nil
}

// Get returns the booking, or nil when no booking has that id.
func (s *Store) Get(ctx context.Context, id string) (*booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_id = ?`, id)

	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get booking: %v", booking.ErrStore, err)
	}
	return &b, nil
}

// UpdatePayment overwrites the ledger fields of one booking.
func (s *Store) UpdatePayment(ctx context.Context, id string, att booking.Attribution, status booking.PaymentStatus, updatedBy string, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET agent_collected = ?, center_collected = ?, admin_collected = ?,
		    payment_status = ?, payment_updated_by = ?, payment_updated_at = ?
		WHERE booking_id = ?`,
		att.Agent.String(),
		att.Center.String(),
		att.Admin.String(),
		string(status),
		updatedBy,
		updatedAt,
		id,
	)
	return oneRowOrNotFound(res, err, "update payment")
}

// SetPaymentStatus overwrites only the status label and audit fields.
func (s *Store) SetPaymentStatus(ctx context.Context, id string, status booking.PaymentStatus, updatedBy string, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET payment_status = ?, payment_updated_by = ?, payment_updated_at = ?
		WHERE booking_id = ?`,
		string(status), updatedBy, updatedAt, id,
	)
	return oneRowOrNotFound(res, err, "set payment status")
}

// MarkDone sets the fulfilment status to Done. Re-marking an already
// Done booking still matches the row, so the call stays idempotent.
func (s *Store) MarkDone(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE booking_id = ?`,
		string(booking.StatusDone), id,
	)
	return oneRowOrNotFound(res, err, "mark done")
}

// FindByPhone matches the phone stored as TEXT, and as INTEGER when the
// query is numeric (legacy rows).
func (s *Store) FindByPhone(ctx context.Context, phone string) ([]booking.Booking, error) {
	phone = booking.CanonicalPhone(phone)
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE mobile = ?`
	args := []any{phone}
	if booking.IsDigits(phone) {
		if n, err := strconv.ParseInt(phone, 10, 64); err == nil {
			query += ` OR mobile = ?`
			args = append(args, n)
		}
	}
	return s.queryBookings(ctx, query, args...)
}

// FindByCenter matches both center id representations, newest-first.
func (s *Store) FindByCenter(ctx context.Context, centerID string) ([]booking.Booking, error) {
	key := booking.CanonicalID(centerID)
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE (center_id = ?`
	args := []any{key}
	if booking.IsDigits(key) {
		if n, err := strconv.ParseInt(key, 10, 64); err == nil {
			query += ` OR center_id = ?`
			args = append(args, n)
		}
	}
	query += `) ORDER BY created_at DESC, rowid DESC`
	return s.queryBookings(ctx, query, args...)
}

// FindByAgent returns the agent's bookings newest-first.
func (s *Store) FindByAgent(ctx context.Context, agentName string) ([]booking.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE booked_by = ? ORDER BY created_at DESC, rowid DESC`,
		agentName,
	)
}

// List returns all bookings newest-first.
func (s *Store) List(ctx context.Context) ([]booking.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 ORDER BY created_at DESC, rowid DESC`,
	)
}

// ListCreatedBetween returns bookings created in [start, end] inclusive.
func (s *Store) ListCreatedBetween(ctx context.Context, start, end int64) ([]booking.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE created_at >= ? AND created_at <= ?`,
		start, end,
	)
}

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query bookings: %v", booking.ErrStore, err)
	}
	defer rows.Close()

	var out []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan booking: %v", booking.ErrStore, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query bookings: %v", booking.ErrStore, err)
	}
	return out, nil
}

// =============================================================================
// SCANNING & COERCION
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

// scanBooking reads one row, coercing the typeless legacy columns
// (mobile, center_id, the money columns) into canonical forms.
func scanBooking(row rowScanner) (booking.Booking, error) {
	var (
		b                           booking.Booking
		mobile, centerID            any
		price, agent, center, admin any
		age                         sql.NullInt64
		gender, address             sql.NullString
		updatedBy                   sql.NullString
		updatedAt                   sql.NullInt64
	)

	err := row.Scan(
		&b.ID, &b.PatientName, &mobile, &centerID, &b.TestID,
		&age, &gender, &address, &price, &b.Status, &b.CreatedAt, &b.BookedBy,
		&agent, &center, &admin,
		&b.PaymentStatus, &updatedBy, &updatedAt,
	)
	if err != nil {
		return booking.Booking{}, err
	}

	b.Mobile = booking.CanonicalID(mobile)
	b.CenterID = booking.CanonicalID(centerID)
	b.Age = int(age.Int64)
	b.Gender = gender.String
	b.Address = address.String
	b.PaymentUpdatedBy = updatedBy.String
	b.PaymentUpdatedAt = updatedAt.Int64

	if b.Price, err = moneyFromColumn(price); err != nil {
		return booking.Booking{}, fmt.Errorf("price: %v", err)
	}
	if b.AgentCollected, err = moneyFromColumn(agent); err != nil {
		return booking.Booking{}, fmt.Errorf("agent_collected: %v", err)
	}
	if b.CenterCollected, err = moneyFromColumn(center); err != nil {
		return booking.Booking{}, fmt.Errorf("center_collected: %v", err)
	}
	if b.AdminCollected, err = moneyFromColumn(admin); err != nil {
		return booking.Booking{}, fmt.Errorf("admin_collected: %v", err)
	}
	return b, nil
}

// moneyFromColumn accepts the representations a money column can carry:
// decimal TEXT written by this store, REAL or INTEGER from legacy rows,
// NULL from rows that predate the ledger fields.
func moneyFromColumn(v any) (booking.Money, error) {
	switch x := v.(type) {
	case nil:
		return booking.ZeroMoney(), nil
	case string:
		if x == "" {
			return booking.ZeroMoney(), nil
		}
		return booking.ParseMoney(x)
	case []byte:
		return moneyFromColumn(string(x))
	case int64:
		return booking.ParseMoney(strconv.FormatInt(x, 10))
	case float64:
		return booking.NewMoney(x), nil
	default:
		return booking.ZeroMoney(), fmt.Errorf("unsupported column type %T", v)
	}
}

// oneRowOrNotFound maps a single-row UPDATE result to the error contract.
func oneRowOrNotFound(res sql.Result, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", booking.ErrStore, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", booking.ErrStore, op, err)
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}
