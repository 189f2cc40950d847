/*
catalog.go - SQLite implementation of the catalog store

Plain relational CRUD for the reference data around bookings. Duplicate
checks run as an existence query before the insert, mirroring how the
legacy system guarded its collections.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sebooking/booking-engine/booking"
	"github.com/sebooking/booking-engine/catalog"
)

// noticeKey matches the legacy single-document id.
const noticeKey = "home_notice"

// =============================================================================
// NOTICE
// =============================================================================

// Notice returns the home banner; a missing row reads as empty/disabled.
func (s *Store) Notice(ctx context.Context) (catalog.Notice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n catalog.Notice
	err := s.db.QueryRowContext(ctx,
		`SELECT text, enabled FROM notices WHERE id = ?`, noticeKey,
	).Scan(&n.Text, &n.Enabled)
	if err == sql.ErrNoRows {
		return catalog.Notice{}, nil
	}
	if err != nil {
		return catalog.Notice{}, fmt.Errorf("get notice: %w", err)
	}
	return n, nil
}

// SaveNotice upserts the single banner row.
func (s *Store) SaveNotice(ctx context.Context, n catalog.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notices (id, text, enabled) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET text = excluded.text, enabled = excluded.enabled`,
		noticeKey, n.Text, n.Enabled,
	)
	if err != nil {
		return fmt.Errorf("save notice: %w", err)
	}
	return nil
}

// =============================================================================
// TESTS & CATEGORIES
// =============================================================================

func (s *Store) Tests(ctx context.Context) ([]catalog.Test, error) {
	return s.queryTests(ctx, `SELECT id, category_id, test_name FROM tests ORDER BY id`)
}

func (s *Store) TestsByCategory(ctx context.Context, categoryID int64) ([]catalog.Test, error) {
	return s.queryTests(ctx,
		`SELECT id, category_id, test_name FROM tests WHERE category_id = ? ORDER BY id`,
		categoryID,
	)
}

func (s *Store) queryTests(ctx context.Context, query string, args ...any) ([]catalog.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tests: %w", err)
	}
	defer rows.Close()

	var out []catalog.Test
	for rows.Next() {
		var t catalog.Test
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan test: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AddTest creates a test with a store-generated id. Duplicate names
// are rejected with catalog.ErrExists.
func (s *Store) AddTest(ctx context.Context, categoryID int64, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exists, err := s.exists(ctx, `SELECT 1 FROM tests WHERE test_name = ?`, name); err != nil {
		return 0, err
	} else if exists {
		return 0, catalog.ErrExists
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tests (category_id, test_name) VALUES (?, ?)`,
		categoryID, name,
	)
	if err != nil {
		return 0, fmt.Errorf("add test: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) RenameTest(ctx context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE tests SET test_name = ? WHERE id = ?`, name, id)
	return catalogUpdateResult(res, err, "rename test")
}

func (s *Store) Categories(ctx context.Context) ([]catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) AddCategory(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exists, err := s.exists(ctx, `SELECT 1 FROM categories WHERE name = ?`, name); err != nil {
		return 0, err
	} else if exists {
		return 0, catalog.ErrExists
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("add category: %w", err)
	}
	return res.LastInsertId()
}

// =============================================================================
// CENTERS
// =============================================================================

const centerColumns = `id, center_name, address, lat, lng, timings_json, enabled`

func (s *Store) Centers(ctx context.Context) ([]catalog.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+centerColumns+` FROM centers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query centers: %w", err)
	}
	defer rows.Close()

	var out []catalog.Center
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Center(ctx context.Context, id int64) (*catalog.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+centerColumns+` FROM centers WHERE id = ?`, id)
	c, err := scanCenter(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddCenter creates a center with the caller-supplied id (center ids are
// assigned by the back-office, not generated).
func (s *Store) AddCenter(ctx context.Context, c catalog.Center) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exists, err := s.exists(ctx, `SELECT 1 FROM centers WHERE id = ?`, c.ID); err != nil {
		return err
	} else if exists {
		return catalog.ErrExists
	}

	timings, _ := json.Marshal(orEmpty(c.Timings))
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO centers (id, center_name, address, lat, lng, timings_json, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Address, c.Lat, c.Lng, string(timings), c.Enabled,
	)
	if err != nil {
		return fmt.Errorf("add center: %w", err)
	}
	return nil
}

// UpdateCenter rewrites the display fields. Lat/Lng stay untouched when
// nil; timings stay untouched when nil (an empty slice clears them).
func (s *Store) UpdateCenter(ctx context.Context, c catalog.Center) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `UPDATE centers SET center_name = ?, address = ?`
	args := []any{c.Name, c.Address}
	if c.Lat != nil {
		query += `, lat = ?`
		args = append(args, *c.Lat)
	}
	if c.Lng != nil {
		query += `, lng = ?`
		args = append(args, *c.Lng)
	}
	if c.Timings != nil {
		timings, _ := json.Marshal(c.Timings)
		query += `, timings_json = ?`
		args = append(args, string(timings))
	}
	query += ` WHERE id = ?`
	args = append(args, c.ID)

	res, err := s.db.ExecContext(ctx, query, args...)
	return catalogUpdateResult(res, err, "update center")
}

func (s *Store) SetCenterEnabled(ctx context.Context, id int64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE centers SET enabled = ? WHERE id = ?`, enabled, id)
	return catalogUpdateResult(res, err, "toggle center")
}

func scanCenter(row rowScanner) (catalog.Center, error) {
	var (
		c        catalog.Center
		lat, lng sql.NullFloat64
		timings  string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &lat, &lng, &timings, &c.Enabled); err != nil {
		return catalog.Center{}, err
	}
	if lat.Valid {
		c.Lat = &lat.Float64
	}
	if lng.Valid {
		c.Lng = &lng.Float64
	}
	if err := json.Unmarshal([]byte(timings), &c.Timings); err != nil {
		c.Timings = nil
	}
	return c, nil
}

// =============================================================================
// PRICE MATRIX
// =============================================================================

// SetPrice upserts the (center, test) price assignment.
func (s *Store) SetPrice(ctx context.Context, centerID, testID int64, amount booking.Money, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prices (center_id, test_id, price, enabled) VALUES (?, ?, ?, ?)
		ON CONFLICT(center_id, test_id) DO UPDATE SET price = excluded.price, enabled = excluded.enabled`,
		centerID, testID, amount.String(), enabled,
	)
	if err != nil {
		return fmt.Errorf("set price: %w", err)
	}
	return nil
}

// OffersForTest returns enabled price rows joined to enabled centers,
// the customer-facing "where can I get this test" view.
func (s *Store) OffersForTest(ctx context.Context, testID int64) ([]catalog.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.center_name, c.address, c.lat, c.lng, c.timings_json, p.price
		FROM prices p
		JOIN centers c ON c.id = p.center_id
		WHERE p.test_id = ? AND p.enabled AND c.enabled
		ORDER BY c.id`,
		testID,
	)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var out []catalog.Offer
	for rows.Next() {
		var (
			o        catalog.Offer
			lat, lng sql.NullFloat64
			timings  string
			price    any
		)
		if err := rows.Scan(&o.CenterID, &o.CenterName, &o.Address, &lat, &lng, &timings, &price); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		if lat.Valid {
			o.Lat = &lat.Float64
		}
		if lng.Valid {
			o.Lng = &lng.Float64
		}
		if err := json.Unmarshal([]byte(timings), &o.Timings); err != nil {
			o.Timings = nil
		}
		if o.Price, err = moneyFromColumn(price); err != nil {
			return nil, fmt.Errorf("offer price: %v", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// PricingMatrix returns every test with the center's price assignment,
// if any. Legacy rows may hold the center id as TEXT, so the join
// matches both representations.
func (s *Store) PricingMatrix(ctx context.Context, centerID int64) ([]catalog.PricingRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.test_name, t.category_id, p.price, p.enabled
		FROM tests t
		LEFT JOIN prices p
			ON p.test_id = t.id AND (p.center_id = ? OR p.center_id = ?)
		ORDER BY t.id`,
		centerID, strconv.FormatInt(centerID, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("query pricing: %w", err)
	}
	defer rows.Close()

	var out []catalog.PricingRow
	for rows.Next() {
		var (
			r       catalog.PricingRow
			price   any
			enabled sql.NullBool
		)
		if err := rows.Scan(&r.TestID, &r.TestName, &r.CategoryID, &price, &enabled); err != nil {
			return nil, fmt.Errorf("scan pricing row: %w", err)
		}
		if price != nil {
			m, err := moneyFromColumn(price)
			if err != nil {
				return nil, fmt.Errorf("pricing row price: %v", err)
			}
			r.Price = &m
		}
		r.Enabled = enabled.Valid && enabled.Bool
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// CREDENTIALS & AGENTS
// =============================================================================

// CheckAdmin is a plain equality lookup against the admins table.
func (s *Store) CheckAdmin(ctx context.Context, username, password string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists(ctx,
		`SELECT 1 FROM admins WHERE username = ? AND password = ?`,
		username, password)
}

// EnsureAdmin seeds an admin credential if the username is absent. Used
// by the entry point for first-run bootstrap.
func (s *Store) EnsureAdmin(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO admins (username, password) VALUES (?, ?)`,
		username, password)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	return nil
}

func (s *Store) CenterUserByCredentials(ctx context.Context, username, password string) (*catalog.CenterUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u catalog.CenterUser
	err := s.db.QueryRowContext(ctx,
		`SELECT center_id, username, password FROM center_users
		 WHERE username = ? AND password = ?`,
		username, password,
	).Scan(&u.CenterID, &u.Username, &u.Password)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("center user lookup: %w", err)
	}
	return &u, nil
}

func (s *Store) CenterUsers(ctx context.Context) ([]catalog.CenterUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT center_id, username, password FROM center_users ORDER BY center_id`)
	if err != nil {
		return nil, fmt.Errorf("query center users: %w", err)
	}
	defer rows.Close()

	var out []catalog.CenterUser
	for rows.Next() {
		var u catalog.CenterUser
		if err := rows.Scan(&u.CenterID, &u.Username, &u.Password); err != nil {
			return nil, fmt.Errorf("scan center user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) CreateCenterUser(ctx context.Context, u catalog.CenterUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exists, err := s.exists(ctx, `SELECT 1 FROM center_users WHERE username = ?`, u.Username); err != nil {
		return err
	} else if exists {
		return catalog.ErrExists
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO center_users (center_id, username, password) VALUES (?, ?, ?)`,
		u.CenterID, u.Username, u.Password)
	if err != nil {
		return fmt.Errorf("create center user: %w", err)
	}
	return nil
}

func (s *Store) UpdateCenterUser(ctx context.Context, u catalog.CenterUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE center_users SET username = ?, password = ? WHERE center_id = ?`,
		u.Username, u.Password, u.CenterID)
	return catalogUpdateResult(res, err, "update center user")
}

func (s *Store) Agents(ctx context.Context) ([]catalog.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, username, password, created_at FROM agents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer rows.Close()

	var out []catalog.Agent
	for rows.Next() {
		var a catalog.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Username, &a.Password, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) AgentByCredentials(ctx context.Context, username, password string) (*catalog.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a catalog.Agent
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, username, password, created_at FROM agents
		 WHERE username = ? AND password = ?`,
		username, password,
	).Scan(&a.ID, &a.Name, &a.Username, &a.Password, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("agent lookup: %w", err)
	}
	return &a, nil
}

func (s *Store) AddAgent(ctx context.Context, name, username, password string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exists, err := s.exists(ctx, `SELECT 1 FROM agents WHERE username = ?`, username); err != nil {
		return 0, err
	} else if exists {
		return 0, catalog.ErrExists
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (name, username, password, created_at) VALUES (?, ?, ?, ?)`,
		name, username, password, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("add agent: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) UpdateAgent(ctx context.Context, id int64, name, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE agents SET name = ?, username = ?, password = ? WHERE id = ?`,
		name, username, password, id)
	return catalogUpdateResult(res, err, "update agent")
}

// =============================================================================
// NAME RESOLUTION
// =============================================================================

// CenterName resolves a canonical center key to its display name. A
// non-numeric key cannot reference a center row.
func (s *Store) CenterName(ctx context.Context, key string) (string, bool) {
	if !booking.IsDigits(key) {
		return "", false
	}
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	if err := s.db.QueryRowContext(ctx,
		`SELECT center_name FROM centers WHERE id = ?`, id).Scan(&name); err != nil {
		return "", false
	}
	return name, true
}

// TestName resolves a test id to its display name.
func (s *Store) TestName(ctx context.Context, id int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	if err := s.db.QueryRowContext(ctx,
		`SELECT test_name FROM tests WHERE id = ?`, id).Scan(&name); err != nil {
		return "", false
	}
	return name, true
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return true, nil
}

func catalogUpdateResult(res sql.Result, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
