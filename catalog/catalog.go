/*
Package catalog owns the reference data surrounding bookings: tests,
categories, centers, the center+test price matrix, agents, credential
records, and the home notice banner.

The booking engine consumes this package read-only, through name
resolution; the write surface exists for the admin back-office. There is
no real invariant here beyond duplicate checks - it is plain relational
CRUD, kept separate so the ledger core stays small.

Credentials are plain username/password equality lookups. No hashing,
no sessions, no tokens - historical records hold plaintext and cannot be
backfilled.
*/
package catalog

import (
	"context"
	"errors"

	"github.com/sebooking/booking-engine/booking"
)

var (
	// ErrNotFound is returned when an update targets a record that does
	// not exist.
	ErrNotFound = errors.New("catalog record not found")

	// ErrExists is returned when a create collides with an existing
	// name or username.
	ErrExists = errors.New("catalog record already exists")
)

// =============================================================================
// RECORDS
// =============================================================================

// Center is a partner diagnostic center.
type Center struct {
	ID      int64
	Name    string
	Address string
	Lat     *float64
	Lng     *float64
	Timings []string
	// Enabled gates visibility to customers; disabled centers stay
	// reachable for staff views.
	Enabled bool
}

// Test is a diagnostic test within a category.
type Test struct {
	ID         int64
	CategoryID int64
	Name       string
}

// Category groups tests for the customer-facing picker.
type Category struct {
	ID   int64
	Name string
}

// Agent is a referring agent. Bookings reference agents only by display
// name, a legacy denormalization that cannot be backfilled.
type Agent struct {
	ID        int64
	Name      string
	Username  string
	Password  string
	CreatedAt int64
}

// CenterUser is a center-staff credential pair.
type CenterUser struct {
	CenterID int64
	Username string
	Password string
}

// Notice is the single home-page banner row.
type Notice struct {
	Text    string
	Enabled bool
}

// Offer is a center that performs a given test, with its quoted price.
type Offer struct {
	CenterID   int64
	CenterName string
	Address    string
	Lat        *float64
	Lng        *float64
	Timings    []string
	Price      booking.Money
}

// PricingRow is one line of the admin pricing matrix: every test, with
// the center's price assignment if any.
type PricingRow struct {
	TestID     int64
	TestName   string
	CategoryID int64
	Price      *booking.Money
	Enabled    bool
}

// =============================================================================
// STORE CONTRACT
// =============================================================================

// Store persists catalog records. The sqlite implementation backs both
// this and booking.Store with the same handle.
type Store interface {
	// Notice banner. SaveNotice upserts the single row.
	Notice(ctx context.Context) (Notice, error)
	SaveNotice(ctx context.Context, n Notice) error

	// Tests and categories.
	Tests(ctx context.Context) ([]Test, error)
	TestsByCategory(ctx context.Context, categoryID int64) ([]Test, error)
	AddTest(ctx context.Context, categoryID int64, name string) (int64, error)
	RenameTest(ctx context.Context, id int64, name string) error
	Categories(ctx context.Context) ([]Category, error)
	AddCategory(ctx context.Context, name string) (int64, error)

	// Centers.
	Centers(ctx context.Context) ([]Center, error)
	Center(ctx context.Context, id int64) (*Center, error)
	AddCenter(ctx context.Context, c Center) error
	UpdateCenter(ctx context.Context, c Center) error
	SetCenterEnabled(ctx context.Context, id int64, enabled bool) error

	// Price matrix.
	SetPrice(ctx context.Context, centerID, testID int64, amount booking.Money, enabled bool) error
	OffersForTest(ctx context.Context, testID int64) ([]Offer, error)
	PricingMatrix(ctx context.Context, centerID int64) ([]PricingRow, error)

	// Credentials: plain equality lookups, nil on mismatch.
	CheckAdmin(ctx context.Context, username, password string) (bool, error)
	CenterUserByCredentials(ctx context.Context, username, password string) (*CenterUser, error)
	CenterUsers(ctx context.Context) ([]CenterUser, error)
	CreateCenterUser(ctx context.Context, u CenterUser) error
	UpdateCenterUser(ctx context.Context, u CenterUser) error

	// Agents.
	Agents(ctx context.Context) ([]Agent, error)
	AgentByCredentials(ctx context.Context, username, password string) (*Agent, error)
	AddAgent(ctx context.Context, name, username, password string) (int64, error)
	UpdateAgent(ctx context.Context, id int64, name, username, password string) error

	// Name resolution for booking views and the revenue report. The key
	// is the canonical text form of a legacy center id.
	CenterName(ctx context.Context, key string) (string, bool)
	TestName(ctx context.Context, id int64) (string, bool)
}
