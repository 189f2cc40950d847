/*
store.go - Persistence contract for booking records

PURPOSE:
  Interface between the booking engine and whatever persists bookings.
  The engine never touches a database handle; implementations live in
  store/sqlite (production) and store/memory.go (tests).

CONSISTENCY MODEL:
  Each mutating call is atomic at single-booking granularity. Concurrent
  updates to the same booking are last-write-wins at field granularity -
  an accepted trade-off, there is no optimistic-lock version check.
  Reads are point-in-time snapshots and require no locks.

LEGACY TOLERANCE:
  Implementations must match phone numbers and center ids persisted as
  either text or numeric, and must return the canonical text form (see
  identity.go).
*/
package booking

import "context"

// Store persists booking records.
type Store interface {
	// Insert persists a newly created booking.
	Insert(ctx context.Context, b Booking) error

	// Get returns the booking, or nil when no booking has that id.
	Get(ctx context.Context, id string) (*Booking, error)

	// UpdatePayment overwrites the three collected amounts, the derived
	// status, and the audit fields. Returns ErrNotFound for unknown ids.
	UpdatePayment(ctx context.Context, id string, att Attribution, status PaymentStatus, updatedBy string, updatedAt int64) error

	// SetPaymentStatus overwrites only the status label and audit fields,
	// leaving the collected amounts untouched. Returns ErrNotFound for
	// unknown ids.
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus, updatedBy string, updatedAt int64) error

	// MarkDone sets the fulfilment status to Done. Idempotent; returns
	// ErrNotFound only when the booking does not exist.
	MarkDone(ctx context.Context, id string) error

	// FindByPhone returns exact matches on the phone number, tolerating
	// legacy numeric storage.
	FindByPhone(ctx context.Context, phone string) ([]Booking, error)

	// FindByCenter returns the center's bookings newest-first, tolerating
	// legacy numeric center ids.
	FindByCenter(ctx context.Context, centerID string) ([]Booking, error)

	// FindByAgent returns the agent's bookings newest-first. Agents are
	// referenced by display name, not a stable key.
	FindByAgent(ctx context.Context, agentName string) ([]Booking, error)

	// List returns all bookings newest-first.
	List(ctx context.Context) ([]Booking, error)

	// ListCreatedBetween returns bookings whose creation time falls in
	// [start, end] inclusive, in no particular order.
	ListCreatedBetween(ctx context.Context, start, end int64) ([]Booking, error)
}
