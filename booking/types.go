/*
Package booking contains the booking payment ledger and status engine.

PURPOSE:
  This package owns the Booking entity and everything with a real
  invariant attached to it: money collected per party must reconcile
  against the quoted price, and the payment status must be derivable
  deterministically from that partial, multi-party attribution.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: an exact decimal currency amount (never float math)
  - Booking: one patient's reservation of a test at a center, carrying
    its own payment ledger and fulfilment state
  - Attribution: the split of collected money across agent/center/admin
  - PaymentStatus / Status: derived payment label and fulfilment state

DESIGN PRINCIPLES:
  1. Precision: uses decimal.Decimal to avoid floating-point errors
  2. Immutability of patient fields: set at creation, never rewritten
  3. The quoted price is fixed at creation and never recomputed from
     the catalog afterward

SEE ALSO:
  - attribution.go: Status derivation and creation-time attribution
  - service.go: The booking record store contract
  - aggregate.go: Per-center revenue rollups
*/
package booking

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact decimal currency amount
// =============================================================================

// Money is an exact currency amount. All ledger arithmetic goes through
// this type; float64 appears only at the JSON boundary.
type Money struct {
	decimal.Decimal
}

// NewMoney creates a Money from a float (the JSON boundary representation).
func NewMoney(v float64) Money {
	return Money{decimal.NewFromFloat(v)}
}

// ParseMoney parses a decimal string as persisted by the store.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// ZeroMoney is the additive identity.
func ZeroMoney() Money {
	return Money{decimal.Zero}
}

func (m Money) Add(o Money) Money { return Money{m.Decimal.Add(o.Decimal)} }
func (m Money) Sub(o Money) Money { return Money{m.Decimal.Sub(o.Decimal)} }

// Float64 converts to the JSON boundary representation.
func (m Money) Float64() float64 {
	f, _ := m.Decimal.Float64()
	return f
}

// =============================================================================
// STATUS ENUMS
// =============================================================================

// PaymentStatus is the derived payment label.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "Unpaid"
	PaymentPartial PaymentStatus = "Partial"
	PaymentPaid    PaymentStatus = "Paid"
)

// Status is the fulfilment state. It is monotonic: Done never reverts.
type Status string

const (
	StatusPending Status = "Pending"
	StatusDone    Status = "Done"
)

// Reserved booked_by actors. Any other value names a referring agent.
const (
	BookedByCustomer = "Customer"
	BookedByCenter   = "Center"
)

// =============================================================================
// BOOKING - The central entity
// =============================================================================

// Booking is one patient's reservation of a diagnostic test at a center.
//
// Identifier and phone fields hold the canonical text form; legacy records
// persisted them as either numeric or text, and the store normalizes on
// read (see identity.go).
type Booking struct {
	ID          string
	PatientName string
	Mobile      string
	CenterID    string
	TestID      int64

	// Optional patient details, immutable after creation.
	Age     int
	Gender  string
	Address string

	// Price is quoted at creation and never recomputed from the catalog.
	Price Money

	Status    Status
	CreatedAt int64 // epoch seconds
	BookedBy  string

	// Payment ledger.
	AgentCollected  Money
	CenterCollected Money
	AdminCollected  Money
	PaymentStatus   PaymentStatus

	PaymentUpdatedBy string // empty until the first payment event
	PaymentUpdatedAt int64  // epoch seconds, zero until the first payment event
}

// Collected returns the attribution currently recorded on the booking.
func (b *Booking) Collected() Attribution {
	return Attribution{
		Agent:  b.AgentCollected,
		Center: b.CenterCollected,
		Admin:  b.AdminCollected,
	}
}
