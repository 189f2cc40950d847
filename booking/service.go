/*
service.go - The booking record store contract

PURPOSE:
  Stateless request-facing operations over a Store: create a booking
  (running initial attribution exactly once), apply payment updates,
  mark fulfilment, and serve point lookups. Invoked concurrently by many
  independent callers; the only shared state is the Store itself.

ERROR CONTRACT:
  Create fails with a ValidationError when price, test id, or center id
  is missing, non-numeric, or negative. Non-numeric center ids exist in
  old stored rows and are tolerated on read, but never accepted on
  create. Mutations on unknown ids fail
  with ErrNotFound. Store failures propagate unwrapped and unretried.
*/
package booking

import (
	"context"
	"time"
)

// CreateInput carries the fields accepted at booking creation.
type CreateInput struct {
	PatientName string
	Mobile      string
	CenterID    string
	TestID      int64
	Price       Money

	// Optional patient details.
	Age     int
	Gender  string
	Address string

	// BookedBy is the originating actor: "Customer", "Center", or an
	// agent display name. Defaults to "Customer".
	BookedBy string

	// PaidAmount is the money collected at booking time, attributed per
	// AttributeInitial.
	PaidAmount Money

	// DeclaredPaymentStatus carries the legacy request field: "Paid"
	// with a zero paid amount means collected in full.
	DeclaredPaymentStatus string
}

// PaymentUpdate carries a partial payment update. Nil fields retain the
// booking's stored value.
type PaymentUpdate struct {
	Agent     *Money
	Center    *Money
	Admin     *Money
	UpdatedBy string
}

// Service implements the booking record store operations over a Store.
type Service struct {
	store Store

	// Injected for deterministic tests.
	now   func() time.Time
	newID func(time.Time) string
}

// NewService creates a Service over the given store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: NewID,
	}
}

// Create validates the input, runs the one-shot initial attribution, and
// persists the booking. Returns the generated booking id.
func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	if in.PatientName == "" {
		return "", NewValidationError("name", "required")
	}
	mobile := CanonicalPhone(in.Mobile)
	if mobile == "" {
		return "", NewValidationError("mobile", "required")
	}
	centerID := CanonicalID(in.CenterID)
	if centerID == "" {
		return "", NewValidationError("center_id", "required")
	}
	if !IsDigits(centerID) {
		return "", NewValidationError("center_id", "must be numeric")
	}
	if in.TestID <= 0 {
		return "", NewValidationError("test_id", "required")
	}
	if in.Price.IsNegative() {
		return "", NewValidationError("price", "must not be negative")
	}
	if in.PaidAmount.IsNegative() {
		return "", NewValidationError("paid_amount", "must not be negative")
	}

	bookedBy := in.BookedBy
	if bookedBy == "" {
		bookedBy = BookedByCustomer
	}

	// Legacy shortcut: a declared "Paid" with no amount means the full
	// price was collected.
	paid := in.PaidAmount
	if in.DeclaredPaymentStatus == string(PaymentPaid) && paid.IsZero() {
		paid = in.Price
	}

	att := AttributeInitial(bookedBy, paid)
	status := DeriveStatus(in.Price, att)

	now := s.now()
	b := Booking{
		ID:              s.newID(now),
		PatientName:     in.PatientName,
		Mobile:          mobile,
		CenterID:        centerID,
		TestID:          in.TestID,
		Age:             in.Age,
		Gender:          in.Gender,
		Address:         in.Address,
		Price:           in.Price,
		Status:          StatusPending,
		CreatedAt:       now.Unix(),
		BookedBy:        bookedBy,
		AgentCollected:  att.Agent,
		CenterCollected: att.Center,
		AdminCollected:  att.Admin,
		PaymentStatus:   status,
	}
	if att.Total().Sign() > 0 {
		b.PaymentUpdatedBy = bookedBy
		b.PaymentUpdatedAt = now.Unix()
	}

	if err := s.store.Insert(ctx, b); err != nil {
		return "", err
	}
	return b.ID, nil
}

// UpdatePayment merges the supplied amounts over the booking's stored
// attribution, re-derives the status, and persists the result. Returns
// the new status.
//
// Omitted fields are retained; supplied fields overwrite directly with
// no attribution inference. Same-booking races are last-write-wins.
func (s *Service) UpdatePayment(ctx context.Context, id string, upd PaymentUpdate) (PaymentStatus, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if b == nil {
		return "", ErrNotFound
	}

	att := b.Collected()
	if upd.Agent != nil {
		att.Agent = *upd.Agent
	}
	if upd.Center != nil {
		att.Center = *upd.Center
	}
	if upd.Admin != nil {
		att.Admin = *upd.Admin
	}
	if err := att.Validate(); err != nil {
		return "", err
	}

	status := DeriveStatus(b.Price, att)

	updatedBy := upd.UpdatedBy
	if updatedBy == "" {
		updatedBy = "Admin"
	}

	if err := s.store.UpdatePayment(ctx, id, att, status, updatedBy, s.now().Unix()); err != nil {
		return "", err
	}
	return status, nil
}

// SetPaymentStatus overwrites the payment status label directly, without
// touching the collected amounts. Legacy center/admin surface: the label
// and the ledger can disagree until the next payment update recomputes.
func (s *Service) SetPaymentStatus(ctx context.Context, id string, status PaymentStatus, updatedBy string) error {
	switch status {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
	default:
		return NewValidationError("payment_status", "unknown status")
	}
	if updatedBy == "" {
		updatedBy = BookedByCenter
	}
	return s.store.SetPaymentStatus(ctx, id, status, updatedBy, s.now().Unix())
}

// MarkFulfilled transitions the booking to Done. Idempotent: re-marking
// an already-Done booking succeeds silently.
func (s *Service) MarkFulfilled(ctx context.Context, id string) error {
	return s.store.MarkDone(ctx, id)
}

// FindByPhone returns the phone's bookings, matching legacy numeric and
// text representations.
func (s *Service) FindByPhone(ctx context.Context, phone string) ([]Booking, error) {
	phone = CanonicalPhone(phone)
	if phone == "" {
		return nil, NewValidationError("mobile", "required")
	}
	return s.store.FindByPhone(ctx, phone)
}

// FindByCenter returns the center's bookings newest-first.
func (s *Service) FindByCenter(ctx context.Context, centerID string) ([]Booking, error) {
	centerID = CanonicalID(centerID)
	if centerID == "" {
		return nil, NewValidationError("center_id", "required")
	}
	return s.store.FindByCenter(ctx, centerID)
}

// FindByAgent returns the agent's bookings newest-first.
func (s *Service) FindByAgent(ctx context.Context, agentName string) ([]Booking, error) {
	if agentName == "" {
		return nil, NewValidationError("agent_name", "required")
	}
	return s.store.FindByAgent(ctx, agentName)
}

// List returns all bookings newest-first.
func (s *Service) List(ctx context.Context) ([]Booking, error) {
	return s.store.List(ctx)
}
