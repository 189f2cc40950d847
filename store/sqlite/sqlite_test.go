package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebooking/booking-engine/booking"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBooking(id string, createdAt int64) booking.Booking {
	return booking.Booking{
		ID:              id,
		PatientName:     "Ramesh Kumar",
		Mobile:          "9876543210",
		CenterID:        "7",
		TestID:          3,
		Age:             42,
		Gender:          "Male",
		Address:         "12 MG Road",
		Price:           booking.NewMoney(500),
		Status:          booking.StatusPending,
		CreatedAt:       createdAt,
		BookedBy:        booking.BookedByCustomer,
		AgentCollected:  booking.ZeroMoney(),
		CenterCollected: booking.ZeroMoney(),
		AdminCollected:  booking.ZeroMoney(),
		PaymentStatus:   booking.PaymentUnpaid,
	}
}

// insertLegacyRow writes a booking row the way the old system did: mobile
// and center_id as INTEGER, money as REAL, no ledger audit fields.
func insertLegacyRow(t *testing.T, s *Store, id string, mobile, centerID int64, createdAt int64, price float64) {
	t.Helper()
	_, err := s.db.Exec(`
		INSERT INTO bookings (booking_id, patient_name, mobile, center_id, test_id,
			price, status, created_at, booked_by, payment_status)
		VALUES (?, ?, ?, ?, 1, ?, 'Pending', ?, 'Customer', 'Unpaid')`,
		id, "Legacy Patient", mobile, centerID, price, createdAt,
	)
	require.NoError(t, err)
}

// =============================================================================
// BOOKING ROUND TRIP
// =============================================================================

func TestInsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleBooking("BKG100-aaaa1111", 100)
	require.NoError(t, s.Insert(ctx, want))

	got, err := s.Get(ctx, want.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.PatientName, got.PatientName)
	assert.Equal(t, "9876543210", got.Mobile)
	assert.Equal(t, "7", got.CenterID)
	assert.Equal(t, int64(3), got.TestID)
	assert.Equal(t, 42, got.Age)
	assert.True(t, got.Price.Equal(booking.NewMoney(500).Decimal))
	assert.Equal(t, booking.PaymentUnpaid, got.PaymentStatus)
	assert.Empty(t, got.PaymentUpdatedBy)
}

func TestGet_Missing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get(context.Background(), "BKG0-missing")
	require.NoError(t, err)
	assert.Nil(t, got, "a missing booking reads as nil, nil")
}

func TestScan_LegacyRow(t *testing.T) {
	// GIVEN: a row written by the old system with numeric mobile and
	// center id, REAL price, and no ledger fields
	s := newTestStore(t)
	insertLegacyRow(t, s, "BKG50-legacy01", 9876543210, 7, 50, 250.5)

	got, err := s.Get(context.Background(), "BKG50-legacy01")
	require.NoError(t, err)
	require.NotNil(t, got)

	// THEN: everything comes back in canonical form
	assert.Equal(t, "9876543210", got.Mobile)
	assert.Equal(t, "7", got.CenterID)
	assert.True(t, got.Price.Equal(booking.NewMoney(250.5).Decimal))
	assert.True(t, got.AgentCollected.IsZero(), "absent ledger fields read as zero")
}

// =============================================================================
// LOOKUPS ACROSS REPRESENTATIONS
// =============================================================================

func TestFindByPhone_MatchesBothRepresentations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleBooking("BKG100-text0001", 100)))
	insertLegacyRow(t, s, "BKG50-int00001", 9876543210, 7, 50, 100)

	got, err := s.FindByPhone(ctx, "9876543210")
	require.NoError(t, err)
	assert.Len(t, got, 2, "TEXT and INTEGER rows must both match")
}

func TestFindByCenter_MatchesBothRepresentations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleBooking("BKG200-text0001", 200)))
	insertLegacyRow(t, s, "BKG100-int00001", 9000000001, 7, 100, 100)
	insertLegacyRow(t, s, "BKG150-other001", 9000000002, 8, 150, 100)

	got, err := s.FindByCenter(ctx, "7")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest-first.
	assert.Equal(t, "BKG200-text0001", got[0].ID)
	assert.Equal(t, "BKG100-int00001", got[1].ID)
}

func TestFindByAgent_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b1 := sampleBooking("BKG100-agent001", 100)
	b1.BookedBy = "AgentA"
	b2 := sampleBooking("BKG200-agent002", 200)
	b2.BookedBy = "AgentA"
	b3 := sampleBooking("BKG150-other001", 150)
	require.NoError(t, s.Insert(ctx, b1))
	require.NoError(t, s.Insert(ctx, b2))
	require.NoError(t, s.Insert(ctx, b3))

	got, err := s.FindByAgent(ctx, "AgentA")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BKG200-agent002", got[0].ID)
	assert.Equal(t, "BKG100-agent001", got[1].ID)
}

func TestListCreatedBetween_Inclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleBooking("BKG100-a", 100)))
	require.NoError(t, s.Insert(ctx, sampleBooking("BKG200-b", 200)))
	require.NoError(t, s.Insert(ctx, sampleBooking("BKG300-c", 300)))

	got, err := s.ListCreatedBetween(ctx, 100, 200)
	require.NoError(t, err)
	assert.Len(t, got, 2, "window bounds are inclusive")
}

// =============================================================================
// MUTATIONS
// =============================================================================

func TestUpdatePayment_PersistsLedger(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleBooking("BKG100-pay0001", 100)))

	att := booking.Attribution{
		Agent:  booking.ZeroMoney(),
		Center: booking.NewMoney(200),
		Admin:  booking.NewMoney(300),
	}
	err := s.UpdatePayment(ctx, "BKG100-pay0001", att, booking.PaymentPaid, "Admin", 123)
	require.NoError(t, err)

	got, err := s.Get(ctx, "BKG100-pay0001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CenterCollected.Equal(booking.NewMoney(200).Decimal))
	assert.True(t, got.AdminCollected.Equal(booking.NewMoney(300).Decimal))
	assert.Equal(t, booking.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, "Admin", got.PaymentUpdatedBy)
	assert.Equal(t, int64(123), got.PaymentUpdatedAt)
}

func TestUpdatePayment_Missing(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdatePayment(context.Background(), "BKG0-missing",
		booking.Attribution{}, booking.PaymentPaid, "Admin", 1)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestMarkDone_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleBooking("BKG100-done001", 100)))

	require.NoError(t, s.MarkDone(ctx, "BKG100-done001"))
	require.NoError(t, s.MarkDone(ctx, "BKG100-done001"))

	got, _ := s.Get(ctx, "BKG100-done001")
	require.NotNil(t, got)
	assert.Equal(t, booking.StatusDone, got.Status)
}

func TestMarkDone_Missing(t *testing.T) {
	s := newTestStore(t)
	err := s.MarkDone(context.Background(), "BKG0-missing")
	assert.ErrorIs(t, err, booking.ErrNotFound)
}
