package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebooking/booking-engine/api"
	"github.com/sebooking/booking-engine/catalog"
	"github.com/sebooking/booking-engine/store/sqlite"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type harness struct {
	t      *testing.T
	server *httptest.Server
	store  *sqlite.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := api.NewHandler(store, store)
	server := httptest.NewServer(api.NewRouter(handler, []string{"*"}))
	t.Cleanup(server.Close)

	return &harness{t: t, server: server, store: store}
}

func (h *harness) post(path string, body any) *http.Response {
	h.t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(h.t, err)
	resp, err := http.Post(h.server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(h.t, err)
	return resp
}

// postRaw sends a verbatim JSON body, for legacy payload shapes that the
// typed helpers cannot produce.
func (h *harness) postRaw(path, body string) *http.Response {
	h.t.Helper()
	resp, err := http.Post(h.server.URL+path, "application/json", bytes.NewReader([]byte(body)))
	require.NoError(h.t, err)
	return resp
}

func (h *harness) get(path string) *http.Response {
	h.t.Helper()
	resp, err := http.Get(h.server.URL + path)
	require.NoError(h.t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (h *harness) seedCatalog() (centerID, testID int64) {
	h.t.Helper()
	ctx := context.Background()

	require.NoError(h.t, h.store.AddCenter(ctx, catalog.Center{
		ID: 7, Name: "City Lab", Address: "12 MG Road", Enabled: true,
	}))
	catID, err := h.store.AddCategory(ctx, "Blood")
	require.NoError(h.t, err)
	tID, err := h.store.AddTest(ctx, catID, "CBC")
	require.NoError(h.t, err)
	return 7, tID
}

func (h *harness) createBooking(t *testing.T, body map[string]any) string {
	t.Helper()
	resp := h.post("/add_booking", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decode[api.CreateBookingResponse](t, resp)
	require.NotEmpty(t, created.BookingID)
	return created.BookingID
}

// =============================================================================
// BOOKING LIFECYCLE
// =============================================================================

func TestBookingLifecycle_CreateUpdatePayMarkDone(t *testing.T) {
	h := newHarness(t)
	centerID, testID := h.seedCatalog()

	// Create: customer booking, nothing collected.
	id := h.createBooking(t, map[string]any{
		"name":      "Ramesh Kumar",
		"mobile":    "9876543210",
		"center_id": centerID,
		"test_id":   testID,
		"price":     500,
		"age":       42,
		"gender":    "Male",
	})

	// The patient's history shows it Unpaid with resolved names.
	resp := h.get("/bookings_by_mobile?mobile=9876543210")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[[]api.PhoneBookingDTO](t, resp)
	require.Len(t, history, 1)
	assert.Equal(t, "Unpaid", history[0].PaymentStatus)
	assert.Equal(t, "CBC", history[0].TestName)
	assert.Equal(t, "City Lab", history[0].CenterName)

	// Partial payment via the center.
	resp = h.post("/update_payment_details", map[string]any{
		"booking_id":       id,
		"center_collected": 200,
		"updated_by_name":  "Center",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upd := decode[api.UpdatePaymentResponse](t, resp)
	assert.Equal(t, "Partial", upd.PaymentStatus)

	// Remaining amount via admin; the center amount must be retained.
	resp = h.post("/update_payment_details", map[string]any{
		"booking_id":      id,
		"admin_collected": 300,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upd = decode[api.UpdatePaymentResponse](t, resp)
	assert.Equal(t, "Paid", upd.PaymentStatus)

	// Fulfilment.
	resp = h.post("/center/mark_done", map[string]any{"booking_id": id})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = h.get("/admin/bookings")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]api.AdminBookingDTO](t, resp)
	require.Len(t, all, 1)
	assert.Equal(t, "Done", all[0].Status)
	assert.Equal(t, "Paid", all[0].PaymentStatus)
	assert.Equal(t, 200.0, all[0].CenterCollected)
	assert.Equal(t, 300.0, all[0].AdminCollected)
}

func TestAddBooking_LegacyPayloadShapes(t *testing.T) {
	// Old clients send ids and amounts as strings or floats.
	h := newHarness(t)
	h.seedCatalog()

	resp := h.postRaw("/add_booking", `{
		"name": "Sita Devi",
		"mobile": 9876543210,
		"center_id": 7.0,
		"test_id": "1",
		"price": "450.5",
		"booked_by": "Center",
		"payment_status": "Paid"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decode[api.CreateBookingResponse](t, resp)

	// Declared "Paid" with no amount means full price to the center.
	resp = h.get("/admin/bookings")
	all := decode[[]api.AdminBookingDTO](t, resp)
	require.Len(t, all, 1)
	assert.Equal(t, created.BookingID, all[0].BookingID)
	assert.Equal(t, "9876543210", all[0].Mobile)
	assert.Equal(t, "Paid", all[0].PaymentStatus)
	assert.Equal(t, 450.5, all[0].CenterCollected)
}

func TestAddBooking_Validation(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing price", map[string]any{"name": "X", "mobile": "9", "center_id": 7, "test_id": 1}},
		{"missing name", map[string]any{"mobile": "9", "center_id": 7, "test_id": 1, "price": 100}},
		{"negative price", map[string]any{"name": "X", "mobile": "9", "center_id": 7, "test_id": 1, "price": -1}},
		{"non-numeric test id", map[string]any{"name": "X", "mobile": "9", "center_id": 7, "test_id": "cbc", "price": 100}},
		{"non-numeric center id", map[string]any{"name": "X", "mobile": "9", "center_id": "not-a-number", "test_id": 1, "price": 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := h.post("/add_booking", tc.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestUpdatePayment_UnknownBooking_404(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/update_payment_details", map[string]any{
		"booking_id":      "BKG0-missing",
		"agent_collected": 10,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMarkDone_UnknownBooking_404(t *testing.T) {
	h := newHarness(t)

	resp := h.post("/center/mark_done", map[string]any{"booking_id": "BKG0-missing"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetPaymentStatus_LabelWrite(t *testing.T) {
	h := newHarness(t)
	centerID, testID := h.seedCatalog()

	id := h.createBooking(t, map[string]any{
		"name": "Ramesh", "mobile": "9876543210",
		"center_id": centerID, "test_id": testID, "price": 500,
	})

	resp := h.post("/center/update_payment_status", map[string]any{
		"booking_id":     id,
		"payment_status": "Paid",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Label changed; amounts untouched.
	resp = h.get("/admin/bookings")
	all := decode[[]api.AdminBookingDTO](t, resp)
	require.Len(t, all, 1)
	assert.Equal(t, "Paid", all[0].PaymentStatus)
	assert.Equal(t, 0.0, all[0].CenterCollected)

	resp = h.post("/center/update_payment_status", map[string]any{
		"booking_id":     id,
		"payment_status": "Refunded",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "unknown labels are rejected")
}

// =============================================================================
// ROLE VIEWS
// =============================================================================

func TestCenterBookings_OmitsMobile(t *testing.T) {
	h := newHarness(t)
	centerID, testID := h.seedCatalog()

	h.createBooking(t, map[string]any{
		"name": "Ramesh", "mobile": "9876543210",
		"center_id": centerID, "test_id": testID, "price": 500,
	})

	resp := h.get(fmt.Sprintf("/center/bookings?center_id=%d", centerID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	resp.Body.Close()
	require.Len(t, rows, 1)
	_, present := rows[0]["mobile"]
	assert.False(t, present, "the center view must not leak the patient mobile")
}

func TestAgentBookings_MatchedByName(t *testing.T) {
	h := newHarness(t)
	centerID, testID := h.seedCatalog()

	h.createBooking(t, map[string]any{
		"name": "Ramesh", "mobile": "9876543210",
		"center_id": centerID, "test_id": testID, "price": 500,
		"booked_by": "AgentA", "paid_amount": 100,
	})
	h.createBooking(t, map[string]any{
		"name": "Sita", "mobile": "9000000000",
		"center_id": centerID, "test_id": testID, "price": 300,
	})

	resp := h.get("/agent/bookings?agent_name=AgentA")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := decode[[]api.AgentBookingDTO](t, resp)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ramesh", rows[0].PatientName)
	assert.Equal(t, 100.0, rows[0].AgentCollected)

	resp = h.get("/agent/bookings")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "agent_name is required")
}

// =============================================================================
// REVENUE REPORT
// =============================================================================

func TestCenterStats_AggregatesAndResolvesNames(t *testing.T) {
	h := newHarness(t)
	centerID, testID := h.seedCatalog()

	id := h.createBooking(t, map[string]any{
		"name": "Ramesh", "mobile": "9876543210",
		"center_id": centerID, "test_id": testID, "price": 500,
	})
	resp := h.post("/update_payment_details", map[string]any{
		"booking_id": id, "center_collected": 500,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	h.createBooking(t, map[string]any{
		"name": "Sita", "mobile": "9000000000",
		"center_id": centerID, "test_id": testID, "price": 300,
		"booked_by": "AgentA", "paid_amount": 100,
	})

	// A booking against a center the catalog does not know.
	h.createBooking(t, map[string]any{
		"name": "Gopal", "mobile": "9111111111",
		"center_id": 99, "test_id": testID, "price": 200,
	})

	resp = h.get("/admin/center_stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[[]api.CenterStatsDTO](t, resp)
	require.Len(t, stats, 2)

	citylab := stats[0]
	assert.Equal(t, "City Lab", citylab.CenterName)
	assert.Equal(t, 2, citylab.TotalBookings)
	assert.Equal(t, 800.0, citylab.TotalRevenue)
	assert.Equal(t, 1, citylab.PaidCount)
	assert.Equal(t, 1, citylab.UnpaidCount)
	assert.Equal(t, 100.0, citylab.AgentCollected)
	assert.Equal(t, 500.0, citylab.CenterCollected)
	assert.Equal(t, 200.0, citylab.TotalDue)

	assert.Equal(t, "ID: 99", stats[1].CenterName)
}

func TestCenterStats_WindowRequiresBothBounds(t *testing.T) {
	h := newHarness(t)
	centerID, testID := h.seedCatalog()

	h.createBooking(t, map[string]any{
		"name": "Ramesh", "mobile": "9876543210",
		"center_id": centerID, "test_id": testID, "price": 500,
	})

	// Only one bound present means no window at all.
	resp := h.get("/admin/center_stats?start_ts=0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[[]api.CenterStatsDTO](t, resp)
	assert.Len(t, stats, 1)

	// A window in the far past excludes everything.
	resp = h.get("/admin/center_stats?start_ts=1&end_ts=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats = decode[[]api.CenterStatsDTO](t, resp)
	assert.Empty(t, stats)

	resp = h.get("/admin/center_stats?start_ts=abc&end_ts=2")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
