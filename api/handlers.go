/*
handlers.go - HTTP API handlers for the booking payment ledger

PURPOSE:
  Exposes the booking engine via JSON over HTTP. Handles request
  parsing, boundary validation, and delegates to the domain service;
  catalog and auth handlers live in catalog_handlers.go.

ENDPOINTS (booking core):
  POST /add_booking                     Create booking
  POST /update_payment_details          Merge payment update, re-derive status
  POST /center/update_payment_status    Direct status label write
  POST /center/mark_done                Mark fulfilled (idempotent)
  GET  /bookings_by_mobile              Patient history
  GET  /center/bookings                 Center work list, newest first
  GET  /agent/bookings                  Agent history, newest first
  GET  /admin/bookings                  Full listing, newest first
  GET  /admin/center_stats              Per-center revenue report

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: validation errors, invalid input
  - 401: credential mismatch
  - 404: booking/resource not found
  - 500: store failures (propagated loudly, never retried)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - booking/service.go: The operations behind these handlers
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sebooking/booking-engine/booking"
	"github.com/sebooking/booking-engine/catalog"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Bookings *booking.Service
	Catalog  catalog.Store
	Stats    *booking.Aggregator
}

// NewHandler wires the booking service and aggregator over the stores.
func NewHandler(bookings booking.Store, cat catalog.Store) *Handler {
	return &Handler{
		Bookings: booking.NewService(bookings),
		Catalog:  cat,
		Stats:    &booking.Aggregator{Store: bookings, Resolver: cat},
	}
}

// Home is the health/landing response.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "SE Booking API running"})
}

// =============================================================================
// BOOKING MUTATIONS
// =============================================================================

// AddBooking creates a booking, running the one-shot initial attribution.
// POST /add_booking
func (h *Handler) AddBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, "price is required", nil)
		return
	}
	testID, err := strconv.ParseInt(string(req.TestID), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "test_id must be numeric", err)
		return
	}

	in := booking.CreateInput{
		PatientName:           req.Name,
		Mobile:                string(req.Mobile),
		CenterID:              string(req.CenterID),
		TestID:                testID,
		Price:                 req.Price.Money(),
		BookedBy:              req.BookedBy,
		DeclaredPaymentStatus: req.PaymentStatus,
		Gender:                req.Gender,
		Address:               req.Address,
	}
	if req.PaidAmount != nil {
		in.PaidAmount = req.PaidAmount.Money()
	} else {
		in.PaidAmount = booking.ZeroMoney()
	}
	if req.Age != nil {
		in.Age = *req.Age
	}

	id, err := h.Bookings.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, err, "Failed to create booking")
		return
	}
	writeJSON(w, http.StatusOK, CreateBookingResponse{BookingID: id})
}

// UpdatePaymentDetails merges the supplied amounts over the stored
// attribution and re-derives the status.
// POST /update_payment_details
func (h *Handler) UpdatePaymentDetails(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required", nil)
		return
	}

	upd := booking.PaymentUpdate{UpdatedBy: req.UpdatedByName}
	if req.AgentCollected != nil {
		m := req.AgentCollected.Money()
		upd.Agent = &m
	}
	if req.CenterCollected != nil {
		m := req.CenterCollected.Money()
		upd.Center = &m
	}
	if req.AdminCollected != nil {
		m := req.AdminCollected.Money()
		upd.Admin = &m
	}

	status, err := h.Bookings.UpdatePayment(r.Context(), req.BookingID, upd)
	if err != nil {
		writeDomainError(w, err, "Failed to update payment")
		return
	}
	writeJSON(w, http.StatusOK, UpdatePaymentResponse{
		Status:        "updated",
		PaymentStatus: string(status),
	})
}

// SetPaymentStatus writes the status label directly, used by centers and
// admins that reconcile outside the ledger fields.
// POST /center/update_payment_status
func (h *Handler) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req SetPaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required", nil)
		return
	}

	err := h.Bookings.SetPaymentStatus(r.Context(), req.BookingID,
		booking.PaymentStatus(req.PaymentStatus), req.UpdatedByName)
	if err != nil {
		writeDomainError(w, err, "Failed to update payment status")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "updated"})
}

// MarkDone transitions the booking to Done. Idempotent.
// POST /center/mark_done
func (h *Handler) MarkDone(w http.ResponseWriter, r *http.Request) {
	var req MarkDoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required", nil)
		return
	}

	if err := h.Bookings.MarkFulfilled(r.Context(), req.BookingID); err != nil {
		writeDomainError(w, err, "Failed to mark booking done")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "updated"})
}

// =============================================================================
// BOOKING VIEWS
// =============================================================================

// BookingsByMobile returns the patient's history, matching legacy
// numeric and text phone storage.
// GET /bookings_by_mobile?mobile=
func (h *Handler) BookingsByMobile(w http.ResponseWriter, r *http.Request) {
	mobile := r.URL.Query().Get("mobile")

	bookings, err := h.Bookings.FindByPhone(r.Context(), mobile)
	if err != nil {
		writeDomainError(w, err, "Failed to look up bookings")
		return
	}

	ctx := r.Context()
	dtos := make([]PhoneBookingDTO, 0, len(bookings))
	for _, b := range bookings {
		testName, _ := h.Catalog.TestName(ctx, b.TestID)
		centerName, _ := h.Catalog.CenterName(ctx, b.CenterID)
		dtos = append(dtos, PhoneBookingDTO{
			BookingID:       b.ID,
			PatientName:     b.PatientName,
			TestName:        testName,
			CenterName:      centerName,
			Price:           b.Price.Float64(),
			Status:          string(b.Status),
			Date:            b.CreatedAt,
			PaymentStatus:   string(b.PaymentStatus),
			AgentCollected:  b.AgentCollected.Float64(),
			CenterCollected: b.CenterCollected.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CenterBookings returns the center's work list, newest first.
// GET /center/bookings?center_id=
func (h *Handler) CenterBookings(w http.ResponseWriter, r *http.Request) {
	centerID := r.URL.Query().Get("center_id")

	bookings, err := h.Bookings.FindByCenter(r.Context(), centerID)
	if err != nil {
		writeDomainError(w, err, "Failed to look up center bookings")
		return
	}

	ctx := r.Context()
	dtos := make([]CenterBookingDTO, 0, len(bookings))
	for _, b := range bookings {
		testName, _ := h.Catalog.TestName(ctx, b.TestID)
		dtos = append(dtos, CenterBookingDTO{
			BookingID:        b.ID,
			PatientName:      b.PatientName,
			TestName:         testName,
			Price:            b.Price.Float64(),
			Status:           string(b.Status),
			CreatedAt:        b.CreatedAt,
			BookedBy:         b.BookedBy,
			PaymentStatus:    string(b.PaymentStatus),
			PaymentUpdatedBy: b.PaymentUpdatedBy,
			AgentCollected:   b.AgentCollected.Float64(),
			CenterCollected:  b.CenterCollected.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AgentBookings returns the agent's history, newest first. Agents are
// matched on display name - there is no stable agent key on bookings.
// GET /agent/bookings?agent_name=
func (h *Handler) AgentBookings(w http.ResponseWriter, r *http.Request) {
	agentName := r.URL.Query().Get("agent_name")

	bookings, err := h.Bookings.FindByAgent(r.Context(), agentName)
	if err != nil {
		writeDomainError(w, err, "Failed to look up agent bookings")
		return
	}

	ctx := r.Context()
	dtos := make([]AgentBookingDTO, 0, len(bookings))
	for _, b := range bookings {
		testName, _ := h.Catalog.TestName(ctx, b.TestID)
		centerName, _ := h.Catalog.CenterName(ctx, b.CenterID)
		dtos = append(dtos, AgentBookingDTO{
			BookingID:        b.ID,
			PatientName:      b.PatientName,
			Mobile:           b.Mobile,
			TestName:         testName,
			CenterName:       centerName,
			Price:            b.Price.Float64(),
			Status:           string(b.Status),
			CreatedAt:        b.CreatedAt,
			PaymentStatus:    string(b.PaymentStatus),
			PaymentUpdatedBy: b.PaymentUpdatedBy,
			AgentCollected:   b.AgentCollected.Float64(),
			CenterCollected:  b.CenterCollected.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AdminBookings returns the full listing, newest first.
// GET /admin/bookings
func (h *Handler) AdminBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Bookings.List(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to list bookings")
		return
	}

	ctx := r.Context()
	dtos := make([]AdminBookingDTO, 0, len(bookings))
	for _, b := range bookings {
		testName, _ := h.Catalog.TestName(ctx, b.TestID)
		centerName, _ := h.Catalog.CenterName(ctx, b.CenterID)
		dtos = append(dtos, AdminBookingDTO{
			BookingID:        b.ID,
			PatientName:      b.PatientName,
			Mobile:           b.Mobile,
			TestName:         testName,
			CenterName:       centerName,
			Status:           string(b.Status),
			CreatedAt:        b.CreatedAt,
			BookedBy:         b.BookedBy,
			PaymentStatus:    string(b.PaymentStatus),
			PaymentUpdatedBy: b.PaymentUpdatedBy,
			PaymentUpdatedAt: b.PaymentUpdatedAt,
			AgentCollected:   b.AgentCollected.Float64(),
			CenterCollected:  b.CenterCollected.Float64(),
			AdminCollected:   b.AdminCollected.Float64(),
			Price:            b.Price.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CenterStats runs the per-center revenue aggregation, optionally
// restricted to an inclusive creation-time window.
// GET /admin/center_stats?start_ts=&end_ts=
func (h *Handler) CenterStats(w http.ResponseWriter, r *http.Request) {
	var window booking.Window

	startRaw := r.URL.Query().Get("start_ts")
	endRaw := r.URL.Query().Get("end_ts")
	if startRaw != "" && endRaw != "" {
		start, err := strconv.ParseInt(startRaw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start_ts must be epoch seconds", err)
			return
		}
		end, err := strconv.ParseInt(endRaw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end_ts must be epoch seconds", err)
			return
		}
		window = booking.Window{Start: start, End: end, Set: true}
	}

	summaries, err := h.Stats.ByCenter(r.Context(), window)
	if err != nil {
		writeDomainError(w, err, "Failed to aggregate center stats")
		return
	}

	dtos := make([]CenterStatsDTO, 0, len(summaries))
	for _, s := range summaries {
		dtos = append(dtos, CenterStatsDTO{
			CenterName:      s.CenterName,
			TotalBookings:   s.TotalBookings,
			TotalRevenue:    s.TotalRevenue.Float64(),
			PaidCount:       s.PaidCount,
			UnpaidCount:     s.OutstandingCount,
			AgentCollected:  s.AgentCollected.Float64(),
			CenterCollected: s.CenterCollected.Float64(),
			AdminCollected:  s.AdminCollected.Float64(),
			TotalDue:        s.TotalDue.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error, message string) {
	switch {
	case booking.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, catalog.ErrExists):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
