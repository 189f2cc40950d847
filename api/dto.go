/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  domain model from the external contract. Amounts cross this boundary
  as plain decimal numbers (float64); timestamps as integer epoch
  seconds.

LEGACY INPUT TOLERANCE:
  Old clients send identifiers and amounts as either JSON numbers or
  strings. FlexID and FlexNumber absorb both forms at decode time so
  handlers only ever see canonical values.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sebooking/booking-engine/booking"
)

// =============================================================================
// FLEXIBLE SCALARS
// =============================================================================

// FlexID is an identifier that accepts a JSON string or number and
// canonicalizes to the text form ("7", 7 and 7.0 all decode to "7").
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*f = ""
	case string:
		*f = FlexID(strings.TrimSpace(x))
	case json.Number:
		if strings.ContainsAny(x.String(), ".eE") {
			fv, err := x.Float64()
			if err != nil {
				return err
			}
			*f = FlexID(booking.CanonicalID(fv))
		} else {
			*f = FlexID(x.String())
		}
	default:
		return fmt.Errorf("expected string or number, got %T", v)
	}
	return nil
}

// FlexNumber is an amount that accepts a JSON number or numeric string.
type FlexNumber float64

func (f *FlexNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	var v float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*f = FlexNumber(v)
	return nil
}

// Money converts to the domain representation.
func (f FlexNumber) Money() booking.Money {
	return booking.NewMoney(float64(f))
}

// =============================================================================
// BOOKING REQUESTS/RESPONSES
// =============================================================================

// CreateBookingRequest is the POST /add_booking body.
type CreateBookingRequest struct {
	Name     string      `json:"name"`
	Mobile   FlexID      `json:"mobile"`
	CenterID FlexID      `json:"center_id"`
	TestID   FlexID      `json:"test_id"`
	Price    *FlexNumber `json:"price"`

	BookedBy   string      `json:"booked_by"`
	PaidAmount *FlexNumber `json:"paid_amount"`
	// PaymentStatus carries the legacy "Paid means collected in full"
	// shortcut; derivation is otherwise authoritative.
	PaymentStatus string `json:"payment_status"`

	Age     *int   `json:"age"`
	Gender  string `json:"gender"`
	Address string `json:"address"`
}

// CreateBookingResponse returns the generated booking id.
type CreateBookingResponse struct {
	BookingID string `json:"booking_id"`
}

// UpdatePaymentRequest is the POST /update_payment_details body.
// Omitted amounts retain the booking's stored values.
type UpdatePaymentRequest struct {
	BookingID       string      `json:"booking_id"`
	AgentCollected  *FlexNumber `json:"agent_collected"`
	CenterCollected *FlexNumber `json:"center_collected"`
	AdminCollected  *FlexNumber `json:"admin_collected"`
	UpdatedByName   string      `json:"updated_by_name"`
}

// UpdatePaymentResponse returns the re-derived status.
type UpdatePaymentResponse struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

// SetPaymentStatusRequest is the POST /center/update_payment_status body.
type SetPaymentStatusRequest struct {
	BookingID     string `json:"booking_id"`
	PaymentStatus string `json:"payment_status"`
	UpdatedByName string `json:"updated_by_name"`
}

// MarkDoneRequest is the POST /center/mark_done body.
type MarkDoneRequest struct {
	BookingID string `json:"booking_id"`
}

// StatusResponse is the generic mutation acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the error envelope for all failure statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// BOOKING VIEWS
// =============================================================================
// Each caller sees a different projection: the phone and center views
// omit the patient mobile, the center view omits its own center name.

// PhoneBookingDTO is the patient-facing history row.
type PhoneBookingDTO struct {
	BookingID       string  `json:"booking_id"`
	PatientName     string  `json:"patient_name"`
	TestName        string  `json:"test_name"`
	CenterName      string  `json:"center_name"`
	Price           float64 `json:"price"`
	Status          string  `json:"status"`
	Date            int64   `json:"date"`
	PaymentStatus   string  `json:"payment_status"`
	AgentCollected  float64 `json:"agent_collected"`
	CenterCollected float64 `json:"center_collected"`
}

// CenterBookingDTO is the center-staff work-list row.
type CenterBookingDTO struct {
	BookingID        string  `json:"booking_id"`
	PatientName      string  `json:"patient_name"`
	TestName         string  `json:"test_name"`
	Price            float64 `json:"price"`
	Status           string  `json:"status"`
	CreatedAt        int64   `json:"created_at"`
	BookedBy         string  `json:"booked_by"`
	PaymentStatus    string  `json:"payment_status"`
	PaymentUpdatedBy string  `json:"payment_updated_by"`
	AgentCollected   float64 `json:"agent_collected"`
	CenterCollected  float64 `json:"center_collected"`
}

// AgentBookingDTO is the referring agent's view.
type AgentBookingDTO struct {
	BookingID        string  `json:"booking_id"`
	PatientName      string  `json:"patient_name"`
	Mobile           string  `json:"mobile"`
	TestName         string  `json:"test_name"`
	CenterName       string  `json:"center_name"`
	Price            float64 `json:"price"`
	Status           string  `json:"status"`
	CreatedAt        int64   `json:"created_at"`
	PaymentStatus    string  `json:"payment_status"`
	PaymentUpdatedBy string  `json:"payment_updated_by"`
	AgentCollected   float64 `json:"agent_collected"`
	CenterCollected  float64 `json:"center_collected"`
}

// AdminBookingDTO is the full administrative listing row.
type AdminBookingDTO struct {
	BookingID        string  `json:"booking_id"`
	PatientName      string  `json:"patient_name"`
	Mobile           string  `json:"mobile"`
	TestName         string  `json:"test_name"`
	CenterName       string  `json:"center_name"`
	Status           string  `json:"status"`
	CreatedAt        int64   `json:"created_at"`
	BookedBy         string  `json:"booked_by"`
	PaymentStatus    string  `json:"payment_status"`
	PaymentUpdatedBy string  `json:"payment_updated_by"`
	PaymentUpdatedAt int64   `json:"payment_updated_at"`
	AgentCollected   float64 `json:"agent_collected"`
	CenterCollected  float64 `json:"center_collected"`
	AdminCollected   float64 `json:"admin_collected"`
	Price            float64 `json:"price"`
}

// CenterStatsDTO is one row of the admin revenue report. unpaid_count
// merges Partial and Unpaid; total_due may be negative when a center
// over-collected.
type CenterStatsDTO struct {
	CenterName      string  `json:"center_name"`
	TotalBookings   int     `json:"total_bookings"`
	TotalRevenue    float64 `json:"total_revenue"`
	PaidCount       int     `json:"paid_count"`
	UnpaidCount     int     `json:"unpaid_count"`
	AgentCollected  float64 `json:"agent_collected"`
	CenterCollected float64 `json:"center_collected"`
	AdminCollected  float64 `json:"admin_collected"`
	TotalDue        float64 `json:"total_due"`
}

// =============================================================================
// CATALOG / AUTH TYPES
// =============================================================================

// NoticeDTO is the home banner.
type NoticeDTO struct {
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

// TestDTO is a diagnostic test row.
type TestDTO struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	TestName   string `json:"test_name"`
}

// CategoryDTO is a test category.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CenterDTO is a partner center.
type CenterDTO struct {
	ID         int64    `json:"id"`
	CenterName string   `json:"center_name"`
	Address    string   `json:"address"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Timings    []string `json:"timings"`
	Enabled    bool     `json:"enabled"`
}

// OfferDTO is a center offering a test, with the quoted price.
type OfferDTO struct {
	CenterID   int64    `json:"center_id"`
	CenterName string   `json:"center_name"`
	Address    string   `json:"address"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Timings    []string `json:"timings"`
	Price      float64  `json:"price"`
	Enabled    bool     `json:"enabled"`
}

// PricingRowDTO is one line of the admin pricing matrix. Price is an
// empty string when the center has no assignment for the test, matching
// what the back-office table renders.
type PricingRowDTO struct {
	TestID     int64  `json:"test_id"`
	TestName   string `json:"test_name"`
	CategoryID int64  `json:"category_id"`
	Price      any    `json:"price"`
	Enabled    bool   `json:"enabled"`
}

// AgentDTO omits the credential pair.
type AgentDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"created_at"`
}

// CenterUserDTO is a center-staff credential record.
type CenterUserDTO struct {
	CenterID int64  `json:"center_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is shared by the admin, center, and agent logins.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CenterLoginResponse identifies the staff member's center.
type CenterLoginResponse struct {
	CenterID   int64  `json:"center_id"`
	CenterName string `json:"center_name"`
}

// AgentLoginResponse identifies the agent.
type AgentLoginResponse struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
}

// UpdateNoticeRequest is the admin banner update.
type UpdateNoticeRequest struct {
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

// AddTestRequest creates a test.
type AddTestRequest struct {
	CategoryID int64  `json:"category_id"`
	TestName   string `json:"test_name"`
}

// UpdateTestRequest renames a test.
type UpdateTestRequest struct {
	TestID   FlexID `json:"test_id"`
	TestName string `json:"test_name"`
}

// AddCategoryRequest creates a category.
type AddCategoryRequest struct {
	Name string `json:"name"`
}

// CenterRequest creates or updates a center.
type CenterRequest struct {
	ID         FlexID   `json:"id"`
	CenterName string   `json:"center_name"`
	Address    string   `json:"address"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Timings    []string `json:"timings"`
}

// ToggleCenterRequest flips customer visibility.
type ToggleCenterRequest struct {
	CenterID FlexID `json:"center_id"`
	Enabled  bool   `json:"enabled"`
}

// SetPriceRequest upserts a (center, test) price assignment.
type SetPriceRequest struct {
	CenterID FlexID      `json:"center_id"`
	TestID   FlexID      `json:"test_id"`
	Price    *FlexNumber `json:"price"`
	Enabled  *bool       `json:"enabled"`
}

// CenterUserRequest creates or updates a center-staff credential.
type CenterUserRequest struct {
	CenterID FlexID `json:"center_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AgentRequest creates or updates an agent.
type AgentRequest struct {
	ID       FlexID `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}
