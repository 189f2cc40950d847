/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontends

ROUTE GROUPS:
  /              Customer surface (catalog browse, booking, history)
  /center/*      Center-staff surface
  /agent/*       Referring-agent surface
  /admin/*       Back-office surface

SECURITY NOTE:
  Login endpoints are plain credential checks; there is no session or
  token middleware gating the role-scoped routes.

SEE ALSO:
  - handlers.go: Booking handler implementations
  - catalog_handlers.go: Catalog/auth handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Customer surface
	r.Get("/", h.Home)
	r.Get("/get_notice", h.GetNotice)
	r.Get("/get_tests", h.GetTests)
	r.Get("/get_centers", h.GetCenters)
	r.Post("/add_booking", h.AddBooking)
	r.Post("/update_payment_details", h.UpdatePaymentDetails)
	r.Get("/bookings_by_mobile", h.BookingsByMobile)

	// Center-staff surface
	r.Route("/center", func(r chi.Router) {
		r.Post("/login", h.CenterLogin)
		r.Get("/bookings", h.CenterBookings)
		r.Post("/mark_done", h.MarkDone)
		r.Post("/update_payment_status", h.SetPaymentStatus)
	})

	// Agent surface
	r.Route("/agent", func(r chi.Router) {
		r.Post("/login", h.AgentLogin)
		r.Get("/bookings", h.AgentBookings)
	})

	// Back-office surface
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", h.AdminLogin)
		r.Get("/bookings", h.AdminBookings)
		r.Get("/center_stats", h.CenterStats)
		r.Post("/update_notice", h.UpdateNotice)

		r.Get("/tests", h.AdminTests)
		r.Post("/add_test", h.AddTest)
		r.Post("/update_test", h.UpdateTest)

		r.Get("/categories", h.AdminCategories)
		r.Post("/add_category", h.AddCategory)

		r.Get("/centers", h.AdminCenters)
		r.Post("/add_center", h.AddCenter)
		r.Post("/update_center", h.UpdateCenter)
		r.Post("/toggle_center", h.ToggleCenter)

		r.Post("/set_price", h.SetPrice)
		r.Get("/pricing", h.AdminPricing)

		r.Get("/agents", h.AdminAgents)
		r.Post("/add_agent", h.AddAgent)
		r.Post("/update_agent", h.UpdateAgent)

		r.Get("/center_users", h.AdminCenterUsers)
		r.Post("/create_center_user", h.CreateCenterUser)
		r.Post("/update_center_user", h.UpdateCenterUser)
	})

	return r
}
