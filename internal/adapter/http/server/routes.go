package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("/health", a.routes.health.HealthCheck)

	// Swagger UI and Prometheus metrics
	a.mux.HandleFunc("/swagger/", httpSwagger.Handler())
	a.mux.Handle("/metrics", promhttp.Handler())

	a.setupRouteRoutes()
	a.setupBookingRoutes()
	a.setupLocationRoutes()
	a.setupStreamRoutes()
}

// setupRouteRoutes setups route directory and lifecycle endpoints
func (a *API) setupRouteRoutes() {
	a.mux.HandleFunc("GET /routes", a.routes.route.Search)          // Search upcoming routes (public)
	a.mux.HandleFunc("GET /routes/{route_id}", a.routes.route.Get)  // Route details (public)

	a.mux.Handle("POST /routes", a.m.RequireRoles(a.routes.route.Create, types.RoleDriver))                         // Publish a new route
	a.mux.Handle("POST /routes/{route_id}/start", a.m.RequireRoles(a.routes.route.Start, types.RoleDriver))         // Start an upcoming route
	a.mux.Handle("POST /routes/{route_id}/complete", a.m.RequireRoles(a.routes.route.Complete, types.RoleDriver))   // Complete an ongoing route
	a.mux.Handle("POST /routes/{route_id}/cancel", a.m.RequireRoles(a.routes.route.Cancel, types.RoleDriver))       // Cancel a route, cascades to bookings
	a.mux.Handle("GET /drivers/me/routes", a.m.RequireRoles(a.routes.route.ActiveForDriver, types.RoleDriver))      // Driver dashboard
}

// setupBookingRoutes setups booking lifecycle endpoints
func (a *API) setupBookingRoutes() {
	a.mux.Handle("POST /bookings", a.m.RequireRoles(a.routes.booking.Create, types.RolePassenger))                 // Book seats on a route
	a.mux.Handle("GET /bookings", a.m.RequireRoles(a.routes.booking.List, types.RolePassenger))                    // Passenger's bookings
	a.mux.Handle("GET /bookings/{booking_id}", a.m.RequireRoles(a.routes.booking.Get))                             // One booking, passenger or driver
	a.mux.Handle("PATCH /bookings/{booking_id}/seats", a.m.RequireRoles(a.routes.booking.UpdateSeats, types.RolePassenger)) // Edit pending seat count

	a.mux.Handle("POST /bookings/{booking_id}/accept", a.m.RequireRoles(a.routes.booking.Accept, types.RoleDriver))     // Driver accepts
	a.mux.Handle("POST /bookings/{booking_id}/decline", a.m.RequireRoles(a.routes.booking.Decline, types.RoleDriver))   // Driver declines, seats restored
	a.mux.Handle("POST /bookings/{booking_id}/cancel", a.m.RequireRoles(a.routes.booking.Cancel))                       // Passenger or driver cancels
	a.mux.Handle("POST /bookings/{booking_id}/complete", a.m.RequireRoles(a.routes.booking.Complete, types.RoleDriver)) // Driver completes
	a.mux.Handle("POST /bookings/{booking_id}/paid", a.m.RequireRoles(a.routes.booking.MarkPaid, types.RoleDriver))     // Driver confirms cash receipt
}

// setupLocationRoutes setups trip position endpoints
func (a *API) setupLocationRoutes() {
	a.mux.Handle("PUT /trips/{trip_id}/location", a.m.RequireRoles(a.routes.location.Report, types.RoleDriver)) // Driver reports position
	a.mux.Handle("GET /trips/{trip_id}/location", a.m.RequireRoles(a.routes.location.Latest))                   // Latest position
}

// setupStreamRoutes setups the realtime feed websocket
func (a *API) setupStreamRoutes() {
	a.mux.HandleFunc("GET /ws/feed", a.routes.stream.HandleFeed) // Auth checked inside, before upgrade
}
