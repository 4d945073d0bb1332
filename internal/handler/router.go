package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/car-reservation/internal/middleware"
)

// RouterOptions carries the optional pieces of the route table.
type RouterOptions struct {
	// Auth guards /api. A nil or secret-less Authenticator lets everything through.
	Auth *middleware.Authenticator
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
	// OpenAPI is served at /openapi.yaml when non-empty.
	OpenAPI []byte
}

// NewRouter registers every endpoint of the API on a fresh chi router.
// Fleet management (creating, deleting, repricing, relocating cars, changing
// their status and reading analytics) requires the admin or manager role;
// every other /api route requires any valid token.
func NewRouter(s *Server, opts RouterOptions) chi.Router {
	auth := opts.Auth
	if auth == nil {
		auth = middleware.NewAuthenticator("")
	}
	fleet := auth.RequireRole(middleware.RoleAdmin, middleware.RoleManager)

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	if len(opts.OpenAPI) > 0 {
		r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(opts.OpenAPI)
		})
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/cars", func(r chi.Router) {
			r.Get("/", s.ListCars)
			r.Get("/available", s.FindAvailableCars)
			r.Get("/{carId}", s.GetCar)
			r.With(fleet).Post("/", s.CreateCar)

			r.Group(func(r chi.Router) {
				r.Use(fleet)
				r.Delete("/{carId}", s.DeleteCar)
				r.Put("/{carId}/location", s.UpdateCarLocation)
				r.Put("/{carId}/pricing", s.UpdateCarPricing)
				r.Put("/{carId}/maintenance", s.SetCarMaintenance)
				r.Put("/{carId}/available", s.SetCarAvailable)
				r.Put("/{carId}/out-of-service", s.SetCarOutOfService)
				r.Get("/{carId}/analytics", s.GetCarAnalytics)
			})
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", s.CreateReservation)
			r.Get("/{reservationId}", s.GetReservation)
			r.Put("/{reservationId}/confirm", s.ConfirmReservation)
			r.Put("/{reservationId}/cancel", s.CancelReservation)
			r.Put("/{reservationId}/complete", s.CompleteReservation)
		})

		r.Route("/customers/{customerId}", func(r chi.Router) {
			r.Get("/reservations", s.ListCustomerReservations)
			r.Get("/profile", s.GetProfile)
			r.Put("/profile", s.SaveProfile)
		})
	})
	return r
}
