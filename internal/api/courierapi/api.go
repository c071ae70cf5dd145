package courierapi

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/BearBump/CourierDesk/internal/services/rates"
	"github.com/BearBump/CourierDesk/internal/services/shipments"
	"github.com/BearBump/CourierDesk/internal/services/users"
)

type Handler struct {
	shipments *shipments.Service
	rates     *rates.Service
	users     *users.Service

	swaggerPath string
}

func New(sh *shipments.Service, rt *rates.Service, us *users.Service, swaggerPath string) *Handler {
	return &Handler{shipments: sh, rates: rt, users: us, swaggerPath: swaggerPath}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	if h.swaggerPath != "" {
		// Serve swagger with no-cache + cachebuster.
		r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			http.ServeFile(w, r, h.swaggerPath)
		})
		swaggerURL := "/swagger.json"
		if fi, err := os.Stat(h.swaggerPath); err == nil {
			swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
		}
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)

		// Public tracking lookup, no identity required.
		r.Get("/track/{trackingNumber}", h.track)

		r.Group(func(r chi.Router) {
			r.Use(h.requireUser)

			r.Post("/shipments", h.createShipment)
			r.Get("/shipments", h.listMyShipments)
			r.Get("/shipments/{id}", h.getMyShipment)
			r.Get("/dashboard", h.dashboard)
			r.Post("/quote", h.quote)

			r.Get("/notifications", h.listNotifications)
			r.Put("/notifications/{id}/read", h.markNotificationRead)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)

			r.Post("/tracking-update", h.updateTracking)
			r.Get("/shipments", h.listAllShipments)
			r.Get("/shipments/{id}", h.getShipmentAdmin)

			r.Get("/pricing", h.listPricing)
			r.Post("/pricing", h.createPricing)
			r.Put("/pricing/{id}", h.updatePricing)
			r.Delete("/pricing/{id}", h.deletePricing)

			r.Get("/users", h.listUsers)
			r.Put("/users/{id}", h.updateUserStatus)
			r.Delete("/users/{id}", h.deleteUser)

			r.Get("/logs", h.listActivity)
		})
	})

	return r
}
