package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bde-platform/mailer/internal/config"
)

// SetupRoutes configures the router. Everything under /api requires a
// bearer token except the unsubscribe endpoints, which stay public because
// mailbox providers call them on the recipient's behalf.
func SetupRoutes(h *Handlers, auth config.AuthConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	// Public unsubscribe page linked from email footers.
	r.Get("/unsubscribe", h.UnsubscribePage)

	r.Route("/api", func(r chi.Router) {
		// RFC 8058 one-click target; also reachable as a plain link.
		r.Get("/unsubscribe", h.UnsubscribeJSON)
		r.Post("/unsubscribe", h.UnsubscribeJSON)

		r.Group(func(r chi.Router) {
			r.Use(bearerAuth(auth))

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", h.ListCampaigns)
				r.Post("/", h.CreateCampaign)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetCampaign)
					r.Put("/", h.UpdateCampaign)
					r.Delete("/", h.DeleteCampaign)
					r.Post("/send", h.SendCampaign)
					r.Post("/archive", h.ArchiveCampaign)
					r.Get("/preview", h.PreviewCampaign)
				})
			})

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", h.ListContacts)
				r.Post("/", h.UpsertContact)
				r.Delete("/{id}", h.DeleteContact)
			})

			r.Route("/segments", func(r chi.Router) {
				r.Get("/", h.ListSegments)
				r.Post("/", h.CreateSegment)
				r.Post("/preview", h.PreviewSegment)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetSegment)
					r.Put("/", h.UpdateSegment)
					r.Delete("/", h.DeleteSegment)
				})
			})

			r.Route("/templates", func(r chi.Router) {
				r.Post("/render", h.RenderTemplate)
				r.Post("/validate", h.ValidateTemplate)
			})

			r.Route("/unsubscribes", func(r chi.Router) {
				r.Get("/", h.ListUnsubscribes)
				r.Delete("/{email}", h.Resubscribe)
			})
		})
	})

	return r
}
