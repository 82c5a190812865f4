package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/infra/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Leads          *LeadHandler
	Journal        *JournalHandler
	Imports        *ImportHandler
	Bulk           *BulkHandler
	Export         *ExportHandler
	Users          *UserHandler
	Health         *HealthHandler
	Auth           *middleware.Authenticator
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string
	AccessLog      bool
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if rt.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Lead-Count"},
	}))

	if rt.Health != nil {
		r.Get("/health", rt.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	limit := func(next http.Handler) http.Handler { return next }
	if rt.Limiter != nil {
		limit = rt.Limiter.Limit
	}

	r.Group(func(r chi.Router) {
		r.Use(rt.Auth.Authenticate)

		r.Post("/users/delete", rt.Users.Delete)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActor)

			r.Get("/leads", rt.Leads.List)
			r.Get("/leads/stream", rt.Leads.Stream)
			r.Get("/leads/{id}", rt.Leads.Get)
			r.Patch("/leads/{id}/agent", rt.Leads.AgentUpdate)
			r.Get("/leads/{id}/journal", rt.Journal.Timeline)
			r.Post("/leads/{id}/journal", rt.Journal.AddNote)
			r.Delete("/leads/{id}/journal/{entryID}", rt.Journal.DeleteEntry)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(entity.RoleAdmin))

				r.With(limit).Post("/leads", rt.Leads.CreateLead)
				r.Patch("/leads/{id}", rt.Leads.AdminUpdate)
				r.Put("/leads/{id}/assignment", rt.Leads.AssignLead)
				r.Put("/leads/{id}/action-item", rt.Leads.SaveActionItem)
				r.Delete("/leads/{id}", rt.Leads.Delete)

				r.Post("/leads/bulk/assign", rt.Bulk.Assign)
				r.Post("/leads/bulk/delete", rt.Bulk.Delete)
				r.Get("/leads/export.csv", rt.Export.Export)

				r.With(limit).Post("/imports", rt.Imports.Preview)
				r.Put("/imports/{id}/selection", rt.Imports.Select)
				r.Post("/imports/{id}/confirm", rt.Imports.Confirm)
				r.Delete("/imports/{id}", rt.Imports.Cancel)

				r.Get("/agents", rt.Users.Agents)
			})
		})
	})

	return r
}
