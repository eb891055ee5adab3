package main

import (
	"encoding/json"
	"net/http"

	"api-guard/bootstrap"
	"api-guard/middleware/auth"
	authdomain "api-guard/middleware/auth/domain"
	rateinfra "api-guard/middleware/ratelimit/infra"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type meResponse struct {
	Authenticated bool   `json:"authenticated"`
	Subject       string `json:"subject,omitempty"`
	Role          string `json:"role,omitempty"`
}

func newRouter(p *bootstrap.Pipeline, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if mem, ok := p.Stats.(*rateinfra.MemoryStatsStore); ok {
		r.Get("/debug/ratelimit", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(mem.Snapshot())
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(p.Chain.Middleware)

		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			resp := meResponse{}
			if id, ok := auth.IdentityFromContext(r.Context()); ok {
				resp = meResponse{Authenticated: true, Subject: id.Subject, Role: string(id.Role)}
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		})

		r.With(auth.RequireRole(authdomain.RoleAdmin)).Get("/admin/ping", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("pong\n"))
		})
	})
	return r
}
