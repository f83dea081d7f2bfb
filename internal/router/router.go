// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains for the
// catalog API. Read routes are public; write routes live under /admin
// with a stricter rate limit.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ecomcat/internal/handlers"
	"ecomcat/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(categories *handlers.Categories, products *handlers.Products, packs *handlers.ComboPacks, images *handlers.Images) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	// Public read API.
	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.Get("/{id}", categories.Get)
			r.Get("/{id}/products", products.ByCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/featured", products.Featured)
			r.Get("/combo/{id}", products.ComboDetails)
			r.Get("/{id}", products.Get)
		})

		r.Route("/combo-packs", func(r chi.Router) {
			r.Get("/", packs.List)
			r.Get("/{id}", packs.Get)
		})
	})

	// Admin write API. Rate limited per client; writes are heavier than
	// the cached reads above.
	writeLimiter := middleware.NewRateLimiter(60, time.Minute)
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(writeLimiter.Middleware)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categories.Create)
			r.Put("/{id}", categories.Update)
			r.Delete("/{id}", categories.Delete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", products.Create)
			r.Put("/{id}", products.Update)
			r.Delete("/{id}", products.Delete)
			r.Post("/{id}/restore", products.Restore)
		})

		r.Route("/combo-packs", func(r chi.Router) {
			r.Post("/", packs.Create)
			r.Put("/{id}", packs.Update)
			r.Delete("/{id}", packs.Delete)
		})

		r.Post("/images", images.Upload)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
