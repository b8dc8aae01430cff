// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/eventhub/internal/auth"
	"github.com/tomtom215/eventhub/internal/authz"
	"github.com/tomtom215/eventhub/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. The auth middleware must be non-nil; a nil
// authz middleware leaves /admin to authentication alone and is only meant
// for tests.
func NewRouter(handler *Handler, authMw *auth.Middleware, authzMw *authz.Middleware, chiMw *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		auth:          authMw,
		authz:         authzMw,
		chiMiddleware: chiMw,
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// RequestID first so every later layer logs with it.
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health/live", router.handler.HealthLive)
		r.Get("/health/ready", router.handler.HealthReady)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			router.registerAuthRoutes(r)
			router.registerPublicRoutes(r)
			router.registerUserRoutes(r)
			router.registerAdminRoutes(r)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}

func (router *Router) registerAuthRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", router.handler.Register)
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
		r.With(router.auth.Authenticate).Post("/logout", router.handler.Logout)
	})
}

// registerPublicRoutes serves reads that work anonymously. A valid token
// personalizes them with is_favorited.
func (router *Router) registerPublicRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(router.auth.OptionalAuth)

		r.Get("/events", router.handler.ListEvents)
		r.Get("/events/{id}", router.handler.GetEvent)
		r.Get("/events/{id}/comments", router.handler.ListComments)
		r.Get("/ws", router.handler.WebSocket)
	})
}

func (router *Router) registerUserRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(router.auth.Authenticate)

		r.Post("/events", router.handler.CreateEvent)
		r.Put("/events/{id}", router.handler.UpdateEvent)
		r.Delete("/events/{id}", router.handler.DeleteEvent)
		r.Post("/events/{id}/favorite", router.handler.AddFavorite)
		r.Delete("/events/{id}/favorite", router.handler.RemoveFavorite)

		r.Post("/comments", router.handler.CreateComment)
		r.Delete("/comments/{id}", router.handler.DeleteComment)
		r.Post("/comments/{id}/report", router.handler.ReportComment)

		r.Get("/users/me", router.handler.GetProfile)
		r.Put("/users/me", router.handler.UpdateProfile)
		r.Get("/users/me/favorites", router.handler.ListFavorites)
	})
}

func (router *Router) registerAdminRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(router.auth.Authenticate)
		if router.authz != nil {
			r.Use(router.authz.AuthorizeRequest)
		}

		r.Post("/sync/external-events", router.handler.SyncExternalEvents)
		r.Get("/sync/status", router.handler.SyncStatus)
		r.Get("/audit", router.handler.AuditEvents)
	})
}
