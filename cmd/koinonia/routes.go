// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/koinonia/internal/handler"
	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/metrics"
	"github.com/olegiv/koinonia/internal/middleware"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/service"
	"github.com/olegiv/koinonia/internal/version"
)

// services groups the application services shared by the router, the
// scheduler and the CLI commands.
type services struct {
	policy     *service.AccessPolicy
	submit     *service.SubmissionService
	moderation *service.ModerationService
	posts      *service.AuthorshipService
	users      *service.UserService
	audit      *service.AuditService
	events     *service.EventService
	scan       *service.ScanService
}

func newServices(db *sql.DB) *services {
	policy := service.NewAccessPolicy(db)
	return &services{
		policy:     policy,
		submit:     service.NewSubmissionService(db),
		moderation: service.NewModerationService(db, policy),
		posts:      service.NewAuthorshipService(db),
		users:      service.NewUserService(db, policy),
		audit:      service.NewAuditService(db, policy),
		events:     service.NewEventService(db, policy),
		scan:       service.NewScanService(db, policy),
	}
}

// setMetrics attaches m to every service that records metrics.
func (s *services) setMetrics(m *metrics.Metrics) {
	s.submit.SetMetrics(m)
	s.moderation.SetMetrics(m)
	s.posts.SetMetrics(m)
	s.users.SetMetrics(m)
	s.scan.SetMetrics(m)
}

// routerConfig carries everything newRouter wires together.
type routerConfig struct {
	db             *sql.DB
	services       *services
	sessionManager *scs.SessionManager
	verifier       *identity.Verifier
	metrics        *metrics.Metrics
	jobs           handler.JobRegistry
	version        version.Info

	csrf           middleware.CSRFConfig
	requestTimeout time.Duration
	submitRate     float64
	submitBurst    int
}

// registerSubmissionRoutes registers the routes shared by both moderated
// collections. Routes: POST /, GET /approved, GET /pending, GET /list,
// PUT /approve. The last three are admin only.
func registerSubmissionRoutes(r chi.Router, kind model.Kind, h *handler.SubmissionsHandler, limiter *middleware.SubmitRateLimiter, requireAdmin func(http.Handler) http.Handler) {
	base := "/" + string(kind)
	r.With(limiter.Middleware).Post(base, h.Submit)
	r.Get(base+"/approved", h.Approved)

	admin := r.With(requireAdmin)
	admin.Get(base+"/pending", h.Pending)
	admin.Get(base+"/list", h.List)
	admin.Put(base+"/approve", h.Approve)
}

func newRouter(rc routerConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(rc.metrics.Middleware)
	r.Use(middleware.Timeout(rc.requestTimeout))
	r.Use(rc.sessionManager.LoadAndSave)
	r.Use(middleware.SkipCSRFForBearer)
	r.Use(middleware.CSRF(rc.csrf))
	r.Use(middleware.LoadIdentity(rc.verifier, rc.sessionManager))

	svc := rc.services
	healthHandler := handler.NewHealthHandler(rc.db, rc.version)
	postsHandler := handler.NewPostsHandler(svc.posts)
	adminHandler := handler.NewAdminHandler(svc.users, svc.audit, svc.events, svc.scan)
	authHandler := handler.NewAuthHandler(rc.verifier, rc.sessionManager, svc.users, svc.policy)

	requireAdmin := middleware.RequireAdmin(svc.policy)

	r.Get("/health", healthHandler.Health)

	limiter := middleware.NewSubmitRateLimiter(rc.submitRate, rc.submitBurst)
	for _, kind := range model.Kinds {
		registerSubmissionRoutes(r, kind, handler.NewSubmissionsHandler(kind, svc.submit, svc.moderation), limiter, requireAdmin)
	}

	r.Get("/feed", postsHandler.Feed)
	r.Post("/post", postsHandler.Create)
	r.Get("/post/{id}", postsHandler.Get)
	r.Delete("/post/{id}", postsHandler.Delete)
	r.Put("/publish/{id}", postsHandler.Publish)
	r.With(middleware.RequireIdentity).Get("/drafts", postsHandler.Drafts)

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin)

		r.Get("/users", adminHandler.ListUsers)
		r.Put("/users", adminHandler.SetAdmin)
		r.Get("/audit", adminHandler.Audit)
		r.Get("/audit/{targetKind}/{id}", adminHandler.AuditForTarget)
		r.Get("/events", adminHandler.Events)
		r.Get("/suspicious", adminHandler.Suspicious)

		if rc.jobs != nil {
			jobsHandler := handler.NewJobsHandler(rc.jobs)
			r.Get("/jobs", jobsHandler.List)
			r.Post("/jobs/{name}/run", jobsHandler.TriggerNow)
		}
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/admin-check", authHandler.AdminCheck)
		r.Post("/session", authHandler.Session)
		r.Post("/logout", authHandler.Logout)
	})

	return r
}
