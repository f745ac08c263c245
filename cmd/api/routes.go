package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/dreamstudio-crm/internal/infra/http/handlers"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/http/middleware"
)

type routeDeps struct {
	Tokens      middleware.TokenParser
	Policy      middleware.Policy
	CorsOrigins []string

	Leads         *handlers.LeadHandler
	Payments      *handlers.PaymentHandler
	Notifications *handlers.NotificationHandler
	Pdfs          *handlers.PdfHandler
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
}

func newRouter(d routeDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Metrics)

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	// Public client-facing forms.
	r.Route("/client", func(r chi.Router) {
		r.Post("/leads", d.Leads.Create)
		r.Post("/sessions/{id}/pdf", d.Pdfs.Session)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", d.Auth.Login)
		r.Post("/logout", d.Auth.Logout)
	})

	authed := middleware.Auth(d.Tokens, d.Policy)

	r.Route("/shared", func(r chi.Router) {
		r.Use(authed)

		r.With(middleware.Require(middleware.CapViewLeads)).Get("/leads", d.Leads.List)
		r.With(middleware.Require(middleware.CapViewLeads)).Get("/leads/overdue", d.Leads.Overdue)
		r.With(middleware.Require(middleware.CapViewLeads)).Get("/leads/{id}", d.Leads.Get)
		r.With(middleware.Require(middleware.CapUpdateLeads)).Put("/leads/{id}/status", d.Leads.UpdateStatus)
		r.With(middleware.Require(middleware.CapUpdateLeads)).Put("/leads/{id}/hold", d.Leads.Hold)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Require(middleware.CapViewPayments))
			r.Get("/payments", d.Payments.List)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.Require(middleware.CapEditPayments))
			r.Post("/payments/{id}/process", d.Payments.Process)
			r.Post("/leads/{id}/payments", d.Payments.MakePayments)
			r.Post("/leads/{id}/extra-services", d.Payments.ExtraServices)
			r.Post("/invoices/{id}/notes", d.Payments.AddInvoiceNote)
		})

		r.With(middleware.Require(middleware.CapContracts)).Post("/contracts/{id}/pdf", d.Pdfs.Contract)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Require(middleware.CapNotifications))
			r.Get("/notifications", d.Notifications.List)
			r.Put("/notifications/{id}/read", d.Notifications.MarkRead)
			r.Get("/notifications/stream", d.Notifications.Stream)
		})
	})

	r.Route("/staff", func(r chi.Router) {
		r.Use(authed, middleware.Require(middleware.CapClaimLeads))
		r.Put("/leads/{id}/assign", d.Leads.Assign)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authed, middleware.Require(middleware.CapBulkAssign))
		r.Put("/leads/assign", d.Leads.BulkAssign)
	})

	return r
}
