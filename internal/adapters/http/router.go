package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KB-design87/plundora-backend/internal/application"
	"github.com/KB-design87/plundora-backend/internal/ports"
)

// Handler is the HTTP adapter entrypoint for payment use-cases.
// Keeping only application and token dependencies here preserves clean
// adapter boundaries.
type Handler struct {
	service *application.Service
	tokens  ports.TokenVerifier
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service, tokens ports.TokenVerifier) *Handler {
	return &Handler{service: service, tokens: tokens}
}

// NewRouter registers payment HTTP routes and the middleware stack.
// The webhook route is deliberately outside the bearer-auth group: the
// gateway authenticates with its signature header, not a user token.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/payments/v1", func(r chi.Router) {
		r.Post("/webhook", handler.gatewayWebhook)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/intents", handler.createIntent)
			r.Get("/payments", handler.listPayments)
			r.Get("/payments/{payment_id}", handler.getPayment)
			r.Post("/payments/{payment_id}/refund", handler.refundPayment)
			r.Get("/analytics/summary", handler.analyticsSummary)
		})
	})

	return r
}
