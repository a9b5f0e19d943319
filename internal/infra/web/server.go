// File: internal/infra/web/server.go
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"guildahub/internal/domain/ports/adapter"
	"guildahub/internal/usecase"
)

type Server struct {
	paymentUC usecase.PaymentUseCase
	statusUC  usecase.StatusUseCase
	webhookUC usecase.WebhookUseCase
	sessionUC usecase.SessionUseCase
	signupUC  usecase.SignupUseCase
	lookup    adapter.NicknameLookup
	verifier  adapter.IdentityVerifier
	log       *zerolog.Logger
}

func NewServer(
	paymentUC usecase.PaymentUseCase,
	statusUC usecase.StatusUseCase,
	webhookUC usecase.WebhookUseCase,
	sessionUC usecase.SessionUseCase,
	signupUC usecase.SignupUseCase,
	lookup adapter.NicknameLookup,
	verifier adapter.IdentityVerifier,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		paymentUC: paymentUC,
		statusUC:  statusUC,
		webhookUC: webhookUC,
		sessionUC: sessionUC,
		signupUC:  signupUC,
		lookup:    lookup,
		verifier:  verifier,
		log:       &l,
	}
}

// Router assembles the public HTTP surface.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Provider pushes carry no bearer token; the webhook re-fetches the
	// payment from the provider instead of trusting the delivery.
	r.Post("/api/payments/webhook", s.handleWebhook)
	r.Get("/api/players/nickname", s.handleNickname)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/api/payments/pix", s.handleCreatePix)
		r.Get("/api/payments/status", s.handlePaymentStatus)
		r.Post("/api/session", s.handleSessionResolve)
		r.Delete("/api/session", s.handleLogout)
		r.Post("/api/signup", s.handleSignup)
	})

	return r
}
