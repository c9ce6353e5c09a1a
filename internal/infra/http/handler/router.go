package handler

import (
	"net/http"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	internalMiddleware "github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/infra/http/middleware"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type RouterConfig struct {
	Transactions  *TransactionHandler
	Offers        *OfferHandler
	Notifications *NotificationHandler
	Sessions      *SessionHandler
	Presence      *PresenceHandler

	// PresenceSocket é o Hub ao vivo. Nil no modo static.
	PresenceSocket http.Handler

	Registry    *session.Registry
	Idempotency gateway.IdempotencyRepository
	Metrics     http.Handler

	RequestTimeout time.Duration
}

// NewRouter monta as rotas. Websockets ficam fora do Timeout porque vivem além da request.
func NewRouter(cfg RouterConfig) chi.Router {
	router := chi.NewRouter()

	// Middlewares básicos
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer) // Evita crash se der panic

	// Rota de Health Check (para o Docker saber se estamos vivos)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("Falha ao escrever resposta de health check")
		}
	})
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics)
	}

	router.Get("/presence", cfg.Presence.Snapshot)
	if cfg.PresenceSocket != nil {
		router.Handle("/presence/ws", cfg.PresenceSocket)
	}

	sessionMiddleware := internalMiddleware.Session(cfg.Registry)
	idempotencyMiddleware := internalMiddleware.Idempotency(cfg.Idempotency)

	router.Group(func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/notifications/stream", cfg.Notifications.Stream)
	})

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(sessionMiddleware)

		r.Route("/transactions", func(r chi.Router) {
			r.With(idempotencyMiddleware).Post("/", cfg.Transactions.Create)
			r.Get("/", cfg.Transactions.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.Transactions.Get)
				r.With(idempotencyMiddleware).Post("/offers", cfg.Offers.Create)
				r.Get("/offers", cfg.Offers.List)
				r.Post("/settle", cfg.Transactions.Settle)
				r.Post("/cancel", cfg.Transactions.Cancel)
			})
		})
		r.Post("/offers/{id}/resolve", cfg.Offers.Resolve)

		r.Get("/notifications", cfg.Notifications.List)
		r.Get("/notifications/unread", cfg.Notifications.Unread)
		r.Get("/notifications/approval", cfg.Notifications.Approval)
		r.Post("/notifications/{id}/read", cfg.Notifications.MarkRead)

		r.Post("/session/signout", cfg.Sessions.SignOut)
	})

	return router
}
