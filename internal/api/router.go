package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bankops/ledger-api/internal/api/handlers"
	"github.com/bankops/ledger-api/internal/config"
	"github.com/bankops/ledger-api/internal/middleware"
	"github.com/bankops/ledger-api/internal/services"
)

func NewRouter(cfg config.Config, ls *services.LedgerService, as *services.AccountService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())

	h := handlers.NewAccountsHandler(ls, as)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Delete("/", h.Delete)

		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
		r.Post("/transfer", h.Transfer)

		r.Get("/balance", h.Balance)
		r.Get("/average/{branch}", h.Average)
		r.Get("/lowest/{count}", h.Lowest)
		r.Get("/highest/{count}", h.Highest)
		r.Get("/private", h.Private)
	})

	return r
}
