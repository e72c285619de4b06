package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the handlers and request limits the API is built from.
type RouterConfig struct {
	Accounts     *AccountHandler
	Transactions *TransactionHandler
	Emails       *EmailHandler
	DB           Pinger

	AllowedOrigins    []string
	RateLimitInterval time.Duration
	RateLimitBurst    int
}

func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(ContextualLoggerMiddleware)
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	r.Use(RateLimitMiddleware(cfg.RateLimitInterval, cfg.RateLimitBurst))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Extractos backend is running"})
	})
	r.Get("/health", HealthHandler(cfg.DB))

	r.Route("/api", func(r chi.Router) {
		r.Get("/accounts", cfg.Accounts.HandleListAccounts)
		r.Post("/accounts", cfg.Accounts.HandleCreateAccount)
		r.Get("/accounts/{id}", cfg.Accounts.HandleGetAccount)
		r.Put("/accounts/{id}", cfg.Accounts.HandleUpdateAccount)
		r.Delete("/accounts/{id}", cfg.Accounts.HandleDeleteAccount)

		r.Get("/accounts/{id}/transactions", cfg.Transactions.HandleGetTransactions)
		r.Delete("/accounts/{id}/transactions", cfg.Transactions.HandleDeleteTransactions)
		r.Post("/accounts/{id}/statements", cfg.Transactions.HandleImportStatement)

		r.Get("/emails", cfg.Emails.HandleListEmails)
		r.Post("/emails", cfg.Emails.HandleIngestEmail)
		r.Post("/emails/parse", cfg.Emails.HandleParseEmail)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			sendJSONError(w, "Not found", http.StatusNotFound)
			return
		}
		http.NotFound(w, r)
	})
	return r
}
