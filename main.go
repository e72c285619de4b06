package main

import (
	"context"
	"crypto/tls"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/extractos/backend/src/config"
	"github.com/username/extractos/backend/src/database"
	"github.com/username/extractos/backend/src/handlers"
	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/model"
	"github.com/username/extractos/backend/src/services"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Extractos backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	defer database.DB.Close()

	appCache := cache.New(config.Cfg.CacheExpiration, config.Cfg.CacheCleanupInterval)

	accountStore := model.NewAccountStore(database.DB)
	transactionStore := model.NewTransactionStore(database.DB)
	emailStore := model.NewEmailStore(database.DB)

	accountService := services.NewAccountService(accountStore, appCache)
	statementService := services.NewStatementService(accountStore, transactionStore, appCache)
	emailService := services.NewEmailService(emailStore, appCache)

	router := handlers.NewRouter(handlers.RouterConfig{
		Accounts:          handlers.NewAccountHandler(accountService),
		Transactions:      handlers.NewTransactionHandler(statementService, config.Cfg.MaxUploadSizeBytes),
		Emails:            handlers.NewEmailHandler(emailService),
		DB:                database.DB,
		AllowedOrigins:    config.Cfg.AllowedOrigins,
		RateLimitInterval: config.Cfg.RateLimitInterval,
		RateLimitBurst:    config.Cfg.RateLimitBurst,
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      proxyHeadersMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			stdlog.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.L.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.L.Error("Graceful shutdown failed", "error", err)
	}
}
