package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/master-bet-engine/internal/shared/config"
	"github.com/radieske/master-bet-engine/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	plannerURL := os.Getenv("PLANNER_URL")
	if plannerURL == "" {
		plannerURL = "http://localhost:8080"
	}
	accountURL := os.Getenv("ACCOUNT_URL")
	if accountURL == "" {
		accountURL = "http://localhost:8082"
	}
	planner := rp(plannerURL)
	account := rp(accountURL)

	mux := http.NewServeMux()

	// planner (ex.: /api/planner/v1/plans -> planner-service /v1/plans)
	mux.Handle("/api/planner/", http.StripPrefix("/api/planner", planner))

	// accounts (ex.: /api/accounts/* -> account-service /accounts/*)
	mux.Handle("/api/accounts/", http.StripPrefix("/api", account))
	mux.Handle("/api/accounts", http.StripPrefix("/api", account))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

// CORS liberado para o cliente web local consumir a API direto do browser
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
