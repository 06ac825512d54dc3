package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/shared/config"
	"github.com/viralfx/viralfx-platform/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func target(envKey, def string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	signal := rp(target("SIGNAL_URL", "http://localhost:8081"))
	wallet := rp(target("WALLET_URL", "http://localhost:8082"))
	market := rp(target("MARKET_URL", "http://localhost:8083"))
	user := rp(target("USER_URL", "http://localhost:8084"))

	mux := http.NewServeMux()

	// sinais/preços (ex.: /api/signals/* -> signal-service, inclui /ws)
	mux.Handle("/api/signals/", http.StripPrefix("/api/signals", signal))

	// carteira (ex.: /api/wallet/* -> wallet-service)
	mux.Handle("/api/wallet/", http.StripPrefix("/api/wallet", wallet))

	// mercados e apostas (ex.: /api/markets/* -> market-service)
	mux.Handle("/api/markets/", http.StripPrefix("/api/markets", market))

	// usuários/autenticação (ex.: /api/users/* -> user-service)
	mux.Handle("/api/users/", http.StripPrefix("/api/users", user))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
