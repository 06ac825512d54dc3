package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/viralfx/viralfx-platform/internal/signal-service/cache"
	"github.com/viralfx/viralfx-platform/internal/signal-service/dto"
	"github.com/viralfx/viralfx-platform/internal/signal-service/repo"
)

// API expõe os endpoints REST de consulta de mercados e preços
// Utiliza um repositório de leitura (Postgres) e cache (Redis)
type API struct {
	ReadRepo *repo.ReadRepo // acesso ao banco de dados
	Cache    *cache.Cache   // cache de preços
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/markets", a.listMarkets)             // Lista mercados ativos
	r.Get("/v1/markets/{id}/prices", a.getPrices)   // Preços correntes de um mercado
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listMarkets retorna os mercados abertos/fechados mais próximos do fechamento
func (a *API) listMarkets(w http.ResponseWriter, r *http.Request) {
	ms, err := a.ReadRepo.ListMarkets(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

// getPrices retorna os preços de um mercado, preferencialmente do cache
func (a *API) getPrices(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fromCache []dto.OutcomePrice
	if ok, _ := a.Cache.GetPrices(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	prices, err := a.ReadRepo.GetPricesByMarket(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	_ = a.Cache.SetPrices(r.Context(), id, prices, 30*time.Second) // salva no cache por 30s
	writeJSON(w, http.StatusOK, prices)
}
