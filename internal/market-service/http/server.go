package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/market-service/dto"
	"github.com/viralfx/viralfx-platform/internal/market-service/price"
	"github.com/viralfx/viralfx-platform/internal/market-service/repo"
	"github.com/viralfx/viralfx-platform/internal/market-service/wallet"
	"github.com/viralfx/viralfx-platform/pkg/contracts/jobs"
)

// Publisher publica jobs nas filas dos workers
type Publisher interface {
	PublishNewBet(ctx context.Context, j jobs.NewBetJob) error
	PublishSettlement(ctx context.Context, j jobs.SettlementJob) error
	PublishClose(ctx context.Context, j jobs.CloseJob) error
}

type Server struct {
	log   *zap.Logger
	repo  *repo.Postgres
	price *price.Validator
	wcli  *wallet.Client
	publ  Publisher
}

func NewServer(log *zap.Logger, r *repo.Postgres, v *price.Validator, w *wallet.Client, p Publisher) *Server {
	return &Server{log: log, repo: r, price: v, wcli: w, publ: p}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/markets", s.listMarkets)
	r.Post("/v1/markets", s.createMarket)
	r.Get("/v1/markets/{id}", s.getMarket)
	r.Post("/v1/markets/{id}/settle", s.settleMarket) // admin: enfileira liquidação
	r.Post("/v1/markets/{id}/close", s.closeMarket)   // admin: enfileira fechamento
	r.Post("/v1/bets", s.placeBet)
	r.Get("/v1/bets/{id}", s.getBetStatus)
	return r
}

// createMarket cria um mercado OPEN com seus outcomes
func (s *Server) createMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Question == "" || len(req.Outcomes) < 2 || req.ClosesAt.Before(time.Now()) {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	method := req.SettlementMethod
	if method == "" {
		method = string(jobs.MethodAutomatic)
	}
	if method != string(jobs.MethodManual) && method != string(jobs.MethodAutomatic) {
		http.Error(w, "invalid settlementMethod", http.StatusBadRequest)
		return
	}

	id, err := s.repo.CreateMarket(r.Context(), &repo.Market{
		Question:         req.Question,
		Category:         req.Category,
		SettlementMethod: method,
		ClosesAt:         req.ClosesAt,
	}, req.Outcomes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreateMarketResponse{MarketID: id, Status: repo.MarketOpen})
}

func (s *Server) listMarkets(w http.ResponseWriter, r *http.Request) {
	ms, err := s.repo.ListMarkets(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) getMarket(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.GetMarket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// placeBet recebe a aposta, valida preço corrente, reserva saldo e enfileira o job
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.MarketID == "" || req.OutcomeID == "" || req.AmountCents <= 0 || req.Price <= 0 || req.Price >= 1 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	// 1) valida preço corrente no cache; cache frio não bloqueia a aposta
	if cur, err := s.price.CurrentPrice(r.Context(), req.MarketID, req.OutcomeID); err == nil {
		if price.Drifted(req.Price, cur) {
			http.Error(w, "price changed", http.StatusConflict)
			return
		}
	}

	// 2) cria aposta PENDING
	betID, err := s.repo.CreatePendingBet(r.Context(), &repo.Bet{
		UserID:      req.UserID,
		MarketID:    req.MarketID,
		OutcomeID:   req.OutcomeID,
		AmountCents: req.AmountCents,
		Price:       req.Price,
	})
	if err != nil {
		switch err {
		case repo.ErrMarketNotOpen, repo.ErrUnknownOutcome:
			http.Error(w, err.Error(), http.StatusConflict)
		case sql.ErrNoRows:
			http.Error(w, "market not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	// 3) reserva saldo via wallet (external_ref = betID)
	if _, err := s.wcli.Reserve(r.Context(), req.UserID, req.AmountCents, betID); err != nil {
		http.Error(w, "wallet reserve failed", http.StatusConflict)
		return
	}

	// 4) enfileira process-new-bet
	if err := s.publ.PublishNewBet(r.Context(), jobs.NewBetJob{
		BetID:       betID,
		MarketID:    req.MarketID,
		OutcomeID:   req.OutcomeID,
		UserID:      req.UserID,
		AmountCents: req.AmountCents,
	}); err != nil {
		s.log.Error("publish new bet", zap.String("betId", betID), zap.Error(err))
	}

	writeJSON(w, http.StatusAccepted, dto.PlaceBetResponse{BetID: betID, Status: repo.BetPending})
}

func (s *Server) getBetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.repo.GetBetStatus(r.Context(), id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.BetStatusResponse{BetID: id, Status: st})
}

// settleMarket enfileira um job process-market-settlement para o settlement-worker
func (s *Server) settleMarket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.SettleMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	method := jobs.SettlementMethod(req.SettlementMethod)
	if method == jobs.MethodManual && req.WinningOutcomeID == "" {
		http.Error(w, "winningOutcomeId required for MANUAL", http.StatusBadRequest)
		return
	}

	if err := s.publ.PublishSettlement(r.Context(), jobs.SettlementJob{
		MarketID:         id,
		Reason:           req.Reason,
		WinningOutcomeID: req.WinningOutcomeID,
		SettlementMethod: method,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, dto.EnqueuedResponse{MarketID: id, Job: jobs.ProcessMarketSettlement, Status: "ENQUEUED"})
}

// closeMarket enfileira um job auto-close-market
func (s *Server) closeMarket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.CloseMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if err := s.publ.PublishClose(r.Context(), jobs.CloseJob{MarketID: id, Reason: req.Reason}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, dto.EnqueuedResponse{MarketID: id, Job: jobs.AutoCloseMarket, Status: "ENQUEUED"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
