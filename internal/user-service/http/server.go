package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/viralfx/viralfx-platform/internal/user-service/auth"
	"github.com/viralfx/viralfx-platform/internal/user-service/dto"
	"github.com/viralfx/viralfx-platform/internal/user-service/repo"
)

// Server expõe os endpoints de cadastro/login/troca de senha
type Server struct {
	log      *zap.Logger
	repo     *repo.Postgres
	sessions *auth.SessionStore
}

func NewServer(log *zap.Logger, r *repo.Postgres, s *auth.SessionStore) *Server {
	return &Server{log: log, repo: r, sessions: s}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/auth/register", s.register)
	r.Post("/v1/auth/login", s.login)
	r.Post("/v1/auth/logout", s.logout)
	r.Post("/v1/auth/password", s.changePassword)
	r.Get("/v1/users/me", s.me)
	return r
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	role := req.Role
	if role == "" {
		role = "user"
	}

	id, err := s.repo.Create(r.Context(), &repo.User{
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Role:         role,
	})
	if err != nil {
		if err == repo.ErrEmailTaken {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserResponse{
		UserID: id, Email: strings.ToLower(req.Email), DisplayName: req.DisplayName, Role: role,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := s.repo.GetByEmail(r.Context(), strings.ToLower(req.Email))
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		// mesma resposta pra usuário inexistente e senha errada
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := s.sessions.Create(r.Context(), u.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.UserResponse{UserID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role},
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	if err := s.sessions.Revoke(r.Context(), token); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := s.repo.GetByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.OldPassword) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.repo.UpdatePassword(r.Context(), userID, hash); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"PASSWORD_CHANGED"}`))
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	u, err := s.repo.GetByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.UserResponse{UserID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role})
}

// authenticate resolve o Bearer token pra um userID ou responde 401
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return "", false
	}
	userID, err := s.sessions.UserID(r.Context(), token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return "", false
	}
	if userID == "" {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
