package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/DaniRico987/Sagittarius/internal/core/services"
	"github.com/DaniRico987/Sagittarius/pkg/middleware"
)

type AuthHandler struct {
	authSvc *services.AuthService
}

func NewAuthHandler(a *services.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: a}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "auth handler - register - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	res, err := h.authSvc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - register failed", "email", req.Email, "err", err)
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "auth handler - register success", "user_id", res.User.ID)
	writeJSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "auth handler - login - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	res, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - login failed", "email", req.Email)
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "auth handler - login success", "user_id", res.User.ID)
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "auth handler - reset password - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.authSvc.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		log.ErrorContext(r.Context(), "auth handler - reset password failed", "email", req.Email, "err", err)
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "auth handler - reset password success", "email", req.Email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
