package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/baharkarakas/netbank-dashboard/internal/api/httpx"
	"github.com/baharkarakas/netbank-dashboard/internal/auth"
	"github.com/baharkarakas/netbank-dashboard/internal/middleware"
	"github.com/baharkarakas/netbank-dashboard/internal/services"
)

type AuthHandler struct {
	Logins *services.LoginService
	Views  *services.DashboardService
}

func NewAuthHandler(ls *services.LoginService, ds *services.DashboardService) *AuthHandler {
	return &AuthHandler{Logins: ls, Views: ds}
}

type loginReq struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int64          `json:"expires_in"` // seconds until the access token expires
	User         *auth.Identity `json:"user,omitempty"`
}

func newTokenResp(p auth.TokenPair, ident *auth.Identity) tokenResp {
	return tokenResp{
		AccessToken:  p.Access,
		RefreshToken: p.Refresh,
		ExpiresIn:    int64(time.Until(p.AccessExp).Truncate(time.Second).Seconds()),
		User:         ident,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	// No field validation here: every mismatch, empty or oversized input
	// included, goes through the gate and gets the same delayed rejection.
	pair, ident, err := h.Logins.Login(r.Context(), req.UserID, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", auth.RejectionMessage, nil)
		return
	case r.Context().Err() != nil:
		// client went away during the login delay
		return
	case err != nil:
		slog.Error("login", "err", err, "request_id", middleware.RequestIDFrom(r.Context()))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "login failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newTokenResp(pair, &ident))
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := httpx.DecodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request", nil)
		return
	}
	pair, err := h.Logins.Refresh(req.RefreshToken)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid refresh token", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newTokenResp(pair, nil))
}

// Logout clears the caller's dashboard view state. Tokens are stateless and
// simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.FromCtx(r.Context())
	h.Views.Forget(u.Subject)
	h.Logins.Logout(u.Subject)
	w.WriteHeader(http.StatusNoContent)
}
