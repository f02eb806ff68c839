package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-auth-service/internal/application/auth"
	"github.com/go-auth-service/internal/domain"
)

// AuthHandler handles signup, login, 2FA and token endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.Signup(r.Context(), req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "User created successfully!"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if result.TwoFactor {
		writeJSON(w, http.StatusPartialContent, TwoFAEnvelope{
			Message:        "2FA required",
			LoginAttemptID: result.LoginAttemptID,
		})
		return
	}
	setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	var req auth.Verify2FARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session, err := h.svc.Verify2FA(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	setSessionCookie(w, session.Token, session.ExpiresAt)
	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(SessionCookieName); err == nil {
		token = c.Value
	}
	if err := h.svc.Logout(r.Context(), token); err != nil {
		writeServiceError(w, err)
		return
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.VerifyToken(r.Context(), req.Token); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrMissingToken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrIncorrectCredentials), errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "unexpected error")
	}
}
