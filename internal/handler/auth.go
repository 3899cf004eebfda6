package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rtb-ict/devicehub/internal/auth"
	"github.com/rtb-ict/devicehub/internal/flow"
	"github.com/rtb-ict/devicehub/internal/middleware"
	"github.com/rtb-ict/devicehub/internal/session"
)

// AuthHandler exposes the login, OTP and password-reset steps. It owns the
// browser-key cookie; all state transitions go through the flow manager.
type AuthHandler struct {
	flows     *flow.Manager
	cookieTTL int
	logger    *slog.Logger
}

func NewAuthHandler(flows *flow.Manager, cookieTTLSeconds int, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{flows: flows, cookieTTL: cookieTTLSeconds, logger: logger}
}

// browserKey returns the key identifying this browser, minting one and
// setting the cookie when the request carries none. The same cookie tracks
// the pending flow before authentication and the session after it.
func (h *AuthHandler) browserKey(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	key, err := session.NewKey()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    key,
		Path:     "/",
		MaxAge:   h.cookieTTL,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	return key, nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	key, err := h.browserKey(w, r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	msg, err := h.flows.Login(r.Context(), key, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.OTP == "" {
		writeMessage(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	key, err := h.browserKey(w, r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	sess, err := h.flows.VerifyOTP(r.Context(), key, req.Email, req.OTP)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    sess.User,
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	key, err := h.browserKey(w, r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	msg, err := h.flows.ForgotPassword(r.Context(), key, req.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

func (h *AuthHandler) VerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.OTP == "" {
		writeMessage(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	key, err := h.browserKey(w, r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	msg, err := h.flows.VerifyResetOTP(r.Context(), key, req.Email, req.OTP)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		writeMessage(w, http.StatusBadRequest, "Email, OTP and new password are required")
		return
	}

	key, err := h.browserKey(w, r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	msg, err := h.flows.ResetPassword(r.Context(), key, req.Email, req.OTP, req.NewPassword)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

// Logout clears the session and pending state for this browser. It succeeds
// even when nothing was logged in.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.flows.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("logout", "error", err)
		}
	}
	clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logged out")
}

// Me returns the authenticated profile. It sits behind the session guard, so
// the context always carries one.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.User(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
