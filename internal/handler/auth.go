// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/salon-go/internal/middleware"
	"github.com/olegiv/salon-go/internal/model"
	"github.com/olegiv/salon-go/internal/service"
	"github.com/olegiv/salon-go/internal/session"
)

// Messages returned by the /api/login family.
const (
	MsgLoginSuccess       = "Login successful"
	MsgInvalidCredentials = "Invalid email or password"
	MsgMissingCredentials = "Email and password are required"
	MsgInvalidBody        = "Invalid request body"
	MsgResetSent          = "Password reset email sent. Check your inbox."
	MsgMissingEmail       = "Please enter your email"
	MsgResetFailed        = "Failed to send reset email"
	MsgPasswordUpdated    = "Password updated successfully"
	MsgPasswordTooShort   = "Password must be at least 6 characters"
	MsgInvalidResetToken  = "Invalid or expired reset token"
	MsgUpdateFailed       = "Failed to update password"
	MsgLoggedOut          = "Logged out"
)

// AuthHandler handles login, logout and the password reset flow.
type AuthHandler struct {
	auth            *service.AuthService
	events          *service.EventService
	sessionManager  *scs.SessionManager
	cookie          middleware.AdminCookie
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. sm and lp may be nil.
func NewAuthHandler(auth *service.AuthService, events *service.EventService, sm *scs.SessionManager, cookie middleware.AdminCookie, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		auth:            auth,
		events:          events,
		sessionManager:  sm,
		cookie:          cookie,
		loginProtection: lp,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeMessage(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	ctx := r.Context()
	info := requestInfo(r)
	email := strings.TrimSpace(req.Email)

	if h.loginProtection != nil && email != "" {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.logAuth(r, model.EventLevelWarning, "Login attempt on locked account", map[string]any{"email": email})
			writeMessage(w, http.StatusTooManyRequests, "Too many failed attempts. Try again in "+formatDuration(remaining)+".")
			return
		}
	}

	user, err := h.auth.Login(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeMessage(w, http.StatusBadRequest, MsgMissingCredentials)
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		slog.Debug("invalid login attempt", "email", email, "ip", info.IP)
		h.logAuth(r, model.EventLevelWarning, "Login failed", map[string]any{"email": email})
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				h.logAuth(r, model.EventLevelWarning, "Account locked due to failed attempts", map[string]any{"email": email, "duration": lockDuration.String()})
				writeMessage(w, http.StatusTooManyRequests, "Too many failed attempts. Try again in "+formatDuration(lockDuration)+".")
				return
			}
		}
		writeMessage(w, http.StatusBadRequest, MsgInvalidCredentials)
		return
	case err != nil:
		slog.Error("login failed", "error", err, "category", model.EventCategoryAuth)
		writeMessage(w, http.StatusInternalServerError, GenericErrorMessage)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if h.sessionManager != nil {
		// Regenerate session ID to prevent session fixation
		if err := h.sessionManager.RenewToken(ctx); err != nil {
			slog.Error("session renewal error", "error", err)
			writeMessage(w, http.StatusInternalServerError, GenericErrorMessage)
			return
		}
		session.SetAdminEmail(ctx, h.sessionManager, user.Email)
	}

	h.cookie.Issue(w)

	slog.Info("admin logged in", "user_id", user.ID, "email", user.Email)
	h.logAuth(r, model.EventLevelInfo, "Admin logged in", map[string]any{"email": user.Email})

	WriteJSON(w, http.StatusOK, MessageResponse{Message: MsgLoginSuccess, User: user})
}

// RequestReset handles PUT /api/login, the first phase of a password reset.
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeMessage(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	err := h.auth.RequestReset(r.Context(), req.Email)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeMessage(w, http.StatusBadRequest, MsgMissingEmail)
		return
	case errors.Is(err, service.ErrUserNotFound):
		h.logAuth(r, model.EventLevelWarning, "Password reset requested for unknown email", map[string]any{"email": strings.TrimSpace(req.Email)})
		writeMessage(w, http.StatusBadRequest, MsgResetFailed)
		return
	case err != nil:
		slog.Error("password reset request failed", "error", err, "category", model.EventCategoryMail)
		writeMessage(w, http.StatusBadRequest, MsgResetFailed)
		return
	}

	h.logAuth(r, model.EventLevelInfo, "Password reset email sent", map[string]any{"email": strings.TrimSpace(req.Email)})
	writeMessage(w, http.StatusOK, MsgResetSent)
}

// ResetPassword handles PATCH /api/login, the second phase of a password reset.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeMessage(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	email := strings.TrimSpace(req.Email)
	err := h.auth.ResetPassword(r.Context(), req.Email, req.Password, req.Token)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeMessage(w, http.StatusBadRequest, MsgMissingCredentials)
		return
	case errors.Is(err, service.ErrPasswordTooShort):
		writeMessage(w, http.StatusBadRequest, MsgPasswordTooShort)
		return
	case errors.Is(err, service.ErrInvalidResetToken):
		h.logAuth(r, model.EventLevelWarning, "Password reset with invalid token", map[string]any{"email": email})
		writeMessage(w, http.StatusBadRequest, MsgInvalidResetToken)
		return
	case errors.Is(err, service.ErrUserNotFound):
		writeMessage(w, http.StatusBadRequest, MsgUpdateFailed)
		return
	case err != nil:
		slog.Error("password reset failed", "error", err, "category", model.EventCategoryAuth)
		writeMessage(w, http.StatusBadRequest, MsgUpdateFailed)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}
	h.logAuth(r, model.EventLevelInfo, "Password updated", map[string]any{"email": email})
	writeMessage(w, http.StatusOK, MsgPasswordUpdated)
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.sessionManager != nil {
		email := session.AdminEmail(r.Context(), h.sessionManager)
		if err := h.sessionManager.Destroy(r.Context()); err != nil {
			slog.Error("failed to destroy session", "error", err)
		}
		if email != "" {
			h.logAuth(r, model.EventLevelInfo, "Admin logged out", map[string]any{"email": email})
		}
	}

	h.cookie.Clear(w)
	writeMessage(w, http.StatusOK, MsgLoggedOut)
}

func (h *AuthHandler) logAuth(r *http.Request, level, message string, metadata map[string]any) {
	if h.events == nil {
		return
	}
	_ = h.events.LogAuthEvent(r.Context(), level, message, requestInfo(r), metadata)
}
