package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sevigo/code-review-api/internal/auth"
)

// AuthHandler serves registration, login and the authenticated greeting.
type AuthHandler struct {
	service  *auth.Service
	maxBytes int64
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service *auth.Service, maxBytes int64, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, maxBytes: maxBytes, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(w, r, h.maxBytes, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.service.Register(r.Context(), in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, messageBody{Message: "User registered successfully"})
	case errors.Is(err, auth.ErrUsernameTaken),
		errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("registration failed", "username", in.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, h.maxBytes, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.service.Login(r.Context(), in.Username, in.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.Error("login failed", "username", in.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Secure handles GET /secure-endpoint.
func (h *AuthHandler) Secure(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		unauthorized(w, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{
		Message: fmt.Sprintf("Hello %s, you are authenticated", user.Name),
	})
}
