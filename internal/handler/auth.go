package handler

import (
	"log/slog"
	"net/http"

	"exchange_go/internal/domain"
)

// AuthHandler hands out disposable subscription credentials. The token
// mechanism itself is opaque to this layer; it only forwards whatever
// the issuer mints.
type AuthHandler struct {
	issuer domain.TokenIssuer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(issuer domain.TokenIssuer) *AuthHandler {
	return &AuthHandler{issuer: issuer}
}

// tokenResponse is the JSON response for GET /auth.
type tokenResponse struct {
	Token string `json:"token"`
}

// GetToken handles GET /auth. Tokens are short-lived and single-use, so
// the response must never be cached.
func (h *AuthHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.issuer.Issue(r.Context())
	if err != nil {
		slog.Error("token issue failed", slog.Any("error", err))
		WriteError(w, http.StatusInternalServerError, "internal_error", "unable to issue token")
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}
