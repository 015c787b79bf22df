package handlers

import (
	"net/http"

	"github.com/example/sumapi/internal/auth"
	"github.com/example/sumapi/internal/logging"
	"go.uber.org/zap"
)

// SignupHandler issues an API key without admin auth. For testing only.
type SignupHandler struct {
	Store  auth.APIKeyCreator
	Logger *zap.Logger
}

func NewSignupHandler(store auth.APIKeyCreator, logger *zap.Logger) *SignupHandler {
	return &SignupHandler{Store: store, Logger: logging.OrNop(logger)}
}

type signupRequest struct {
	Owner string `json:"owner"`
	Email string `json:"email"`
}

type signupResponse struct {
	Key     string `json:"key"`
	Active  bool   `json:"active"`
	Owner   string `json:"owner,omitempty"`
	Email   string `json:"email,omitempty"`
	Created string `json:"created_at"`
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	issueKey(w, r, h.Store, h.Logger, "", req.Owner, func(key, created string) any {
		return signupResponse{Key: key, Active: true, Owner: req.Owner, Email: req.Email, Created: created}
	})
}
