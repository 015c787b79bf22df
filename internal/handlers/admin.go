package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/example/sumapi/internal/auth"
	"github.com/example/sumapi/internal/logging"
	"github.com/example/sumapi/pkg/jsonutil"
	"go.uber.org/zap"
)

// AdminHandler provides admin-only endpoints like creating API keys.
type AdminHandler struct {
	Store      auth.APIKeyCreator
	AdminToken string
	Logger     *zap.Logger
}

func NewAdminHandler(store auth.APIKeyCreator, adminToken string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Store: store, AdminToken: adminToken, Logger: logging.OrNop(logger)}
}

// createKeyRequest is the request payload for creating a key.
// If Key is empty, a random 32-byte hex string will be generated.
type createKeyRequest struct {
	Key   string `json:"key"`
	Owner string `json:"owner"`
}

type createKeyResponse struct {
	Key     string `json:"key"`
	Active  bool   `json:"active"`
	Owner   string `json:"owner,omitempty"`
	Created string `json:"created_at"`
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	got := r.Header.Get("X-Admin-Token")
	return h.AdminToken != "" && subtle.ConstantTimeCompare([]byte(got), []byte(h.AdminToken)) == 1
}

// ServeHTTP handles POST /admin/create-key
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && !h.authorized(r) {
		jsonutil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	issueKey(w, r, h.Store, h.Logger, req.Key, req.Owner, func(key, created string) any {
		return createKeyResponse{Key: key, Active: true, Owner: req.Owner, Created: created}
	})
}
