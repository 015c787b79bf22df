package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/sumapi/internal/auth"
	"github.com/example/sumapi/pkg/jsonutil"
	"go.uber.org/zap"
)

// issueKey stores key (or a fresh random one when empty) as active and writes
// the response produced by build.
func issueKey(w http.ResponseWriter, r *http.Request, store auth.APIKeyCreator, logger *zap.Logger, key, owner string, build func(key, created string) any) {
	if key == "" {
		var err error
		if key, err = auth.NewKey(); err != nil {
			jsonutil.Error(w, http.StatusInternalServerError, "key generation failed")
			return
		}
	}
	if err := store.Create(r.Context(), key, true, owner); err != nil {
		logger.Error("create api key failed", zap.String("api", auth.HashPrefix(key)), zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	logger.Info("api key issued", zap.String("api", auth.HashPrefix(key)), zap.String("owner", owner))
	jsonutil.JSON(w, http.StatusOK, build(key, time.Now().UTC().Format(time.RFC3339)))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		jsonutil.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "bad request")
		return false
	}
	return true
}
