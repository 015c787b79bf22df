package handlers

import (
	"net/http"
	"strconv"

	"github.com/example/sumapi/internal/history"
	"github.com/example/sumapi/internal/logging"
	"github.com/example/sumapi/pkg/jsonutil"
	"go.uber.org/zap"
)

// HistoryHandler serves GET /api/history?limit=N.
type HistoryHandler struct {
	Recorder     history.Recorder
	DefaultLimit int
	Logger       *zap.Logger
}

func NewHistoryHandler(rec history.Recorder, defaultLimit int, logger *zap.Logger) *HistoryHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &HistoryHandler{Recorder: rec, DefaultLimit: defaultLimit, Logger: logging.OrNop(logger)}
}

type historyResponse struct {
	Entries []history.Entry `json:"entries"`
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Recorder == nil {
		jsonutil.Error(w, http.StatusServiceUnavailable, "history disabled")
		return
	}
	limit := h.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonutil.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		// never return more than the configured page size
		limit = min(n, h.DefaultLimit)
	}
	entries, err := h.Recorder.Recent(r.Context(), limit)
	if err != nil {
		h.Logger.Error("history lookup failed", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	jsonutil.JSON(w, http.StatusOK, historyResponse{Entries: entries})
}
