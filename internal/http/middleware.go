package apihttp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/example/sumapi/internal/auth"
	"github.com/example/sumapi/internal/rate"
	"github.com/example/sumapi/pkg/jsonutil"
	"go.uber.org/zap"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "req_id"

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// RequestID middleware injects a random request id into context and response header.
// An incoming X-Request-ID is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			var b [8]byte
			_, _ = rand.Read(b[:])
			reqID = hex.EncodeToString(b[:])
		}
		r = r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID))
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) { s.status = code; s.ResponseWriter.WriteHeader(code) }

// keyHashSlot lets Auth, which runs further down the chain, report the caller
// back to Logger.
type keyHashSlot struct{ hp string }

type ctxKeySlot struct{}

// Logger logs one line per request.
func Logger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			slot := &keyHashSlot{}
			sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), ctxKeySlot{}, slot)))
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Int64("dur_ms", time.Since(start).Milliseconds()),
				zap.String("ip", rate.IPFromRequest(r)),
				zap.String("req_id", RequestIDFrom(r.Context())),
				zap.String("api", slot.hp),
			)
		})
	}
}

// CORS middleware: allows cross-origin requests for demo/testing clients.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Admin-Token")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit middleware enforces per-IP rate limiting.
func RateLimit(lm *rate.LimiterMap) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lm.Allow(rate.IPFromRequest(r)) {
				w.Header().Set("Retry-After", "60")
				jsonutil.Error(w, http.StatusTooManyRequests, "rate limited")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Auth middleware validates the X-API-Key header using the provided store.
func Auth(store auth.APIKeyStore, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				jsonutil.Error(w, http.StatusUnauthorized, "missing api key")
				return
			}
			if store == nil {
				jsonutil.Error(w, http.StatusServiceUnavailable, "no api key store configured")
				return
			}
			hp := auth.HashPrefix(key)
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			ok, err := store.Validate(ctx, key)
			if err != nil {
				log.Warn("api key validation failed", zap.String("api", hp), zap.Error(err))
				jsonutil.Error(w, http.StatusForbidden, "invalid api key")
				return
			}
			if !ok {
				jsonutil.Error(w, http.StatusForbidden, "invalid or inactive api key")
				return
			}
			if slot, _ := r.Context().Value(ctxKeySlot{}).(*keyHashSlot); slot != nil {
				slot.hp = hp
			}
			next.ServeHTTP(w, r.WithContext(auth.WithKeyHash(r.Context(), hp)))
		})
	}
}
