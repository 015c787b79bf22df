package apihttp

import (
	"net/http"

	"github.com/example/sumapi/internal/auth"
	"github.com/example/sumapi/internal/logging"
	"github.com/example/sumapi/internal/rate"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes holds the handlers mounted by NewRouter. Admin and Signup are
// optional.
type Routes struct {
	Sum     http.Handler
	History http.Handler
	Admin   http.Handler
	Signup  http.Handler
}

// NewRouter wires routes and middlewares.
func NewRouter(rt Routes, lm *rate.LimiterMap, store auth.APIKeyStore, log *zap.Logger) http.Handler {
	log = logging.OrNop(log)
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(CORS)
	r.Use(RateLimit(lm))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				log.Warn("health check failed", zap.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("{\"status\":\"unhealthy\"}"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{\"status\":\"ok\"}"))
	})

	if rt.Admin != nil {
		r.Handle("/admin/create-key", rt.Admin)
	}
	if rt.Signup != nil {
		r.Handle("/public/signup", rt.Signup)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(Auth(store, log))
		api.Method(http.MethodPost, "/sum", rt.Sum)
		if rt.History != nil {
			api.Method(http.MethodGet, "/history", rt.History)
		}
	})

	return r
}
