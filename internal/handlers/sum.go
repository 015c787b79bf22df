package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/example/sumapi/internal/auth"
	"github.com/example/sumapi/internal/cache"
	"github.com/example/sumapi/internal/history"
	"github.com/example/sumapi/internal/logging"
	"github.com/example/sumapi/internal/types"
	"github.com/example/sumapi/pkg/jsonutil"
	"github.com/example/sumapi/pkg/strcalc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SumDeps bundles dependencies needed by the handler. History and Logger may
// be nil.
type SumDeps struct {
	Calc           strcalc.Calculator
	Cache          *cache.Cache
	History        history.Recorder
	Logger         *zap.Logger
	Timeout        time.Duration
	MaxConcurrency int
	MaxInputs      int
}

type SumHandler struct{ Deps SumDeps }

func NewSumHandler(deps SumDeps) *SumHandler {
	deps.Logger = logging.OrNop(deps.Logger)
	if deps.MaxConcurrency <= 0 {
		deps.MaxConcurrency = 1
	}
	if deps.MaxInputs <= 0 {
		deps.MaxInputs = 100
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &SumHandler{Deps: deps}
}

func dedupe(in []string) []string {
	m := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := m[s]; ok {
			continue
		}
		m[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (h *SumHandler) cacheKey(input string) string {
	return strconv.Itoa(h.Deps.Calc.Ceiling) + "|" + input
}

func (h *SumHandler) evaluate(ctx context.Context, input string) (cache.Value, string, error) {
	compute := func(context.Context) (cache.Value, error) {
		res, err := h.Deps.Calc.Evaluate(input)
		if err != nil {
			return cache.Value{}, err
		}
		return cache.Value{Sum: res.Sum, Delimiters: res.Delimiters, ComputedAt: time.Now().UTC()}, nil
	}
	if h.Deps.Cache == nil {
		v, err := compute(ctx)
		return v, cache.SourceComputed, err
	}
	return h.Deps.Cache.GetOrCompute(ctx, h.cacheKey(input), compute)
}

// record writes e to history. Failures are logged and otherwise ignored.
func (h *SumHandler) record(parent context.Context, e history.Entry) {
	if h.Deps.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), h.Deps.Timeout)
	defer cancel()
	if err := h.Deps.History.Record(ctx, e); err != nil {
		h.Deps.Logger.Warn("history record failed", zap.Error(err))
	}
}

// ServeHTTP handles POST /api/sum.
func (h *SumHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req types.SumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	if len(req.Inputs) == 0 {
		jsonutil.Error(w, http.StatusBadRequest, "inputs required")
		return
	}
	if len(req.Inputs) > h.Deps.MaxInputs {
		jsonutil.Error(w, http.StatusBadRequest, "too many inputs")
		return
	}

	inputs := dedupe(req.Inputs)
	resp := types.SumResponse{
		Results: make([]types.SumResult, 0, len(inputs)),
		Errors:  []types.ErrorEntry{},
	}
	keyHP := auth.KeyHashFrom(r.Context())

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(h.Deps.MaxConcurrency)
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(r.Context(), h.Deps.Timeout)
			defer cancel()
			val, source, err := h.evaluate(ctx, input)
			if err != nil {
				msg := err.Error()
				if !errors.Is(err, strcalc.ErrInvalidArgument) {
					h.Deps.Logger.Warn("sum failed", zap.String("input", input), zap.Error(err))
				}
				mu.Lock()
				resp.Errors = append(resp.Errors, types.ErrorEntry{Input: input, Error: msg})
				mu.Unlock()
				h.record(ctx, history.Entry{Input: input, Error: msg, APIKeyHP: keyHP})
				return nil
			}
			mu.Lock()
			resp.Results = append(resp.Results, types.NewSumResult(input, val.Sum, val.Delimiters, source, val.ComputedAt))
			mu.Unlock()
			h.Deps.Logger.Debug("sum", zap.String("input", input), zap.Int("sum", val.Sum), zap.String("source", source))
			if source == cache.SourceComputed {
				h.record(ctx, history.Entry{Input: input, Sum: val.Sum, APIKeyHP: keyHP})
			}
			return nil
		})
	}
	_ = g.Wait()

	// sort by input for deterministic responses
	sort.Slice(resp.Results, func(i, j int) bool { return resp.Results[i].Input < resp.Results[j].Input })
	sort.Slice(resp.Errors, func(i, j int) bool { return resp.Errors[i].Input < resp.Errors[j].Input })
	resp.Total = types.TotalOf(resp.Results)

	jsonutil.JSON(w, http.StatusOK, resp)
}
