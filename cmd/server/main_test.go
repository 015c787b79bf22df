package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/sumapi/internal/cache"
	"github.com/example/sumapi/internal/config"
	"github.com/example/sumapi/internal/rate"
	"github.com/example/sumapi/internal/types"
	"go.uber.org/zap"
)

func TestInMemoryServerEndToEnd(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("API_KEYS", "dev-123")
	t.Setenv("ADMIN_TOKEN", "secret")
	t.Setenv("SUM_CEILING", "")
	cfg := config.Load()

	be, err := openBackends(context.Background(), cfg, zap.NewNop())
	if err != nil { t.Fatalf("backends: %v", err) }
	defer be.close()
	lm := rate.NewLimiterMap(1000, 1000, time.Minute)
	defer lm.Stop()
	results := cache.New(time.Minute)
	results.StartReaper(time.Minute)
	defer results.Stop()
	ts := httptest.NewServer(buildHandler(cfg, be, lm, results, zap.NewNop()))
	defer ts.Close()

	// issue a key through the admin endpoint and use it
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/admin/create-key", bytes.NewReader([]byte(`{"key":"fresh","owner":"t"}`)))
	req.Header.Set("X-Admin-Token", "secret")
	resp, err := ts.Client().Do(req)
	if err != nil { t.Fatalf("admin: %v", err) }
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK { t.Fatalf("admin status=%d", resp.StatusCode) }

	for _, key := range []string{"dev-123", "fresh"} {
		b, _ := json.Marshal(types.SumRequest{Inputs: []string{"2,1001", "//[***]\n1***2***3"}})
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/sum", bytes.NewReader(b))
		req.Header.Set("X-API-Key", key)
		resp, err := ts.Client().Do(req)
		if err != nil { t.Fatalf("sum: %v", err) }
		var out types.SumResponse
		_ = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || out.Total != 8 { t.Fatalf("key=%s status=%d total=%d", key, resp.StatusCode, out.Total) }
	}
}
