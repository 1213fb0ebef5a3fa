package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/subscriberhub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyz(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	tests := []struct {
		name     string
		deps     map[string]handlers.Pinger
		wantCode int
		wantStat string
	}{
		{"no deps", nil, http.StatusOK, "ready"},
		{"all up", map[string]handlers.Pinger{"storage": ok, "cache": ok}, http.StatusOK, "ready"},
		{"cache down", map[string]handlers.Pinger{"storage": ok, "cache": down}, http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			h := handlers.NewHealthHandler(tc.deps, nil)
			r.GET("/readyz", h.Readyz)
			r.GET("/healthz", h.Healthz)

			if w := do(r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
				t.Fatalf("healthz expected 200, got %d", w.Code)
			}

			w := do(r, http.MethodGet, "/readyz", "", nil)
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, w.Code)
			}

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tc.wantStat {
				t.Fatalf("expected status %q, got %q", tc.wantStat, body.Status)
			}
			if tc.name == "cache down" && body.Checks["cache"] != "dial tcp: refused" {
				t.Fatalf("expected cache failure detail, got %v", body.Checks)
			}
		})
	}
}

func TestReadyz_ShuttingDown(t *testing.T) {
	draining := false

	r := gin.New()
	h := handlers.NewHealthHandler(nil, func() bool { return draining })
	r.GET("/readyz", h.Readyz)

	if w := do(r, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 before drain, got %d", w.Code)
	}

	draining = true
	if w := do(r, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while draining, got %d", w.Code)
	}
}
