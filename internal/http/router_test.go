package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewRouter_QuietRequests(t *testing.T) {
	tests := []struct {
		name    string
		quiet   bool
		wantLog bool
	}{
		{"logging on", false, true},
		{"quiet under test", true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewRouter(RouterDeps{
				Env:           "test",
				Log:           slog.New(slog.NewJSONHandler(&buf, nil)),
				QuietRequests: tc.quiet,
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			if w.Code != http.StatusNoContent {
				t.Fatalf("expected 204, got %d", w.Code)
			}
			if got := strings.Contains(buf.String(), "http_request"); got != tc.wantLog {
				t.Fatalf("request logged = %v, want %v (%q)", got, tc.wantLog, buf.String())
			}
		})
	}
}
