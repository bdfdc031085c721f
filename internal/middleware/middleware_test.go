package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

func okHandler(seen *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = logger_i.TraceId(r.Context())
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestWrap_Auth(t *testing.T) {
	m := New(&config.Settings{AuthToken: "secret"})
	handler := m.Wrap(okHandler(nil))

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"Valid_Token", "Bearer secret", http.StatusNoContent},
		{"Wrong_Token", "Bearer nope", http.StatusUnauthorized},
		{"No_Bearer_Prefix", "secret", http.StatusUnauthorized},
		{"Empty", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.RemoteAddr = "10.0.0." + tt.name + ":1234"
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("got %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestWrap_BypassAndPublic(t *testing.T) {
	bypass := New(&config.Settings{NoAuthBypass: true})
	rec := httptest.NewRecorder()
	bypass.Wrap(okHandler(nil))(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("bypass: got %d", rec.Code)
	}

	strict := New(&config.Settings{AuthToken: "secret"})
	rec = httptest.NewRecorder()
	strict.WrapPublic(okHandler(nil))(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("public: got %d", rec.Code)
	}
}

func TestWrap_TracePropagation(t *testing.T) {
	m := New(&config.Settings{NoAuthBypass: true})
	var seen string

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Trace-Id", "trace-abc")
	rec := httptest.NewRecorder()
	m.Wrap(okHandler(&seen))(rec, req)

	if seen != "trace-abc" {
		t.Errorf("context trace = %q", seen)
	}
	if got := rec.Header().Get("X-Trace-Id"); got != "trace-abc" {
		t.Errorf("response trace = %q", got)
	}

	rec = httptest.NewRecorder()
	m.Wrap(okHandler(&seen))(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if seen == "" || rec.Header().Get("X-Trace-Id") != seen {
		t.Errorf("generated trace not propagated: ctx %q header %q", seen, rec.Header().Get("X-Trace-Id"))
	}
}

func TestWrap_RateLimit(t *testing.T) {
	m := New(&config.Settings{NoAuthBypass: true})
	handler := m.Wrap(okHandler(nil))

	limited := false
	for i := 0; i < config.BURST_RATE_LIMIT_PER_SECOND+5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("expected the burst to be exhausted")
	}

	other := httptest.NewRequest(http.MethodGet, "/x", nil)
	other.RemoteAddr = "192.0.2.2:5555"
	rec := httptest.NewRecorder()
	handler(rec, other)
	if rec.Code != http.StatusNoContent {
		t.Errorf("other ip limited: %d", rec.Code)
	}
}
