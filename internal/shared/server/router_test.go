package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"facadescan-backend/internal/shared/config"
)

func TestRouterHealth(t *testing.T) {
	router := NewRouter(RouterDeps{Config: config.Config{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRouterMetrics(t *testing.T) {
	router := NewRouter(RouterDeps{Config: config.Config{}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "pipeline_started_total") {
		t.Fatalf("expected pipeline counters in metrics output")
	}
}

func TestAddr(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ":8080"},
		{"9000", ":9000"},
		{":9000", ":9000"},
	}
	for _, tc := range cases {
		if got := Addr(tc.in); got != tc.want {
			t.Fatalf("Addr(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
