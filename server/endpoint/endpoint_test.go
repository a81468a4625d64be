package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gonogo/component"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func checker(statuses ...component.HealthStatus) HealthChecker {
	return func(context.Context) []component.Health {
		out := make([]component.Health, 0, len(statuses))
		for i, s := range statuses {
			out = append(out, component.Health{Name: string(rune('a' + i)), Status: s})
		}
		return out
	}
}

func get(t *testing.T, p *Probes, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	engine := gin.New()
	p.Mount(engine)
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return rr, body
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name         string
		checker      HealthChecker
		wantStatus   string
		wantCode     int
		wantImpaired []interface{}
	}{
		{"no checker", nil, "healthy", http.StatusOK, nil},
		{"all healthy", checker(component.StatusHealthy, component.StatusHealthy), "healthy", http.StatusOK, nil},
		{"store without database", checker(component.StatusDegraded, component.StatusHealthy), "degraded", http.StatusOK, []interface{}{"a"}},
		{"unhealthy wins", checker(component.StatusDegraded, component.StatusUnhealthy), "unhealthy", http.StatusServiceUnavailable, []interface{}{"a", "b"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, body := get(t, NewProbes("gonogo", tc.checker), "/health")
			if rr.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			if body["status"] != tc.wantStatus {
				t.Errorf("expected status %q, got %v", tc.wantStatus, body["status"])
			}
			if body["service"] != "gonogo" {
				t.Errorf("unexpected service %v", body["service"])
			}
			impaired, _ := body["impaired"].([]interface{})
			if len(impaired) != len(tc.wantImpaired) {
				t.Fatalf("expected impaired %v, got %v", tc.wantImpaired, body["impaired"])
			}
			for i := range impaired {
				if impaired[i] != tc.wantImpaired[i] {
					t.Errorf("expected impaired %v, got %v", tc.wantImpaired, impaired)
				}
			}
		})
	}
}

func TestReady(t *testing.T) {
	rr, body := get(t, NewProbes("gonogo", checker(component.StatusDegraded)), "/ready")
	if rr.Code != http.StatusOK || body["status"] != "ready" {
		t.Errorf("degraded should still be ready, got %d %v", rr.Code, body["status"])
	}

	rr, body = get(t, NewProbes("gonogo", checker(component.StatusUnhealthy)), "/ready")
	if rr.Code != http.StatusServiceUnavailable || body["status"] != "not_ready" {
		t.Errorf("unhealthy should be not_ready, got %d %v", rr.Code, body["status"])
	}
}

func TestAlive(t *testing.T) {
	rr, body := get(t, NewProbes("gonogo", checker(component.StatusUnhealthy)), "/alive")
	if rr.Code != http.StatusOK || body["status"] != "alive" {
		t.Errorf("liveness ignores component health, got %d %v", rr.Code, body)
	}
}

func TestInfo(t *testing.T) {
	p := NewProbes("gonogo", nil)
	p.now = func() time.Time { return p.started.Add(90 * time.Second) }

	rr, body := get(t, p, "/info")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if _, ok := body["version"]; !ok {
		t.Error("expected version field")
	}
	if body["uptime"] != "1m30s" {
		t.Errorf("expected uptime 1m30s, got %v", body["uptime"])
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name string
		in   []component.HealthStatus
		want component.HealthStatus
	}{
		{"empty", nil, component.StatusHealthy},
		{"degraded", []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, component.StatusDegraded},
		{"unhealthy first", []component.HealthStatus{component.StatusUnhealthy, component.StatusDegraded}, component.StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overall(checker(tc.in...)(context.Background())); got != tc.want {
				t.Errorf("Overall = %s, want %s", got, tc.want)
			}
		})
	}
}
