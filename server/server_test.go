package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gonogo/component"
	apperrors "github.com/kbukum/gonogo/errors"
	"github.com/kbukum/gonogo/logger"
	"github.com/kbukum/gonogo/server/middleware"
)

func testConfig() Config {
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	return cfg
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Port)
	}
	if cfg.MaxBodySize != "10MB" || cfg.ShutdownTimeout != 5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	cfg.Port = 70000
	cfg.ReadTimeout = -1
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.port") || !strings.Contains(err.Error(), "server.read_timeout") {
		t.Errorf("expected both fields reported, got %v", err)
	}
}

func TestHandlerServesDefaultEndpoints(t *testing.T) {
	srv := New(testConfig(), logger.Nop())
	srv.ApplyMiddleware(nil)
	srv.RegisterDefaultEndpoints("gonogo", func(context.Context) []component.Health {
		return []component.Health{{Name: "store", Status: component.StatusDegraded}}
	})

	for _, path := range []string{"/health", "/ready", "/alive", "/info"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			if rr.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", rr.Code)
			}
			if rr.Header().Get(middleware.HeaderRequestID) == "" {
				t.Error("expected request id header from the middleware chain")
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	srv := New(testConfig(), logger.Nop())
	srv.RegisterDefaultEndpoints("gonogo", nil)
	comp := NewComponent(srv)

	if comp.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("server should be unhealthy before Start")
	}
	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = comp.Stop(context.Background()) }()

	if srv.Port() == 0 {
		t.Fatal("expected a bound port")
	}
	if comp.Health(context.Background()).Status != component.StatusHealthy {
		t.Error("server should be healthy after Start")
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/alive", srv.Addr()))
	if err != nil {
		t.Fatalf("GET /alive: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if d := comp.Describe(); d.Port != srv.Port() || d.Type != "server" {
		t.Errorf("unexpected description: %+v", d)
	}
}

func TestStartBindError(t *testing.T) {
	first := New(testConfig(), logger.Nop())
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = first.Stop(context.Background()) }()

	cfg := testConfig()
	cfg.Port = first.Port()
	second := New(cfg, logger.Nop())
	if err := second.Start(context.Background()); err == nil {
		_ = second.Stop(context.Background())
		t.Fatal("expected bind error on a port in use")
	}
}

func TestRoutesOrdering(t *testing.T) {
	srv := New(testConfig(), logger.Nop())
	srv.RegisterDefaultEndpoints("gonogo", nil)
	srv.Engine().POST("/experiment-data", func(c *gin.Context) {})
	srv.Engine().GET("/", func(c *gin.Context) {})

	routes := NewComponent(srv).Routes()
	if len(routes) != 6 {
		t.Fatalf("expected 6 routes, got %d", len(routes))
	}
	if routes[0].Path != "/" || routes[1].Path != "/experiment-data" {
		t.Errorf("application routes should come first, got %v", routes[:2])
	}
	for _, r := range routes[2:] {
		if !systemPaths[r.Path] {
			t.Errorf("expected system route, got %s", r.Path)
		}
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/kbukum/gonogo/experiment.(*Handler).Submit-fm", "Handler.Submit"},
		{"github.com/kbukum/gonogo/server/endpoint.(*Probes).Ready-fm", "Probes.Ready"},
		{"main.newRouter.func1", "newrouter"},
		{"main.index", "index"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := formatHandlerName(tc.in); got != tc.want {
				t.Errorf("formatHandlerName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"app error", apperrors.DatabaseError(fmt.Errorf("insert: closed")), http.StatusInternalServerError, "DATABASE_ERROR"},
		{"bad input", apperrors.InvalidInput("body", "malformed JSON"), http.StatusBadRequest, "INVALID_INPUT"},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			RespondWithError(c, tc.err)

			if rr.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if string(body.Error.Code) != tc.wantBody {
				t.Errorf("expected code %s, got %s", tc.wantBody, body.Error.Code)
			}
		})
	}
}

func TestRespondWithErrorCarriesRequestID(t *testing.T) {
	srv := New(testConfig(), logger.Nop())
	srv.ApplyMiddleware(nil)
	srv.Engine().POST("/fail", func(c *gin.Context) {
		RespondWithError(c, apperrors.DatabaseError(fmt.Errorf("insert: closed")))
	})

	req := httptest.NewRequest(http.MethodPost, "/fail", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "req-42")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Error.RequestID != "req-42" {
		t.Errorf("expected request_id req-42, got %q", body.Error.RequestID)
	}
}

func TestRespondEmptyOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/", RespondEmptyOK)

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", http.NoBody))
	if rr.Code != http.StatusOK || rr.Body.Len() != 0 {
		t.Errorf("expected empty 200, got %d %q", rr.Code, rr.Body.String())
	}
}
