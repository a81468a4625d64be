package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/gonogo/component"
	"github.com/kbukum/gonogo/version"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Probes serves the operational endpoints for one service.
type Probes struct {
	service string
	check   HealthChecker
	started time.Time
	now     func() time.Time
}

// NewProbes creates the probe handlers. A nil check reports healthy.
func NewProbes(service string, check HealthChecker) *Probes {
	return &Probes{service: service, check: check, started: time.Now(), now: time.Now}
}

// Mount registers /health, /ready, /alive and /info on r.
func (p *Probes) Mount(r gin.IRoutes) {
	r.GET("/health", p.Health)
	r.GET("/ready", p.Ready)
	r.GET("/alive", p.Alive)
	r.GET("/info", p.Info)
}

// Health reports the overall status, the per-component list and the names of
// components that are not fully healthy. Degraded keeps the response at 200;
// a store running without a database is degraded.
func (p *Probes) Health(c *gin.Context) {
	components := p.components(c.Request.Context())
	status := Overall(components)

	var impaired []string
	for _, ch := range components {
		if ch.Status != component.StatusHealthy {
			impaired = append(impaired, ch.Name)
		}
	}

	body := p.envelope(string(status))
	body["components"] = components
	if len(impaired) > 0 {
		body["impaired"] = impaired
	}
	c.JSON(statusCode(status), body)
}

// Ready answers 503 only while a component is unhealthy. The experiment
// serves without a database, so degraded counts as ready.
func (p *Probes) Ready(c *gin.Context) {
	status := Overall(p.components(c.Request.Context()))
	state := "ready"
	if status == component.StatusUnhealthy {
		state = "not_ready"
	}
	c.JSON(statusCode(status), p.envelope(state))
}

// Alive confirms the process can serve HTTP.
func (p *Probes) Alive(c *gin.Context) {
	c.JSON(http.StatusOK, p.envelope("alive"))
}

// Info reports build information and uptime.
func (p *Probes) Info(c *gin.Context) {
	v := version.Get()
	c.JSON(http.StatusOK, gin.H{
		"service":    p.service,
		"version":    v.Version,
		"git_commit": v.GitCommit,
		"build_time": v.BuildTime,
		"go_version": v.GoVersion,
		"is_release": v.IsRelease,
		"uptime":     p.now().Sub(p.started).Round(time.Second).String(),
	})
}

// Overall folds component statuses: any unhealthy wins, then any degraded.
func Overall(components []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, ch := range components {
		switch ch.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status
}

func (p *Probes) components(ctx context.Context) []component.Health {
	if p.check == nil {
		return nil
	}
	return p.check(ctx)
}

func (p *Probes) envelope(status string) gin.H {
	return gin.H{
		"status":    status,
		"service":   p.service,
		"timestamp": p.now().UTC().Format(time.RFC3339),
	}
}

func statusCode(status component.HealthStatus) int {
	if status == component.StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
