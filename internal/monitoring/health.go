// internal/monitoring/health.go
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/valpere/PriceScrapexter/internal/utils"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusDegraded  HealthStatus = "degraded"
)

const defaultCheckTimeout = 5 * time.Second

// HealthCheck is a named probe. A failing critical check makes the service
// unhealthy; a failing non-critical one only degrades it.
type HealthCheck struct {
	Name      string
	Critical  bool
	Timeout   time.Duration
	CheckFunc func(ctx context.Context) error
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status   HealthStatus `json:"status"`
	Error    string       `json:"error,omitempty"`
	Duration string       `json:"duration"`
}

// SystemHealth is the body of the health endpoint.
type SystemHealth struct {
	Status     HealthStatus           `json:"status"`
	Version    string                 `json:"version"`
	Uptime     string                 `json:"uptime"`
	Timestamp  time.Time              `json:"timestamp"`
	Goroutines int                    `json:"goroutines"`
	Checks     map[string]CheckResult `json:"checks,omitempty"`
}

// HealthManager runs health checks on demand.
type HealthManager struct {
	version string
	started time.Time

	mu     sync.RWMutex
	checks []*HealthCheck
}

// NewHealthManager creates a new health manager
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{version: version, started: time.Now()}
}

// RegisterCheck adds a check, replacing any check with the same name.
func (hm *HealthManager) RegisterCheck(check *HealthCheck) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	for i, c := range hm.checks {
		if c.Name == check.Name {
			hm.checks[i] = check
			return
		}
	}
	hm.checks = append(hm.checks, check)
}

// Uptime returns the time since the manager was created.
func (hm *HealthManager) Uptime() time.Duration {
	return time.Since(hm.started)
}

// GetHealth runs every check and returns the overall status.
func (hm *HealthManager) GetHealth(ctx context.Context) SystemHealth {
	hm.mu.RLock()
	checks := append([]*HealthCheck(nil), hm.checks...)
	hm.mu.RUnlock()

	health := SystemHealth{
		Status:     HealthStatusHealthy,
		Version:    hm.version,
		Uptime:     utils.FormatDuration(hm.Uptime()),
		Timestamp:  time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
	}
	if len(checks) == 0 {
		return health
	}

	health.Checks = make(map[string]CheckResult, len(checks))
	for _, check := range checks {
		result := runCheck(ctx, check)
		health.Checks[check.Name] = result

		if result.Status == HealthStatusHealthy {
			continue
		}
		if check.Critical {
			health.Status = HealthStatusUnhealthy
		} else if health.Status == HealthStatusHealthy {
			health.Status = HealthStatusDegraded
		}
	}
	return health
}

func runCheck(ctx context.Context, check *HealthCheck) CheckResult {
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := check.CheckFunc(ctx)
	result := CheckResult{Status: HealthStatusHealthy, Duration: utils.FormatDuration(time.Since(start))}
	if err != nil {
		result.Status = HealthStatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

// HealthHandler serves the health report; unhealthy responds 503.
func (hm *HealthManager) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := hm.GetHealth(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if health.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(health)
	}
}

// GoroutineHealthCheck fails when more than maxGoroutines are running.
func GoroutineHealthCheck(maxGoroutines int) *HealthCheck {
	return &HealthCheck{
		Name: "goroutines",
		CheckFunc: func(ctx context.Context) error {
			if count := runtime.NumGoroutine(); count > maxGoroutines {
				return fmt.Errorf("high goroutine count: %d", count)
			}
			return nil
		},
	}
}
