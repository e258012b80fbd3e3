package observability

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/config"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Check is one dependency probe. Critical failures make the service unhealthy,
// others only degrade it.
type Check struct {
	Name     string
	Critical bool
	Probe    func(ctx context.Context) error
}

// HealthConfig holds configuration for health check endpoints
type HealthConfig struct {
	Logger       *slog.Logger
	Version      string
	Checks       []Check
	CheckTimeout time.Duration
}

// HealthReport is the data of the /health envelope.
type HealthReport struct {
	Status  HealthStatus           `json:"status"`
	Version string                 `json:"version,omitempty"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Error   string       `json:"error,omitempty"`
	Latency string       `json:"latency"`
}

var startTime = time.Now()

// HealthHandler serves GET /health in the envelope shape. Only a critical
// failure turns the answer into a 503.
func HealthHandler(cfg *HealthConfig) http.HandlerFunc {
	if cfg == nil {
		cfg = &HealthConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.CheckTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	checks := append([]Check(nil), cfg.Checks...)
	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		report := HealthReport{
			Status:  StatusHealthy,
			Version: cfg.Version,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Checks:  make(map[string]CheckResult, len(checks)),
		}

		for _, c := range checks {
			start := time.Now()
			err := c.Probe(ctx)
			res := CheckResult{Status: StatusHealthy, Latency: time.Since(start).String()}
			if err != nil {
				res.Error = err.Error()
				res.Status = StatusDegraded
				if c.Critical {
					res.Status = StatusUnhealthy
				}
			}
			report.Checks[c.Name] = res
			report.Status = worse(report.Status, res.Status)
		}

		env := config.Envelope{
			Success:       true,
			StatusCode:    http.StatusOK,
			Data:          report,
			ClientMessage: "Server is running successfully",
			DevMessage:    "Health check passed",
		}
		switch report.Status {
		case StatusUnhealthy:
			env.Success = false
			env.StatusCode = http.StatusServiceUnavailable
			env.ClientMessage = "Service unavailable"
			env.DevMessage = "Health check failed"
			logger.Warn("health check failed", "checks", report.Checks)
		case StatusDegraded:
			env.DevMessage = "Health check passed with degraded dependencies"
		}

		_ = config.RespondJSON(w, env.StatusCode, env)
	}
}

func worse(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// LivenessHandler serves GET /live; it never touches dependencies.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = config.RespondJSON(w, http.StatusOK, map[string]any{
			"alive":  true,
			"uptime": time.Since(startTime).Round(time.Second).String(),
		})
	}
}
