package health

import (
	"context"
	"sync"
	"time"
)

const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusDegraded = "degraded"
)

// CheckFunc reports the health of one dependency
type CheckFunc func(ctx context.Context) error

type check struct {
	name     string
	critical bool
	fn       CheckFunc
}

// CheckResult is the outcome of one check
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the body of the readiness endpoint
type Report struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Checks    map[string]CheckResult `json:"checks"`
}

// HealthChecker runs the registered dependency checks
type HealthChecker struct {
	version string
	timeout time.Duration
	checks  []check
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(version string, timeout time.Duration) *HealthChecker {
	return &HealthChecker{version: version, timeout: timeout}
}

// AddCheck registers a check. A failing critical check makes the service
// not ready; a failing optional one only degrades it.
func (h *HealthChecker) AddCheck(name string, critical bool, fn CheckFunc) {
	h.checks = append(h.checks, check{name: name, critical: critical, fn: fn})
}

// GetHealthStatus runs every check concurrently and reports whether the
// service can take traffic.
func (h *HealthChecker) GetHealthStatus(ctx context.Context) (Report, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make([]CheckResult, len(h.checks))
	var wg sync.WaitGroup
	for i, c := range h.checks {
		wg.Add(1)
		go func(i int, c check) {
			defer wg.Done()
			if err := c.fn(ctx); err != nil {
				results[i] = CheckResult{Status: StatusError, Error: err.Error()}
				return
			}
			results[i] = CheckResult{Status: StatusOK}
		}(i, c)
	}
	wg.Wait()

	report := Report{
		Status:    StatusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Checks:    make(map[string]CheckResult, len(h.checks)),
	}
	ready := true
	for i, c := range h.checks {
		report.Checks[c.name] = results[i]
		if results[i].Status == StatusOK {
			continue
		}
		if c.critical {
			ready = false
			report.Status = StatusError
		} else if report.Status == StatusOK {
			report.Status = StatusDegraded
		}
	}
	return report, ready
}
