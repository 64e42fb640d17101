package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/errors"
)

// Check results
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusTimeout   = "timeout"
)

// HealthResponse represents the aggregate health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProbeResponse represents individual probe response
type ProbeResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthChecker defines interface for health checkable components
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) CheckHealth(ctx context.Context) error { return f(ctx) }

// HealthManager runs registered checks for the probe endpoints.
type HealthManager struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	version  string
}

func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		checkers: make(map[string]HealthChecker),
		version:  version,
	}
}

// RegisterChecker adds or replaces the check called name.
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checkers[name] = checker
}

func (hm *HealthManager) runChecks(ctx context.Context) map[string]string {
	hm.mu.RLock()
	names := make([]string, 0, len(hm.checkers))
	for name := range hm.checkers {
		names = append(names, name)
	}
	hm.mu.RUnlock()
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			checks[name] = StatusTimeout
			continue
		}
		hm.mu.RLock()
		checker := hm.checkers[name]
		hm.mu.RUnlock()
		if err := checker.CheckHealth(ctx); err != nil {
			checks[name] = StatusUnhealthy
		} else {
			checks[name] = StatusHealthy
		}
	}
	return checks
}

func overallStatus(checks map[string]string) string {
	status := StatusHealthy
	for _, result := range checks {
		switch result {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded, StatusTimeout:
			status = StatusDegraded
		}
	}
	return status
}

// probe runs every check under timeout. Unhealthy results become a
// SERVICE_UNAVAILABLE envelope; otherwise ok writes the success body.
func (hm *HealthManager) probe(w http.ResponseWriter, r *http.Request, name string, timeout time.Duration, ok func(status string, checks map[string]string) any) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	checks := hm.runChecks(ctx)
	status := overallStatus(checks)
	if status == StatusUnhealthy {
		envelope := errors.NewErrorEnvelope("SERVICE_UNAVAILABLE", name+" check failed")
		respondWithError(w, r, enrichHealthEnvelope(envelope, name, status, checks))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(ok(status, checks))
}

// HealthHandler reports every check by name.
func (hm *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	hm.probe(w, r, "aggregate", 5*time.Second, func(status string, checks map[string]string) any {
		return HealthResponse{
			Status:    status,
			Version:   hm.version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checks,
		}
	})
}

func (hm *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	hm.probe(w, r, "live", 2*time.Second, probeBody)
}

func (hm *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	hm.probe(w, r, "ready", 5*time.Second, probeBody)
}

func (hm *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	hm.probe(w, r, "startup", 3*time.Second, probeBody)
}

func probeBody(status string, _ map[string]string) any {
	return ProbeResponse{Status: status, Timestamp: time.Now().UTC()}
}

func enrichHealthEnvelope(envelope *errors.ErrorEnvelope, probe, status string, checks map[string]string) *errors.ErrorEnvelope {
	details := map[string]interface{}{
		"status": status,
		"probe":  probe,
	}
	if len(checks) > 0 {
		details["checks"] = checks
	}
	envelope = envelope.WithDetails(details)

	var failing []string
	for name, result := range checks {
		if result != StatusHealthy {
			failing = append(failing, name)
		}
	}
	if len(failing) > 0 {
		sort.Strings(failing)
		if updated, err := envelope.WithContext(map[string]interface{}{"unhealthy_checks": failing}); err == nil {
			envelope = updated
		}
	}
	return envelope
}

var globalHealthManager *HealthManager

// InitHealthManager installs the manager behind the package-level handlers.
func InitHealthManager(version string) *HealthManager {
	globalHealthManager = NewHealthManager(version)
	return globalHealthManager
}

func GetHealthManager() *HealthManager {
	return globalHealthManager
}

func withGlobal(probe string, fn func(*HealthManager, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if globalHealthManager != nil {
			fn(globalHealthManager, w, r)
			return
		}
		envelope := errors.NewErrorEnvelope("SERVICE_UNAVAILABLE", "health manager not initialized")
		respondWithError(w, r, enrichHealthEnvelope(envelope, probe, "unknown", nil))
	}
}

var (
	HealthHandler    = withGlobal("aggregate", (*HealthManager).HealthHandler)
	LivenessHandler  = withGlobal("live", (*HealthManager).LivenessHandler)
	ReadinessHandler = withGlobal("ready", (*HealthManager).ReadinessHandler)
	StartupHandler   = withGlobal("startup", (*HealthManager).StartupHandler)
)
