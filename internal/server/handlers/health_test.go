package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandlerReturnsHealthyStatus(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("fred_api_key", CheckFunc(func(context.Context) error { return nil }))

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, StatusHealthy, resp.Checks["fred_api_key"])
}

func TestHealthHandlerReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("store", CheckFunc(func(context.Context) error { return errors.New("database is locked") }))

	rec := httptest.NewRecorder()
	manager.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp struct {
		Error struct {
			Code    string                 `json:"code"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
	assert.Equal(t, "ready", resp.Error.Details["probe"])

	checks, ok := resp.Error.Details["checks"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, StatusUnhealthy, checks["store"])
}

func TestOverallStatusTreatsTimeoutAsDegraded(t *testing.T) {
	assert.Equal(t, StatusDegraded, overallStatus(map[string]string{"store": StatusTimeout, "key": StatusHealthy}))
	assert.Equal(t, StatusUnhealthy, overallStatus(map[string]string{"store": StatusTimeout, "key": StatusUnhealthy}))
	assert.Equal(t, StatusHealthy, overallStatus(nil))
}

func TestGlobalHandlersWithoutManager(t *testing.T) {
	original := globalHealthManager
	globalHealthManager = nil
	t.Cleanup(func() { globalHealthManager = original })

	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	InitHealthManager("dev")
	rec = httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
