package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/dispatch"
	"github.com/namelens/fredlens/internal/core/fred"
	"github.com/namelens/fredlens/internal/server/middleware"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", core.NewValidationError("limit", "too large"), CodeInvalidInput, http.StatusBadRequest},
		{"not found", fmt.Errorf("series X: %w", fred.ErrNotFound), CodeNotFound, http.StatusNotFound},
		{"upstream bad request", &dispatch.RetryError{Attempts: 3, Err: &dispatch.HTTPStatusError{StatusCode: 400, Message: "Bad Request. The series does not exist."}}, CodeInvalidInput, http.StatusBadRequest},
		{"upstream rate limited", &dispatch.HTTPStatusError{StatusCode: 429}, CodeRateLimited, http.StatusTooManyRequests},
		{"upstream failure", &dispatch.HTTPStatusError{StatusCode: 503}, CodeExternalService, http.StatusBadGateway},
		{"transport", &dispatch.RetryError{Attempts: 3, Err: &dispatch.RequestError{URL: "https://api.stlouisfed.org/fred/series", Err: fmt.Errorf("connection refused")}}, CodeExternalService, http.StatusBadGateway},
		{"timeout", &dispatch.RequestError{Err: context.DeadlineExceeded}, CodeTimeout, http.StatusGatewayTimeout},
		{"decode", &dispatch.DecodeError{Err: fmt.Errorf("unexpected EOF")}, CodeExternalService, http.StatusBadGateway},
		{"other", fmt.Errorf("boom"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := FromError(context.Background(), tc.err)
			require.NotNil(t, env)
			assert.Equal(t, tc.code, env.Code)
			assert.Equal(t, tc.status, HTTPStatusFromEnvelope(env))
			assert.NotEmpty(t, env.CorrelationID)
		})
	}

	assert.Nil(t, FromError(context.Background(), nil))
}

func TestFromErrorKeepsUpstreamMessage(t *testing.T) {
	env := FromError(context.Background(), &dispatch.HTTPStatusError{StatusCode: 400, Message: "Bad Request. Variable api_key is not set."})
	assert.Equal(t, "Bad Request. Variable api_key is not set.", env.Message)
	assert.EqualValues(t, 400, ResponseDetails(env)["upstream_status"])
}

func TestRespondWithErrorUsesRequestID(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, r, core.NewValidationError("series_id", "is required"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/series/%20", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeInvalidInput, body.Error.Code)
	assert.Equal(t, "req-123", body.Error.RequestID)
	assert.Equal(t, "series_id", body.Error.Details["field"])
}

func TestEnsureEnvelopeNil(t *testing.T) {
	env := EnsureEnvelope(nil)
	assert.Equal(t, CodeInternal, env.Code)
}
