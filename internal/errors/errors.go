// Package errors maps fredlens failures onto gofulmen error envelopes and
// writes them as HTTP responses.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/core"
	"github.com/namelens/fredlens/internal/core/dispatch"
	"github.com/namelens/fredlens/internal/core/fred"
	"github.com/namelens/fredlens/internal/metrics"
	"github.com/namelens/fredlens/internal/observability"
	"github.com/namelens/fredlens/internal/server/middleware"
)

// Envelope codes
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeTimeout            = "TIMEOUT"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeInternal           = "INTERNAL_ERROR"
)

func NewInvalidInputError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInvalidInput, message)
}

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeNotFound, message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMethodNotAllowed, message)
}

func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInternal, message)
}

func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeConfigInvalid, message)
}

// Wrap builds an envelope for err carrying the request's correlation ID.
func Wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(code, message)
	envelope = envelope.WithCorrelationID(extractCorrelationID(ctx))
	envelope = envelope.WithTraceID(extractCorrelationID(ctx))
	return withWrappedError(envelope, err)
}

func WrapInternal(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return Wrap(ctx, CodeInternal, err, message)
}

func WrapConfigInvalid(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return Wrap(ctx, CodeConfigInvalid, err, message)
}

// FromError classifies a client or dispatch error.
//
//   - validation errors are the caller's fault (400)
//   - empty single-record answers and upstream 404s are NOT_FOUND
//   - FRED rejecting parameters (400) stays INVALID_INPUT
//   - upstream 429 is RATE_LIMITED
//   - timeouts are TIMEOUT, other upstream failures EXTERNAL_SERVICE_ERROR
func FromError(ctx context.Context, err error) *errors.ErrorEnvelope {
	if err == nil {
		return nil
	}
	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil {
		return envelope
	}

	var (
		validation *core.ValidationError
		status     *dispatch.HTTPStatusError
		request    *dispatch.RequestError
		decode     *dispatch.DecodeError
	)

	code, message := CodeInternal, "unexpected error"
	severity := errors.SeverityHigh
	wrapped := err
	details := map[string]interface{}{}

	switch {
	case stderrors.As(err, &validation):
		code, message, severity = CodeInvalidInput, validation.Error(), errors.SeverityMedium
		wrapped = nil
		details["field"] = validation.Field
	case stderrors.Is(err, fred.ErrNotFound):
		code, message, severity = CodeNotFound, "no matching FRED record", errors.SeverityMedium
	case stderrors.As(err, &status):
		code, message, severity = CodeExternalService, status.Message, errors.SeverityMedium
		if message == "" {
			message = http.StatusText(status.StatusCode)
		}
		switch status.StatusCode {
		case http.StatusBadRequest:
			code = CodeInvalidInput
		case http.StatusNotFound:
			code = CodeNotFound
		case http.StatusTooManyRequests:
			code = CodeRateLimited
		}
		details["upstream_status"] = status.StatusCode
	case stderrors.Is(err, context.DeadlineExceeded):
		code, message, severity = CodeTimeout, "FRED request timed out", errors.SeverityMedium
	case stderrors.Is(err, context.Canceled):
		code, message, severity = CodeServiceUnavailable, "request cancelled", errors.SeverityMedium
	case stderrors.As(err, &request), stderrors.As(err, &decode):
		code, message, severity = CodeExternalService, "FRED API unavailable", errors.SeverityMedium
	}

	env := Wrap(ctx, code, wrapped, message)
	if len(details) > 0 {
		env = env.WithDetails(details)
	}
	if updated, sevErr := env.WithSeverity(severity); sevErr == nil {
		env = updated
	}
	return env
}

func extractCorrelationID(ctx context.Context) string {
	if ctx != nil {
		if requestID := middleware.GetRequestID(ctx); requestID != "" {
			return requestID
		}
	}
	return uuid.New().String()
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}
	return FromError(context.Background(), err)
}

// EnsureCorrelationID attaches a correlation ID to the envelope using the context when available.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil || envelope.CorrelationID != "" {
		return envelope
	}

	var correlationID string
	if ctx != nil {
		correlationID = middleware.GetRequestID(ctx)
	}
	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}
	return envelope.WithCorrelationID(correlationID)
}

// HTTPStatusFromEnvelope resolves the HTTP status code corresponding to an error envelope.
func HTTPStatusFromEnvelope(envelope *errors.ErrorEnvelope) int {
	if envelope == nil {
		return http.StatusInternalServerError
	}
	return HTTPStatusFromCode(envelope.Code)
}

// HTTPStatusFromCode resolves the HTTP status code corresponding to an error code.
func HTTPStatusFromCode(code string) int {
	switch code {
	case CodeInvalidInput, "VALIDATION_FAILED":
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeExternalService:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}
	updated, updateErr := envelope.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	if updateErr != nil {
		return envelope
	}
	return updated
}

// ResponseDetails merges envelope details and context into the API body.
func ResponseDetails(envelope *errors.ErrorEnvelope) map[string]interface{} {
	if envelope == nil {
		return nil
	}

	details := make(map[string]interface{})
	for key, value := range envelope.Details {
		details[key] = value
	}
	for key, value := range envelope.Context {
		if _, exists := details[key]; !exists {
			details[key] = value
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// HTTPErrorDetail captures the error body returned to callers.
type HTTPErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// HTTPErrorResponse wraps HTTPErrorDetail in the standard envelope structure.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// RespondWithError classifies err against the request and writes it.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var ctx context.Context
	if r != nil {
		ctx = r.Context()
	}
	envelope := FromError(ctx, err)
	if envelope == nil {
		envelope = EnsureEnvelope(nil)
	}
	RespondWithEnvelope(w, r, envelope)
}

// RespondWithEnvelope finalizes the provided envelope, logging and emitting metrics.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil {
		return
	}

	var ctx context.Context
	if r != nil {
		ctx = r.Context()
	}
	envelope = EnsureCorrelationID(envelope, ctx)
	statusCode := HTTPStatusFromEnvelope(envelope)

	response := HTTPErrorResponse{
		Error: HTTPErrorDetail{
			Code:      envelope.Code,
			Message:   envelope.Message,
			Details:   ResponseDetails(envelope),
			RequestID: envelope.CorrelationID,
		},
	}

	logHTTPError(envelope, statusCode)
	metrics.RecordError(envelope.Code, statusCode)
	if r != nil {
		metrics.RecordErrorByEndpoint(r.URL.Path, envelope.Code)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func logHTTPError(envelope *errors.ErrorEnvelope, statusCode int) {
	if observability.ServerLogger == nil || envelope == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", statusCode),
	}
	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}
	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}
	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("request_id", envelope.CorrelationID))
	}

	switch envelope.Severity {
	case errors.SeverityCritical, errors.SeverityHigh:
		observability.ServerLogger.Error(envelope.Message, fields...)
	case errors.SeverityMedium:
		observability.ServerLogger.Warn(envelope.Message, fields...)
	default:
		observability.ServerLogger.Info(envelope.Message, fields...)
	}
}
