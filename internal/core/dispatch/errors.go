package dispatch

import (
	"fmt"
	"net/http"
)

// RequestError reports a transport failure reaching the remote host.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	// Message carries the API's error_message when the body had one.
	Message string
}

func (e *HTTPStatusError) Error() string {
	text := http.StatusText(e.StatusCode)
	if e.Message != "" {
		return fmt.Sprintf("GET %s: %d %s: %s", e.URL, e.StatusCode, text, e.Message)
	}
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, text)
}

// DecodeError reports a 2xx response whose body was not valid JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RetryError is returned once every attempt has failed. Err is the error from
// the last attempt.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }
