package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every network call.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 64 << 20

func (d *Dispatcher) fetch(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	endpoint := d.endpoint(path)
	params := make(url.Values, len(query)+2)
	for k, v := range query {
		params[k] = v
	}
	params.Set("file_type", "json")
	display := endpoint
	if encoded := params.Encode(); encoded != "" {
		display = endpoint + "?" + encoded
	}
	if d.apiKey != "" {
		params.Set("api_key", d.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &RequestError{URL: display, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// The transport echoes the full URL, credential included.
			urlErr.URL = display
		}
		return nil, &RequestError{URL: display, Err: err}
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &RequestError{URL: display, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{
			StatusCode: resp.StatusCode,
			URL:        display,
			Message:    apiErrorMessage(body),
		}
	}

	if !json.Valid(body) {
		var syntax any
		err := json.Unmarshal(body, &syntax)
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return nil, &DecodeError{URL: display, Err: err}
	}

	return json.RawMessage(body), nil
}

func (d *Dispatcher) endpoint(path string) string {
	return strings.TrimRight(d.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func apiErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.ErrorMessage)
}
