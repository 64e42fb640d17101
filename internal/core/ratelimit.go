package core

import "time"

// Budget is the request budget left in the current sliding window.
type Budget struct {
	// Requests is the number of requests still allowed in the window.
	Requests int `json:"requests_remaining"`
	// Time is how long until the oldest recorded request leaves the window.
	// It is never below one second.
	Time time.Duration `json:"time_remaining"`
}

// RateLimitState is a point-in-time view of a limiter, used for reporting.
type RateLimitState struct {
	Mode        string    `json:"mode"`
	MaxRequests int       `json:"max_requests_per_window"`
	Window      string    `json:"window"`
	InWindow    int       `json:"requests_in_window"`
	Remaining   int       `json:"requests_remaining"`
	ResetIn     string    `json:"reset_in"`
	Permits     int       `json:"permit_capacity,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}
