package middleware

import (
	"net/http"
	"sync/atomic"
)

// Metrics counts requests by outcome.
type Metrics struct {
	requests    atomic.Int64
	clientError atomic.Int64
	serverError atomic.Int64
	rateLimited atomic.Int64
}

type MetricsSnapshot struct {
	Requests     int64 `json:"request_count"`
	ClientErrors int64 `json:"client_error_count"`
	ServerErrors int64 `json:"server_error_count"`
	RateLimited  int64 `json:"rate_limited_count"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Requests:     m.requests.Load(),
		ClientErrors: m.clientError.Load(),
		ServerErrors: m.serverError.Load(),
		RateLimited:  m.rateLimited.Load(),
	}
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requests.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		switch {
		case rw.statusCode == http.StatusTooManyRequests:
			m.rateLimited.Add(1)
			m.clientError.Add(1)
		case rw.statusCode >= 500:
			m.serverError.Add(1)
		case rw.statusCode >= 400:
			m.clientError.Add(1)
		}
	})
}
