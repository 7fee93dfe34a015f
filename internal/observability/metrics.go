package observability

import (
	"sync"
	"time"
)

// Metrics keeps in-process counters for the HTTP surface: per-route request
// totals with latency sums, plus failure counts keyed by domain error code
// (INVALID_CREDENTIALS, NOT_A_SELLER, ...). There is no exposition endpoint;
// the counters feed the request log and the readiness of operators with a
// debugger attached.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]*RouteStats
	errors   map[string]int64
}

// RouteStats aggregates the calls seen by one method+path pair.
type RouteStats struct {
	Count         int64
	TotalDuration time.Duration
	Statuses      map[int]int64
}

// NewMetrics initializes empty counters.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]*RouteStats),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts one completed request against its route.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := routeKey(method, path)
	stats := m.requests[key]
	if stats == nil {
		stats = &RouteStats{Statuses: make(map[int]int64)}
		m.requests[key] = stats
	}
	stats.Count++
	stats.TotalDuration += duration
	stats.Statuses[status]++
}

// RecordError counts one failed request under its domain error code.
func (m *Metrics) RecordError(_, _, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[code]++
}

// ErrorCount reports how many requests failed with the given domain code.
func (m *Metrics) ErrorCount(code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[code]
}

// Route returns a copy of the stats recorded for one method+path pair.
func (m *Metrics) Route(method, path string) RouteStats {
	if m == nil {
		return RouteStats{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.requests[routeKey(method, path)]
	if stats == nil {
		return RouteStats{}
	}
	out := RouteStats{
		Count:         stats.Count,
		TotalDuration: stats.TotalDuration,
		Statuses:      make(map[int]int64, len(stats.Statuses)),
	}
	for status, n := range stats.Statuses {
		out.Statuses[status] = n
	}
	return out
}

func routeKey(method, path string) string {
	return method + " " + path
}
