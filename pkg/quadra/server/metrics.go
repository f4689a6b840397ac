package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// RequestMetrics tracks request/response statistics for the transport
// layer: REST calls and WebSocket messages both feed it.
type RequestMetrics struct {
	requestCount      int64 // Total requests handled
	errorCount        int64 // Requests answered with an error
	totalResponseTime int64 // Sum of all response times (nanoseconds)
	maxResponseTime   int64 // Maximum response time (nanoseconds)
	startTime         time.Time
}

// NewRequestMetrics creates a new metrics collector.
func NewRequestMetrics() *RequestMetrics {
	return &RequestMetrics{startTime: time.Now()}
}

// Stats is the snapshot served at /stats.
type Stats struct {
	RequestCount    int64     `json:"request_count"`
	ErrorCount      int64     `json:"error_count"`
	ErrorRate       float64   `json:"error_rate"`        // Percentage
	RequestRate     float64   `json:"request_rate"`      // Per second
	AvgResponseTime int64     `json:"avg_response_time"` // Nanoseconds
	MaxResponseTime int64     `json:"max_response_time"` // Nanoseconds
	Timestamp       time.Time `json:"timestamp"`
}

// Observe records one handled request.
func (m *RequestMetrics) Observe(duration time.Duration, failed bool) {
	durationNs := duration.Nanoseconds()

	atomic.AddInt64(&m.requestCount, 1)
	atomic.AddInt64(&m.totalResponseTime, durationNs)
	if failed {
		atomic.AddInt64(&m.errorCount, 1)
	}

	for {
		current := atomic.LoadInt64(&m.maxResponseTime)
		if durationNs <= current {
			break
		}
		if atomic.CompareAndSwapInt64(&m.maxResponseTime, current, durationNs) {
			break
		}
	}
}

// ResponseWriter wrapper to capture status codes
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(data)
}

// Hijack forwards to the underlying writer so WebSocket upgrades work
// behind the middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Middleware records metrics for every HTTP request passing through the
// router.
func (m *RequestMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		m.Observe(time.Since(startTime), wrapped.statusCode >= 400)
	})
}

// GetStats returns the current statistics snapshot.
func (m *RequestMetrics) GetStats() Stats {
	requestCount := atomic.LoadInt64(&m.requestCount)
	errorCount := atomic.LoadInt64(&m.errorCount)
	totalResponseTime := atomic.LoadInt64(&m.totalResponseTime)
	maxResponseTime := atomic.LoadInt64(&m.maxResponseTime)

	stats := Stats{
		RequestCount:    requestCount,
		ErrorCount:      errorCount,
		MaxResponseTime: maxResponseTime,
		Timestamp:       time.Now(),
	}

	if requestCount > 0 {
		stats.ErrorRate = float64(errorCount) / float64(requestCount) * 100
		stats.AvgResponseTime = totalResponseTime / requestCount

		uptime := time.Since(m.startTime)
		if uptime > 0 {
			stats.RequestRate = float64(requestCount) / uptime.Seconds()
		}
	}

	return stats
}

// Reset clears all metrics (useful for testing)
func (m *RequestMetrics) Reset() {
	atomic.StoreInt64(&m.requestCount, 0)
	atomic.StoreInt64(&m.errorCount, 0)
	atomic.StoreInt64(&m.totalResponseTime, 0)
	atomic.StoreInt64(&m.maxResponseTime, 0)
	m.startTime = time.Now()
}
