package metrics

import (
	"strconv"
	"strings"
	"time"
)

// probePaths are served for orchestrators and scrapers, not API clients
var probePaths = []string{"/metrics", "/health", "/ready"}

// RecordHTTPRequest counts one API call by route pattern and status class
// and observes its latency
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		m.HTTPRequestsTotal.WithLabelValues(method, route, categorizeStatus(statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	})
}

// categorizeStatus folds a status code into its class label ("4xx").
// Anything outside 200..599 is "unknown".
func categorizeStatus(code int) string {
	if code < 200 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// ShouldSkipEndpoint reports whether path is a probe or docs endpoint, either
// at the root or under the API base path
func ShouldSkipEndpoint(path string) bool {
	if strings.Contains(path, "/swagger/") {
		return true
	}
	for _, probe := range probePaths {
		if strings.HasSuffix(path, probe) {
			return true
		}
	}
	return false
}
