package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	errorCount    map[string]int64
	toolCallCount map[string]int64
	toolCallNanos map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		toolCallCount: make(map[string]int64),
		toolCallNanos: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments counters for request errors.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordToolCall increments per-tool dispatch counters.
func (m *Metrics) RecordToolCall(tool, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	key := tool + "|" + outcome
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolCallCount[key]++
	m.toolCallNanos[key] += int64(duration)
}

// ToolCallCount returns the counter for a tool/outcome pair.
func (m *Metrics) ToolCallCount(tool, outcome string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toolCallCount[tool+"|"+outcome]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
