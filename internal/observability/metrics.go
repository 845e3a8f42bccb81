package observability

import (
	"sync"
	"sync/atomic"
)

// Metrics collects in-process counters for the study server. There is no
// external metrics system; the snapshot is exposed on a debug endpoint.
type Metrics struct {
	mu sync.Mutex

	requestTotal    atomic.Int64
	requestFailed   atomic.Int64
	answersRecorded atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64

	// Searches broken down by routing strategy.
	searchesByStrategy map[string]*atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		searchesByStrategy: make(map[string]*atomic.Int64),
	}
}

// Global metrics instance.
var globalMetrics = NewMetrics()

// GlobalMetrics returns the global metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records an API request.
func (m *Metrics) RecordRequest() {
	m.requestTotal.Add(1)
}

// RecordFailure records a failed API request.
func (m *Metrics) RecordFailure() {
	m.requestFailed.Add(1)
}

// RecordSearch records a search served by the given routing strategy.
func (m *Metrics) RecordSearch(strategy string) {
	m.strategyCounter(strategy).Add(1)
}

// RecordAnswer records one answered question.
func (m *Metrics) RecordAnswer() {
	m.answersRecorded.Add(1)
}

// RecordCacheHit records a state blob cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a state blob cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

func (m *Metrics) strategyCounter(strategy string) *atomic.Int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	counter, ok := m.searchesByStrategy[strategy]
	if !ok {
		counter = &atomic.Int64{}
		m.searchesByStrategy[strategy] = counter
	}
	return counter
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)
	m.answersRecorded.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)

	m.mu.Lock()
	m.searchesByStrategy = make(map[string]*atomic.Int64)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time snapshot of all counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	searches := make(map[string]int64, len(m.searchesByStrategy))
	for strategy, counter := range m.searchesByStrategy {
		searches[strategy] = counter.Load()
	}

	return &MetricsSnapshot{
		RequestTotal:       m.requestTotal.Load(),
		RequestFailed:      m.requestFailed.Load(),
		AnswersRecorded:    m.answersRecorded.Load(),
		CacheHits:          m.cacheHits.Load(),
		CacheMisses:        m.cacheMisses.Load(),
		SearchesByStrategy: searches,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal       int64            `json:"requestTotal"`
	RequestFailed      int64            `json:"requestFailed"`
	AnswersRecorded    int64            `json:"answersRecorded"`
	CacheHits          int64            `json:"cacheHits"`
	CacheMisses        int64            `json:"cacheMisses"`
	SearchesByStrategy map[string]int64 `json:"searchesByStrategy"`
}

// SuccessRate returns the request success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}

// SearchTotal returns the total number of searches across all strategies.
func (s *MetricsSnapshot) SearchTotal() int64 {
	var total int64
	for _, count := range s.SearchesByStrategy {
		total += count
	}
	return total
}
