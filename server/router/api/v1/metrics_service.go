package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/dentkao/dentkao/internal/observability"
)

// MetricsOverviewResponse represents the overview response of in-process metrics.
type MetricsOverviewResponse struct {
	TotalRequests      int64            `json:"total_requests"`
	SuccessRate        float64          `json:"success_rate"`
	ErrorCount         int64            `json:"error_count"`
	SearchTotal        int64            `json:"search_total"`
	SearchesByStrategy map[string]int64 `json:"searches_by_strategy"`
	AnswersRecorded    int64            `json:"answers_recorded"`
	CacheHits          int64            `json:"cache_hits"`
	CacheMisses        int64            `json:"cache_misses"`
}

// GetMetricsOverview returns the in-process metrics overview.
// GET /api/v1/metrics
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snapshot := s.metrics.Snapshot()
	return writeOK(c, metricsOverviewFromSnapshot(snapshot))
}

func metricsOverviewFromSnapshot(snapshot *observability.MetricsSnapshot) MetricsOverviewResponse {
	return MetricsOverviewResponse{
		TotalRequests:      snapshot.RequestTotal,
		SuccessRate:        snapshot.SuccessRate(),
		ErrorCount:         snapshot.RequestFailed,
		SearchTotal:        snapshot.SearchTotal(),
		SearchesByStrategy: snapshot.SearchesByStrategy,
		AnswersRecorded:    snapshot.AnswersRecorded,
		CacheHits:          snapshot.CacheHits,
		CacheMisses:        snapshot.CacheMisses,
	}
}
