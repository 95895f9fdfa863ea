// Package health aggregates component health into one report: vector
// store reachability and latency, embedding provider availability, and
// per-collection index presence with record counts.
package health

import (
	"context"

	"github.com/smart-mall/concierge/internal/domain/catalog"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// CollectionStatus reports one collection's index presence and size.
type CollectionStatus struct {
	Exists bool `json:"exists"`
	Count  int  `json:"count"`
}

// Report aggregates health check results.
type Report struct {
	Status      Status                      `json:"status"`
	Checks      map[string]CheckResult      `json:"checks"`
	Collections map[string]CollectionStatus `json:"collections"`
	LatencyMS   int64                       `json:"latency_ms"`
}

// Service coordinates health checks.
type Service struct {
	store     VectorChecker
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil.
func New(store VectorChecker, embedding EmbeddingChecker) *Service {
	return &Service{store: store, embedding: embedding}
}

// Check runs health checks against all components. Collection counts
// are best-effort; a count failure marks the collection missing.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	collections := make(map[string]CollectionStatus)

	healthy, latency, err := s.store.HealthCheck(ctx)
	if err != nil || !healthy {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	for _, col := range catalog.All() {
		status := CollectionStatus{}
		exists, err := s.store.HasCollection(ctx, col)
		if err == nil && exists {
			status.Exists = true
			if n, err := s.store.Count(ctx, col); err == nil {
				status.Count = n
			}
		}
		collections[col.Name] = status
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["database"] == CheckError {
		status = Unhealthy
	}

	return Report{
		Status:      status,
		Checks:      checks,
		Collections: collections,
		LatencyMS:   latency.Milliseconds(),
	}
}
