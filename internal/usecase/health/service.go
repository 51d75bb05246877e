package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the backend answers but searches are being shed.
	Degraded Status = "degraded"
	// Unhealthy indicates the search backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckOpen indicates an open circuit breaker.
	CheckOpen CheckResult = "open"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	search  SearchPinger
	breaker BreakerReporter
}

// New creates a Service. breaker can be nil.
func New(search SearchPinger, breaker BreakerReporter) *Service {
	return &Service{search: search, breaker: breaker}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	status := Healthy

	if err := s.search.Ping(ctx); err != nil {
		checks["search"] = CheckError
		status = Unhealthy
	} else {
		checks["search"] = CheckOK
	}

	if s.breaker != nil {
		if s.breaker.Open() {
			checks["breaker"] = CheckOpen
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["breaker"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
