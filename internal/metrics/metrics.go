// Package metrics instruments the scheduling service with Prometheus collectors.
package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service encapsulates the process's Prometheus collectors and exposition handler.
type Service struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	scheduleDuration  *prometheus.HistogramVec
	scheduleTotal     *prometheus.CounterVec
	solverFallback    prometheus.Counter
	constraintChecks  *prometheus.CounterVec
	assignmentsPerRun prometheus.Histogram
}

// NewService registers the scheduling service's collectors.
func NewService() *Service {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shiftplan_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftplan_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	scheduleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shiftplan_schedule_duration_seconds",
		Help:    "Duration of schedule() calls",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"algorithm"})

	scheduleTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftplan_schedule_total",
		Help: "Total schedule() calls by outcome algorithm",
	}, []string{"algorithm", "success"})

	solverFallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shiftplan_solver_fallback_total",
		Help: "Total times the ILP solver proved infeasible and the greedy fallback ran",
	})

	constraintChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftplan_constraint_checks_total",
		Help: "Total validate() constraint checks by type and severity",
	}, []string{"constraint_type", "severity"})

	assignmentsPerRun := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shiftplan_assignments_per_schedule",
		Help:    "Number of staff assignments produced per schedule() call",
		Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "shiftplan_goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		scheduleDuration, scheduleTotal, solverFallback, constraintChecks, assignmentsPerRun,
		goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &Service{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		scheduleDuration:  scheduleDuration,
		scheduleTotal:     scheduleTotal,
		solverFallback:    solverFallback,
		constraintChecks:  constraintChecks,
		assignmentsPerRun: assignmentsPerRun,
	}
}

// Handler exposes the Prometheus exposition endpoint.
func (s *Service) Handler() http.Handler {
	if s == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return s.handler
}

// ObserveHTTPRequest records one completed HTTP request.
func (s *Service) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labelStatus := statusLabel(status)
	s.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveSchedule records one schedule() call's outcome and assignment count.
func (s *Service) ObserveSchedule(algorithm string, success bool, duration time.Duration, assignmentCount int) {
	if s == nil {
		return
	}
	s.scheduleDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	s.scheduleTotal.WithLabelValues(algorithm, boolLabel(success)).Inc()
	s.assignmentsPerRun.Observe(float64(assignmentCount))
	if algorithm == "greedy" {
		s.solverFallback.Inc()
	}
}

// ObserveConstraintCheck records one validate() violation by type and severity.
func (s *Service) ObserveConstraintCheck(constraintType, severity string) {
	if s == nil {
		return
	}
	s.constraintChecks.WithLabelValues(constraintType, severity).Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
