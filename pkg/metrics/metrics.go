// Package metrics exposes Prometheus instrumentation for the analysis pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters the pipeline increments as it works
type Metrics struct {
	TranscriptsProcessed prometheus.Counter
	ExtractionFailures   prometheus.Counter
	LinesSkipped         prometheus.Counter
	CoursesExtracted     prometheus.Counter
	InvalidRegistrations prometheus.Counter
	CreditLimitWarnings  prometheus.Counter
	ReportsGenerated     *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a metrics set on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		TranscriptsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcript_audit_transcripts_processed_total",
			Help: "Number of transcripts run through the full pipeline",
		}),
		ExtractionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcript_audit_extraction_failures_total",
			Help: "Number of uploads that yielded no usable text",
		}),
		LinesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcript_audit_lines_skipped_total",
			Help: "Course-code-bearing lines the extractor could not parse",
		}),
		CoursesExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcript_audit_courses_extracted_total",
			Help: "Course records successfully extracted",
		}),
		InvalidRegistrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcript_audit_invalid_registrations_total",
			Help: "Course registrations flagged invalid by the validator",
		}),
		CreditLimitWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcript_audit_credit_limit_warnings_total",
			Help: "Semesters exceeding the policy credit ceiling",
		}),
		ReportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transcript_audit_reports_generated_total",
			Help: "Reports generated, by format",
		}, []string{"format"}),
		registry: reg,
	}
}

// Handler returns the /metrics HTTP handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
