package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the credential lifecycle.
type Metrics struct {
	CredentialsIssued prometheus.Counter
	IssueConflicts    prometheus.Counter
	IssueFailures     prometheus.Counter
	Verifications     *prometheus.CounterVec
	IssueLatency      prometheus.Histogram
	VerifyLatency     prometheus.Histogram
}

// New creates and registers all credential metrics on the default registry.
// Call once per process.
func New() *Metrics {
	return &Metrics{
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		IssueConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_issue_conflicts_total",
			Help: "Total number of issuance attempts rejected for a duplicate ID",
		}),
		IssueFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_issue_failures_total",
			Help: "Total number of issuance attempts that failed on storage errors",
		}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_verifications_total",
			Help: "Total number of verification lookups, labeled by outcome",
		}, []string{"status"}),
		IssueLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vouch_issue_latency_seconds",
			Help:    "Latency of the issuance operation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vouch_verify_latency_seconds",
			Help:    "Latency of the verification operation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
