package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomstats_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	UpstreamCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomstats_upstream_calls_total",
		Help: "Vendor API calls by operation and outcome",
	}, []string{"op", "outcome"})

	DayCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomstats_daycache_lookups_total",
		Help: "Day cache lookups by mode (batch, single) and outcome",
	}, []string{"mode", "outcome"})

	MalformedRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roomstats_malformed_records_total",
		Help: "Vendor records skipped during normalization",
	})

	CollectRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomstats_collect_runs_total",
		Help: "Day collection runs by outcome",
	}, []string{"outcome"})

	CollectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roomstats_collect_duration_seconds",
		Help:    "Fetch, normalize and store duration of one day",
		Buckets: prometheus.DefBuckets,
	})

	ReportMailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roomstats_report_mails_total",
		Help: "Daily report mails by outcome",
	}, []string{"outcome"})
)
