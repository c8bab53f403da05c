package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_queries_enqueued_total",
		Help: "Total number of queries placed on the engine queue.",
	})

	QueriesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lineage_queries_rejected_total",
		Help: "Total number of queries rejected due to a full queue.",
	})

	QueriesExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_queries_executed_total",
		Help: "Total number of queries executed, labelled by op and status.",
	}, []string{"op", "status"})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lineage_query_duration_ms",
		Help:    "Query execution latency in milliseconds, labelled by op.",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 25, 50, 100, 250},
	}, []string{"op"})

	LineagesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lineage_lineages_loaded",
		Help: "Number of lineages in the active forest.",
	})

	VampiresLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lineage_vampires_loaded",
		Help: "Number of vampires across all lineages in the active forest.",
	})

	Reloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lineage_config_reloads_total",
		Help: "Total number of configuration reloads, labelled by status.",
	}, []string{"status"})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lineage_queue_utilization_ratio",
		Help: "Current query queue utilization (0–1).",
	})
)
