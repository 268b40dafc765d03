// Package metrics exposes Prometheus counters for statement parsing and export.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cleared-dev/icsimport/internal/model"
)

const (
	metricPrefix = "icsimport_"

	resultSuccess = "success"
	resultWarning = "warning"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	statementsParsed   *prometheus.CounterVec
	parseLatency       *prometheus.HistogramVec
	transactionsParsed *prometheus.CounterVec
	warningsEmitted    prometheus.Counter
	exportsTotal       *prometheus.CounterVec
)

// Init registers the metrics with the default registry. Observations made
// before Init are dropped.
func Init() {
	registerOnce.Do(func() {
		statementsParsed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statements_parsed_total",
				Help: "Total statement parse attempts by format and result",
			},
			[]string{"format", "result"},
		)
		parseLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "parse_latency_seconds",
				Help:    "Statement parse latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)
		transactionsParsed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "transactions_parsed_total",
				Help: "Total transactions parsed by direction",
			},
			[]string{"direction"},
		)
		warningsEmitted = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "warnings_total",
				Help: "Total cross-validation warnings",
			},
		)
		exportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total statement exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			statementsParsed,
			parseLatency,
			transactionsParsed,
			warningsEmitted,
			exportsTotal,
		)
	})
}

// ObserveParse records the outcome of one statement parse.
func ObserveParse(format string, result *model.ParseResult, err error, duration time.Duration) {
	if statementsParsed == nil {
		return
	}
	outcome := resultSuccess
	switch {
	case err != nil || result == nil:
		outcome = resultError
	case len(result.Warnings) > 0:
		outcome = resultWarning
	}
	statementsParsed.WithLabelValues(format, outcome).Inc()
	parseLatency.WithLabelValues(format).Observe(duration.Seconds())

	if outcome == resultError {
		return
	}
	for _, tx := range result.Transactions {
		transactionsParsed.WithLabelValues(string(tx.Direction)).Inc()
	}
	warningsEmitted.Add(float64(len(result.Warnings)))
}

// ObserveExport records one export in format.
func ObserveExport(format string, err error) {
	if exportsTotal == nil {
		return
	}
	outcome := resultSuccess
	if err != nil {
		outcome = resultError
	}
	exportsTotal.WithLabelValues(format, outcome).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
