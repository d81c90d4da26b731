package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter mirrors collected metrics into Prometheus instruments held by its
// own registry, so several exporters can coexist in one process (tests).
type PrometheusExporter struct {
	registry *prometheus.Registry

	queueDepth      *prometheus.GaugeVec
	messagesPurged  *prometheus.CounterVec
	pollErrorsTotal *prometheus.CounterVec
	operationsTotal *prometheus.CounterVec
}

var _ Exporter = (*PrometheusExporter)(nil)

func NewPrometheusExporter() *PrometheusExporter {
	exp := &PrometheusExporter{
		registry: prometheus.NewRegistry(),

		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "otterwatch_queue_depth",
				Help: "Estimated number of messages in the queue view, capped by the depth ceiling",
			},
			[]string{"queue_name", "view"},
		),

		messagesPurged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otterwatch_messages_purged_total",
				Help: "Total number of messages removed by purge operations",
			},
			[]string{"queue_name", "view"},
		),

		// transport and validation failures of polled snapshots; polling keeps going
		pollErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otterwatch_poll_errors_total",
				Help: "Total number of metrics snapshots captured with an error",
			},
			[]string{"queue_name"},
		),

		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "otterwatch_operations_total",
				Help: "Total number of user operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}

	exp.registry.MustRegister(exp.queueDepth)
	exp.registry.MustRegister(exp.messagesPurged)
	exp.registry.MustRegister(exp.pollErrorsTotal)
	exp.registry.MustRegister(exp.operationsTotal)
	exp.registry.MustRegister(collectors.NewGoCollector())
	exp.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return exp
}

func (pe *PrometheusExporter) SetQueueDepth(queueName, view string, depth uint64) {
	pe.queueDepth.WithLabelValues(queueName, view).Set(float64(depth))
}

func (pe *PrometheusExporter) AddPurged(queueName, view string, count uint64) {
	pe.messagesPurged.WithLabelValues(queueName, view).Add(float64(count))
}

func (pe *PrometheusExporter) IncPollErrors(queueName string) {
	pe.pollErrorsTotal.WithLabelValues(queueName).Inc()
}

func (pe *PrometheusExporter) IncOperations(operation, outcome string) {
	pe.operationsTotal.WithLabelValues(operation, outcome).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (pe *PrometheusExporter) Registry() *prometheus.Registry {
	return pe.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (pe *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(pe.registry, promhttp.HandlerOpts{})
}
