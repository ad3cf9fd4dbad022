// Package metrics holds the Prometheus collectors shared by the HTTP layer
// and the query executor. It is a standalone package so repositories and
// middlewares can both import it.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests currently being served",
	})

	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crud_operations_total",
		Help: "CRUD operations by operation, table and outcome",
	}, []string{"operation", "table", "outcome"}) // outcome: ok|error

	QueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crud_operation_duration_seconds",
		Help:    "CRUD operation latency",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"operation"})

	CatalogLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schema_catalog_loads_total",
		Help: "Physical schema catalog loads by result",
	}, []string{"result"}) // result: ok|failed

	CatalogTables = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schema_catalog_tables",
		Help: "Tables and views known to the schema catalog",
	})
)

// Register registers every collector on reg (default registerer when nil),
// plus a pool collector when pool is set. Duplicates are ignored.
func Register(reg prometheus.Registerer, pool *pgxpool.Pool) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		HTTPRequestsTotal, HTTPRequestDuration, HTTPInflight,
		QueriesTotal, QueryDuration,
		CatalogLoads, CatalogTables,
	}
	if pool != nil {
		collectors = append(collectors, newPoolCollector(pool))
	}
	for _, c := range collectors {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

// Handler exposes the default gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveOperation records one executor call.
func ObserveOperation(op, table string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	QueriesTotal.WithLabelValues(op, table, outcome).Inc()
	QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveCatalogLoad records a physical catalog load.
func ObserveCatalogLoad(tables int, err error) {
	if err != nil {
		CatalogLoads.WithLabelValues("failed").Inc()
		return
	}
	CatalogLoads.WithLabelValues("ok").Inc()
	CatalogTables.Set(float64(tables))
}

func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return nil
		}
		return err
	}
	return nil
}

type poolCollector struct {
	pool *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newPoolCollector(pool *pgxpool.Pool) *poolCollector {
	return &poolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("pgxpool_acquired_conns", "Connections currently acquired", nil, nil),
		idleDesc:     prometheus.NewDesc("pgxpool_idle_conns", "Idle connections", nil, nil),
		totalDesc:    prometheus.NewDesc("pgxpool_total_conns", "Total connections", nil, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
}
