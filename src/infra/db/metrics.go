package db

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "catalog"
	metricsSubsystem = "db"
)

// metrics holds the query and transaction instruments. A nil *metrics
// records nothing.
type metrics struct {
	queries      *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	transactions *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, pool *Pool) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &metrics{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "queries_total",
				Help:      "Executed statements by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "query_duration_seconds",
				Help:      "Statement latency including the wait for a connection.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "transactions_total",
				Help:      "Transactions by terminal state.",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.queries, m.duration, m.transactions, newPoolCollector(pool)} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register db metrics: %w", err)
		}
	}
	return m, nil
}

func (m *metrics) observeQuery(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *metrics) observeTransaction(outcome string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(outcome).Inc()
}

// poolCollector exports pool accounting at scrape time.
type poolCollector struct {
	pool *Pool

	maxSize  *prometheus.Desc
	total    *prometheus.Desc
	idle     *prometheus.Desc
	leased   *prometheus.Desc
	acquires *prometheus.Desc
	canceled *prometheus.Desc
}

func newPoolCollector(pool *Pool) *poolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, metricsSubsystem, name), help, nil, nil)
	}
	return &poolCollector{
		pool:     pool,
		maxSize:  desc("pool_max_connections", "Maximum number of connections in the pool."),
		total:    desc("pool_connections", "Connections currently open."),
		idle:     desc("pool_idle_connections", "Connections currently idle."),
		leased:   desc("pool_leased_connections", "Connections currently leased."),
		acquires: desc("pool_acquires_total", "Successful acquires."),
		canceled: desc("pool_canceled_acquires_total", "Acquires canceled or timed out while waiting."),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.maxSize
	ch <- c.total
	ch <- c.idle
	ch <- c.leased
	ch <- c.acquires
	ch <- c.canceled
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stats()
	ch <- prometheus.MustNewConstMetric(c.maxSize, prometheus.GaugeValue, float64(s.MaxSize))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.Total))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle))
	ch <- prometheus.MustNewConstMetric(c.leased, prometheus.GaugeValue, float64(s.Leased))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(s.CanceledAcquire))
}
