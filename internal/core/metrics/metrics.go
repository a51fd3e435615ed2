package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Catalog fetch sources.
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
	SourceError  = "error"
)

// Checkout outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeInvalid   = "invalid"
	OutcomeEmptyCart = "empty_cart"
	OutcomeFailed    = "failed"
)

// Metrics holds the Prometheus collectors of the storefront.
// All recording methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	catalogFetches   *prometheus.CounterVec
	invalidProducts  prometheus.Counter
	cartMutations    *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
	ordersCreated    prometheus.Counter
	ordersCompleted  prometheus.Counter
	checkoutDuration prometheus.Histogram
}

// New creates a dedicated registry with runtime collectors and the storefront metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newWithRegistry(reg)
}

func newWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		catalogFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetches_total",
			Help:      "Catalog reads by source (cache, remote, error).",
		}, []string{"resource", "source"}),
		invalidProducts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_invalid_products_total",
			Help:      "Products dropped because they failed schema validation.",
		}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation.",
		}, []string{"operation"}),
		checkoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_submissions_total",
			Help:      "Checkout submissions by outcome.",
		}, []string{"outcome"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Pending orders created at checkout.",
		}),
		ordersCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_completed_total",
			Help:      "Orders transitioned to completed.",
		}),
		checkoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_session_duration_seconds",
			Help:      "Time spent creating the pending order and payment session.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.catalogFetches,
		m.invalidProducts,
		m.cartMutations,
		m.checkoutSessions,
		m.ordersCreated,
		m.ordersCompleted,
		m.checkoutDuration,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CatalogFetch records where a catalog resource was served from.
func (m *Metrics) CatalogFetch(resource, source string) {
	if m == nil {
		return
	}
	m.catalogFetches.WithLabelValues(resource, source).Inc()
}

// InvalidProducts records products dropped by validation.
func (m *Metrics) InvalidProducts(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.invalidProducts.Add(float64(n))
}

// CartMutation records a cart operation (add, remove, clear).
func (m *Metrics) CartMutation(operation string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(operation).Inc()
}

// Checkout records the outcome of a checkout submission.
func (m *Metrics) Checkout(outcome string) {
	if m == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(outcome).Inc()
}

// ObserveCheckoutDuration records how long payment session creation took.
func (m *Metrics) ObserveCheckoutDuration(seconds float64) {
	if m == nil {
		return
	}
	m.checkoutDuration.Observe(seconds)
}

// OrderCreated records a new pending order.
func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// OrderCompleted records a pending order being finalized.
func (m *Metrics) OrderCompleted() {
	if m == nil {
		return
	}
	m.ordersCompleted.Inc()
}
