package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	OrdersSubmitted  prometheus.Counter
	PaymentsApplied  prometheus.Counter
	SweepCancelled   prometheus.Counter
	SweepCompleted   prometheus.Counter
	ReportCacheHits  *prometheus.CounterVec
	ReportCacheMiss  *prometheus.CounterVec
	ReportCacheError prometheus.Counter
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	submitted := prometheus.NewCounter(prometheus.CounterOpts{Name: "eatery_orders_submitted_total"})
	paid := prometheus.NewCounter(prometheus.CounterOpts{Name: "eatery_payments_applied_total"})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{Name: "eatery_sweep_cancelled_total"})
	completed := prometheus.NewCounter(prometheus.CounterOpts{Name: "eatery_sweep_completed_total"})
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "eatery_report_cache_hits_total"}, []string{"metric"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "eatery_report_cache_misses_total"}, []string{"metric"})
	cacheErrors := prometheus.NewCounter(prometheus.CounterOpts{Name: "eatery_report_cache_errors_total"})

	reg.MustRegister(submitted, paid, cancelled, completed, hits, misses, cacheErrors)

	return &Registry{
		reg:              reg,
		OrdersSubmitted:  submitted,
		PaymentsApplied:  paid,
		SweepCancelled:   cancelled,
		SweepCompleted:   completed,
		ReportCacheHits:  hits,
		ReportCacheMiss:  misses,
		ReportCacheError: cacheErrors,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
