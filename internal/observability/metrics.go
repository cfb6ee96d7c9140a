package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/google/bundletool-sub016/internal/engine"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apkmatch_requests_total",
			Help: "Total HTTP requests",
		}, []string{"code"},
	)
	Latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "apkmatch_request_duration_seconds",
		Help:    "Request latency seconds",
		Buckets: prometheus.DefBuckets,
	})
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "apkmatch_in_flight",
		Help: "In-flight HTTP requests",
	})
	MatchOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apkmatch_match_outcomes_total",
			Help: "Device matches by outcome",
		}, []string{"outcome"},
	)
	SelectedApks = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "apkmatch_selected_apks",
		Help:    "Number of APKs selected per successful match",
		Buckets: prometheus.LinearBuckets(1, 2, 10),
	})
	CatalogApps = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "apkmatch_catalog_apps",
		Help: "Apps held by the in-memory catalog",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal, Latency, InFlight, MatchOutcomes, SelectedApks, CatalogApps)
}

func MetricsHandler() http.Handler { return promhttp.Handler() }

// Outcome classifies the result of one device match.
func Outcome(n int, err error) string {
	switch {
	case errors.Is(err, engine.ErrIncompatibleDevice):
		return "incompatible"
	case errors.Is(err, engine.ErrInvalidRequest):
		return "invalid"
	case err != nil:
		return "error"
	case n == 0:
		return "empty"
	default:
		return "matched"
	}
}

// ObserveMatch records the outcome of one device match.
func ObserveMatch(n int, err error) {
	MatchOutcomes.WithLabelValues(Outcome(n, err)).Inc()
	if err == nil && n > 0 {
		SelectedApks.Observe(float64(n))
	}
}

type rec struct {
	http.ResponseWriter
	code int
}

func (r *rec) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func Measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		InFlight.Inc()
		defer InFlight.Dec()

		rr := &rec{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rr, r)

		Latency.Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(strconv.Itoa(rr.code)).Inc()
	})
}
