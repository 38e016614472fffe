package metric

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"image_conversion/pkg/logger"
)

var (
	// ConversionsInFlight tracks outstanding permits; it can never
	// exceed the configured worker count.
	ConversionsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "imgconv",
		Name:      "conversions_in_flight",
		Help:      "Number of conversions currently holding a permit.",
	})

	ConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imgconv",
		Name:      "conversions_total",
		Help:      "Completed conversions by outcome.",
	}, []string{"outcome"})

	BusyRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "imgconv",
		Name:      "busy_rejections_total",
		Help:      "Requests rejected because admission was saturated.",
	})

	ConversionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "imgconv",
		Name:      "conversion_duration_seconds",
		Help:      "Wall time spent inside the codec.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Serve exposes the scrape endpoint on its own listener so scraping
// never competes with conversions for the worker pool.
func Serve(port string, l logger.Interface) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	if err := http.ListenAndServe(net.JoinHostPort("", port), mux); err != nil {
		l.Error(err, "telemetry - metric - Serve")
	}
}
