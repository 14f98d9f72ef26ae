// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActionsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jaskmap_actions_dispatched_total",
		Help: "Total store actions dispatched, by action type",
	}, []string{"type"})
	RouteEmissionsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jaskmap_route_emissions_dropped_total",
		Help: "Route parameter emissions ignored because x, y or z was missing",
	})
	Navigations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jaskmap_navigations_total",
		Help: "Total navigations applied to the router",
	})
	OverlaysOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jaskmap_overlays_opened_total",
		Help: "Total POI detail overlays opened",
	})
	OverlaysDismissed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jaskmap_overlays_dismissed_total",
		Help: "Total POI detail overlays dismissed",
	})
	FeatureDecodeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jaskmap_feature_decode_failures_total",
		Help: "Map clicks whose feature name property could not be decoded",
	})
	FeatureLoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "jaskmap_feature_load_duration_ms",
		Help:    "Feature document fetch and index duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
)

func init() {
	prometheus.MustRegister(ActionsDispatched)
	prometheus.MustRegister(RouteEmissionsDropped)
	prometheus.MustRegister(Navigations)
	prometheus.MustRegister(OverlaysOpened)
	prometheus.MustRegister(OverlaysDismissed)
	prometheus.MustRegister(FeatureDecodeFailures)
	prometheus.MustRegister(FeatureLoadDurationMs)
}

// Handler serves the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
