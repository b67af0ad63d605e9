// Package metrics exposes Prometheus collectors for the HTTP layer and the
// scoring endpoints.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Scoring metrics
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triageon_evaluations_total",
			Help: "Total number of risk evaluations by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	guardRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triageon_guard_rejections_total",
			Help: "Total number of triage records rejected by field validation",
		},
		[]string{"field", "reason"},
	)

	modelPredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triageon_model_predictions_total",
			Help: "Total number of model predictions by model and status",
		},
		[]string{"model", "status"},
	)

	panicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triageon_panics_total",
			Help: "Handler panics recovered, by route",
		},
		[]string{"path"},
	)

	modelPredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triageon_model_prediction_duration_seconds",
			Help:    "Model prediction duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)
)

// Handler serves the Prometheus exposition format.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// Middleware records request counts and latency. Paths are labelled with
// the matched route template to keep cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = 500
				}
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			httpRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// --- Scoring metric helpers ---

// RecordEvaluation records one evaluation result (a severity stage or a
// triage level).
func RecordEvaluation(service, outcome string) {
	evaluationsTotal.WithLabelValues(service, outcome).Inc()
}

// RecordGuardRejection records a triage record rejected by the field guard.
func RecordGuardRejection(field, reason string) {
	guardRejectionsTotal.WithLabelValues(field, reason).Inc()
}

// RecordPrediction records a model call.
func RecordPrediction(model string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	modelPredictionsTotal.WithLabelValues(model, status).Inc()
	modelPredictionDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordPanic records a recovered handler panic.
func RecordPanic(path string) {
	if path == "" {
		path = "unmatched"
	}
	panicsTotal.WithLabelValues(path).Inc()
}
