// Package metrics provides Prometheus metrics for the trade-coin backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecoin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradecoin_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Forecast Batch Metrics
	ForecastEntitiesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecoin_forecast_entities_written_total",
			Help: "Number of forecast artifacts written by the batch generator",
		},
	)

	ForecastEntitiesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecoin_forecast_entities_skipped_total",
			Help: "Number of entities skipped for having no valid observations",
		},
	)

	ForecastEntitiesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecoin_forecast_entities_failed_total",
			Help: "Number of entities whose model fit or artifact write failed",
		},
	)

	ForecastBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradecoin_forecast_batch_duration_seconds",
			Help:    "Time taken by a full forecast generator run",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// Forecast Store Metrics
	ForecastCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecoin_forecast_cache_hits_total",
			Help: "Forecast artifact cache hit count",
		},
	)

	ForecastCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecoin_forecast_cache_misses_total",
			Help: "Forecast artifact cache miss count",
		},
	)

	// Account Metrics
	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecoin_registrations_total",
			Help: "Total number of user registrations",
		},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecoin_logins_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"}, // "success" or "failed"
	)

	WithdrawalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecoin_withdrawals_total",
			Help: "Total number of successful coin withdrawals",
		},
	)

	WithdrawnCoinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecoin_withdrawn_coins_total",
			Help: "Total trade coins withdrawn",
		},
	)

	PredictionRewardsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradecoin_prediction_rewards_total",
			Help: "Total number of recorded prediction rewards",
		},
	)
)
