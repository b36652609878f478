package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lendit_registrations_total",
		Help: "Total number of users registered",
	})

	RegistrationsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lendit_registrations_rejected_total",
		Help: "Total number of rejected registrations",
	}, []string{"reason"})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lendit_logins_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

	ProductsListedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lendit_products_listed_total",
		Help: "Total number of products listed by owners",
	})

	ReportQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lendit_report_query_latency_seconds",
		Help:    "Latency of reporting queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})

	ReportQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lendit_report_query_errors_total",
		Help: "Total number of failed reporting queries",
	}, []string{"report"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
