// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netmon_requests_total",
			Help: "Requests served, labelled by route.",
		}, []string{"route"})

	BotBlockedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "netmon_bot_blocked_total",
			Help: "Requests rejected by the bot-signature filter.",
		})

	UnauthorizedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "netmon_unauthorized_total",
			Help: "Privileged-route requests rejected for a bad token.",
		})

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "netmon_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter.",
		})

	CounterStoreErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "netmon_counter_store_errors_total",
			Help: "Counter-store failures absorbed by the fail-open policy.",
		})

	VisitLogErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "netmon_visit_log_errors_total",
			Help: "Visit-log writes that failed and were discarded.",
		})

	LookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netmon_lookup_total",
			Help: "External IP lookups, labelled by outcome.",
		}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		BotBlockedTotal,
		UnauthorizedTotal,
		RateLimitedTotal,
		CounterStoreErrorsTotal,
		VisitLogErrorsTotal,
		LookupTotal,
	)
}
