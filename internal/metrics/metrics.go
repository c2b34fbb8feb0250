// Package metrics holds the Prometheus collectors for the engagement
// pipeline. They register with the default registry and are served on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipehub",
		Name:      "notifications_created_total",
		Help:      "Notifications persisted, by type.",
	}, []string{"type"})

	NotificationsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipehub",
		Name:      "notifications_suppressed_total",
		Help:      "Notifications skipped because the actor is the recipient.",
	}, []string{"type"})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipehub",
		Name:      "notifications_failed_total",
		Help:      "Notifications that could not be persisted.",
	}, []string{"type"})

	NotificationsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recipehub",
		Name:      "notifications_purged_total",
		Help:      "Expired notifications deleted by the reaper.",
	})

	MailSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipehub",
		Name:      "mail_sent_total",
		Help:      "Outgoing mail attempts, by result.",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recipehub",
		Name:      "http_requests_total",
		Help:      "HTTP requests, by route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recipehub",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
