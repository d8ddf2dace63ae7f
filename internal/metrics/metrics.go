// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FormsCached = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "forms_cached",
			Help: "Number of forms currently held in the in-memory cache.",
		})

	FormLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_load_total",
			Help: "Cumulative number of forms loaded from the database.",
		})

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Submission pipeline outcomes by result.",
		},
		[]string{"result"}) // accepted, nonce, rate_limited, honeypot, validation, gdpr, captcha, storage

	EmailsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Emails handed to the sender, by kind.",
		},
		[]string{"kind"}) // notification, auto_reply

	EmailErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "email_errors_total",
			Help: "Cumulative number of email delivery failures.",
		})

	WebhookErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_errors_total",
			Help: "Cumulative number of webhook delivery failures.",
		})
)

func init() {
	prometheus.MustRegister(
		FormsCached,
		FormLoadTotal,
		SubmissionsTotal,
		EmailsSentTotal,
		EmailErrorsTotal,
		WebhookErrorsTotal,
	)
}
