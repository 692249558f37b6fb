// Package metrics exposes Prometheus instrumentation for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook intake metrics
	WebhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wafflebot_webhook_requests_total",
			Help: "Total number of webhook requests received",
		},
		[]string{"endpoint", "status"},
	)

	SlackEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wafflebot_slack_events_total",
			Help: "Total number of Slack event callbacks by event type",
		},
		[]string{"type"},
	)

	DeployEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wafflebot_deploy_events_total",
			Help: "Total number of GitHub deploy webhook events by action",
		},
		[]string{"action"},
	)

	// Waffle economy metrics
	WafflesGivenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wafflebot_waffles_given_total",
			Help: "Total number of waffle points persisted",
		},
	)

	WafflesDeniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wafflebot_waffles_denied_total",
			Help: "Total number of gifts denied by the daily cap",
		},
	)

	// Background task metrics
	TaskFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wafflebot_task_failures_total",
			Help: "Total number of background task failures",
		},
		[]string{"task"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wafflebot_task_duration_seconds",
			Help:    "Duration of background tasks in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)
)
