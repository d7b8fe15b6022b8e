package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PageViewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "silovra_page_views_total",
			Help: "Total number of public profile pages resolved",
		},
	)

	AnalyticsEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silovra_analytics_events_total",
			Help: "Total number of analytics events accepted for ingestion",
		},
		[]string{"kind"},
	)

	AnalyticsEventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silovra_analytics_events_dropped_total",
			Help: "Total number of analytics events discarded at the absorption boundary",
		},
		[]string{"kind", "reason"},
	)

	WebhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silovra_webhook_deliveries_total",
			Help: "Total number of payment webhook deliveries by outcome",
		},
		[]string{"event", "outcome"},
	)
)
