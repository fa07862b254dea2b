// Package services – domain metrics
//
// Prometheus collectors for the entitlement pipeline. Labels are kept to
// small closed sets (outcome, source) so cardinality stays bounded.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// grantsTotal counts entitlement grant attempts by source
	// ("direct"|"webhook") and outcome ("created"|"already_owned").
	grantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_grants_total",
			Help: "Total entitlement grant attempts by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	// webhookEventsTotal counts verified provider events by acknowledgment
	// class ("processed"|"ignored_event_type"|"ignored_metadata").
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Total verified payment webhook events by ack class.",
		},
		[]string{"ack"},
	)
)

func init() {
	prometheus.MustRegister(grantsTotal, webhookEventsTotal)
}
