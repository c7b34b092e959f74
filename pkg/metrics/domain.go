package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters, registered on the default registerer like the HTTP
// middleware metrics.
var (
	PaymentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paygate_payments_created_total",
		Help: "Payment transactions opened, by gateway.",
	}, []string{"gateway"})

	WebhooksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paygate_webhooks_processed_total",
		Help: "Webhook callbacks fully processed, by gateway and normalized status.",
	}, []string{"gateway", "status"})

	WebhooksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paygate_webhooks_rejected_total",
		Help: "Webhook callbacks rejected before reconciliation, by gateway.",
	}, []string{"gateway"})
)
