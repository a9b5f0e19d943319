package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		pixCreatedTotal,
		webhooksTotal,
		entitlementsGrantedTotal,
		entitlementsExpiredTotal,
	)
}

var (
	pixCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pix_charges_created_total",
			Help: "PIX charge creations by initial provider status (or 'rejected').",
		},
		[]string{"status"},
	)

	webhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Provider notifications by processing outcome.",
		},
		[]string{"outcome"},
	)

	entitlementsGrantedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vip_entitlements_granted_total",
			Help: "VIP entitlements granted, labeled by tier.",
		},
		[]string{"tier"},
	)

	entitlementsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vip_entitlements_expired_total",
			Help: "Guilds downgraded to free after their VIP window lapsed.",
		},
	)
)

func IncPixCreated(status string) {
	pixCreatedTotal.WithLabelValues(norm(status)).Inc()
}

func IncWebhook(outcome string) {
	webhooksTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncEntitlementGranted(tier string) {
	entitlementsGrantedTotal.WithLabelValues(norm(tier)).Inc()
}

func AddEntitlementsExpired(n int) {
	entitlementsExpiredTotal.Add(float64(n))
}
