package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pointgate_hooks_total",
		Help: "The total number of product hook calls processed",
	}, []string{"hook", "status"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pointgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	DayFinalizations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointgate_day_finalizations_total",
		Help: "Total per-user day finalizations performed by the rollover engine",
	})

	ReferralCredits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pointgate_referral_credits_total",
		Help: "Referral credit applications by outcome",
	}, []string{"outcome"}) // applied / truncated / zero

	FaucetRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pointgate_faucet_rejects_total",
		Help: "Faucet claim rejections by reason",
	}, []string{"reason"})

	TierChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointgate_tier_changes_total",
		Help: "Total tier transitions observed on day finalization",
	})
)
