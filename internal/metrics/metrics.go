package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "honeypot"

var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Sessions opened since start.",
	})

	Messages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_total",
		Help:      "Messages appended to session logs, by sender.",
	}, []string{"sender"})

	ScamsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scams_detected_total",
		Help:      "Sessions whose first scam verdict landed in each category.",
	}, []string{"category"})

	Replies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "replies_total",
		Help:      "Replies sent, by source: generated, fallback or neutral.",
	}, []string{"source"})

	Callbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "callbacks_total",
		Help:      "Final report attempts, by outcome.",
	}, []string{"outcome"})

	ReplyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reply_duration_seconds",
		Help:      "Time spent producing a reply, fallbacks included.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)

// Reply sources.
const (
	SourceGenerated = "generated"
	SourceFallback  = "fallback"
	SourceNeutral   = "neutral"
)

// Callback outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeClaimed   = "claimed_elsewhere"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
