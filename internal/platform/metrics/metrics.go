// Package metrics provides Prometheus metrics for the peerbonus service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters the vote ledger and payout pipeline report into.
type Metrics struct {
	registry *prometheus.Registry

	VotesCast        prometheus.Counter
	VotesUpdated     prometheus.Counter
	Recalculations   *prometheus.CounterVec
	OutboxPublished  prometheus.Counter
	SessionsClosed   prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		VotesCast: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Number of new vote rows created.",
		}),
		VotesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_updated_total",
			Help:      "Number of existing vote rows overwritten by resubmission.",
		}),
		Recalculations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recalculations_total",
			Help:      "Recalculation runs by outcome.",
		}, []string{"outcome"}),
		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox rows published to the event bus.",
		}),
		SessionsClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Voting sessions transitioned to closed.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status class.",
		}, []string{"route", "status"}),
	}
}

// Handler serves the registry for the /metrics route.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
