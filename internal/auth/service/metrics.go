package service

import (
	"strconv"

	"github.com/aussiebroadwan/ccauth/internal/auth/store"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the authorization server's domain counters and gauges. A nil
// *Metrics records nothing.
type Metrics struct {
	tokensIssued   *prometheus.CounterVec
	introspections *prometheus.CounterVec
	clients        prometheus.Gauge
	tokens         *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ccauth_tokens_issued_total",
			Help: "Token issuance attempts by result.",
		}, []string{"result"}),
		introspections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ccauth_introspections_total",
			Help: "Token introspections by outcome.",
		}, []string{"active"}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ccauth_clients",
			Help: "Registered clients.",
		}),
		tokens: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ccauth_tokens",
			Help: "Stored tokens by state.",
		}, []string{"state"}),
	}
	reg.MustRegister(m.tokensIssued, m.introspections, m.clients, m.tokens)
	return m
}

func (m *Metrics) tokenIssued(result string) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(result).Inc()
}

func (m *Metrics) introspected(active bool) {
	if m == nil {
		return
	}
	m.introspections.WithLabelValues(strconv.FormatBool(active)).Inc()
}

func (m *Metrics) storeStats(clients int, tokens store.TokenCounts) {
	if m == nil {
		return
	}
	m.clients.Set(float64(clients))
	m.tokens.WithLabelValues("total").Set(float64(tokens.Total))
	m.tokens.WithLabelValues("expired").Set(float64(tokens.Expired))
}
