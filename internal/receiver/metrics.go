package receiver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Push event results.
const (
	resultDisplayed    = "displayed"
	resultMalformed    = "malformed"
	resultFiltered     = "filtered"
	resultDisplayError = "display_error"
)

// Metrics counts what the receiver did with each event.
type Metrics struct {
	pushEvents *prometheus.CounterVec
	clicks     prometheus.Counter
}

// NewMetrics creates the receiver metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pushEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rushnotify_push_events_total",
				Help: "Push events handled by the background receiver, by result",
			},
			[]string{"result"},
		),
		clicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rushnotify_clicks_total",
			Help: "Notification clicks handled by the background receiver",
		}),
	}
	reg.MustRegister(m.pushEvents, m.clicks)
	return m
}

func (m *Metrics) recordPush(result string) {
	if m == nil {
		return
	}
	m.pushEvents.WithLabelValues(result).Inc()
}

func (m *Metrics) recordClick() {
	if m == nil {
		return
	}
	m.clicks.Inc()
}
