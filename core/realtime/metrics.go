package realtime

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics reports hub activity to Prometheus. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	subscribers *prometheus.GaugeVec
	broadcasts  *prometheus.CounterVec
	delivered   prometheus.Counter
	dropped     *prometheus.CounterVec
}

// NewMetrics creates the hub collectors and registers them with reg.
// Collectors already registered under the same names are reused, so
// several hubs may share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{}
	var err error

	if m.subscribers, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "livefeed",
		Subsystem: "realtime",
		Name:      "subscribers",
		Help:      "Number of open subscriber streams.",
	}, []string{"audience"})); err != nil {
		return nil, err
	}

	if m.broadcasts, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livefeed",
		Subsystem: "realtime",
		Name:      "broadcasts_total",
		Help:      "Events fanned out, by target.",
	}, []string{"target"})); err != nil {
		return nil, err
	}

	if m.delivered, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "livefeed",
		Subsystem: "realtime",
		Name:      "frames_delivered_total",
		Help:      "Frames written to subscriber connections.",
	})); err != nil {
		return nil, err
	}

	if m.dropped, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livefeed",
		Subsystem: "realtime",
		Name:      "subscribers_removed_total",
		Help:      "Subscribers removed from the hub, by reason.",
	}, []string{"reason"})); err != nil {
		return nil, err
	}

	return m, nil
}

// MustNewMetrics is NewMetrics that panics on registration errors.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	m, err := NewMetrics(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) subscriberAdded(a Audience) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(string(a)).Inc()
}

func (m *Metrics) subscriberRemoved(a Audience, reason string) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(string(a)).Dec()
	m.dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) broadcast(t Target) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) frameDelivered() {
	if m == nil {
		return
	}
	m.delivered.Inc()
}
