package host

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "faucet_ledger"

// Labels of the transitions counter.
const (
	methodGrant    = "grant"
	methodTransfer = "transfer"
	methodRestore  = "restore"

	resultSuccess  = "success"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

type metrics struct {
	transitions *prometheus.CounterVec
	height      prometheus.Gauge
}

// newMetrics creates host collectors and registers them in reg if it is
// set.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "transitions_total",
				Help:      "Number of ledger state transitions by method and result",
			},
			[]string{"method", "result"},
		),
		height: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "height",
				Help:      "Number of committed ledger state transitions",
			},
		),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.transitions, m.height} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return m, nil
}

func (m *metrics) observe(method, result string) {
	m.transitions.WithLabelValues(method, result).Inc()
}
