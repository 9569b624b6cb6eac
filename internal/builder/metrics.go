package builder

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce      sync.Once
	commandsTotal    *prometheus.CounterVec
	storeSubscribers prometheus.Gauge
)

func initMetrics() {
	metricsOnce.Do(func() {
		commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "site_builder",
			Subsystem: "builder",
			Name:      "commands_total",
			Help:      "Builder commands dispatched, by command and outcome",
		}, []string{"command", "outcome"})

		storeSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "site_builder",
			Subsystem: "builder",
			Name:      "subscribers",
			Help:      "Live state subscribers across all builder stores",
		})
	})
}

func recordCommand(name string, applied bool) {
	initMetrics()
	outcome := "applied"
	if !applied {
		outcome = "noop"
	}
	commandsTotal.WithLabelValues(name, outcome).Inc()
}
