// Package metrics exports guard and handle counters to Prometheus.
//
// Counting is off until Register is called; see internal/scoped/stats.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kolkov/scopedref/internal/scoped/stats"
)

var (
	// GuardsOpen reports the number of guards created and not yet closed.
	GuardsOpen = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "scoped_guards_open",
		Help: "Current number of open guards",
	}, func() float64 { return float64(stats.Read().GuardsOpen) })

	// HandlesLive reports the number of lifted or cloned handles not yet released.
	HandlesLive = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "scoped_handles_live",
		Help: "Current number of live handles",
	}, func() float64 { return float64(stats.Read().HandlesLive) })

	// LiftsTotal counts Lift and Clone calls.
	LiftsTotal = prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "scoped_lifts_total",
		Help: "Total number of handles created by Lift or Clone",
	}, func() float64 { return float64(stats.Read().Lifts) })

	// ViolationsTotal counts detected safety violations. Outside recoverable
	// test mode the process exits right after the first one, so this is
	// mostly useful together with scopedtest.
	ViolationsTotal = prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "scoped_violations_total",
		Help: "Total number of detected safety violations",
	}, func() float64 { return float64(stats.Read().Violations) })
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Register turns counting on and registers the collectors on reg.
func Register(reg prometheus.Registerer) {
	stats.Enable()
	reg.MustRegister(GuardsOpen, HandlesLive, LiftsTotal, ViolationsTotal)
}
