package harmonics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the prometheus collectors updated by a Filter
type Metrics struct {
	// Updates counts Update calls by result: ok, invalid_config,
	// assembly_error, boundary_error, not_converged, cancelled, error
	Updates *prometheus.CounterVec
	// UpdateDuration tracks Update latency
	UpdateDuration prometheus.Histogram
	// BasisSize tracks the Krylov basis size at convergence
	BasisSize prometheus.Histogram
	// DegenerateFaces counts faces skipped during assembly
	DegenerateFaces prometheus.Counter
	// Materializations counts harmonic requests by result: ok, unavailable
	Materializations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil
// reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Updates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lb_harmonics_updates_total",
			Help: "Total filter updates by result",
		}, []string{"result"}),
		UpdateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lb_harmonics_update_duration_seconds",
			Help:    "Filter update duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~30s
		}),
		BasisSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lb_harmonics_basis_size",
			Help:    "Krylov basis vectors used per solve",
			Buckets: []float64{5, 10, 20, 50, 100, 200, 300, 500},
		}),
		DegenerateFaces: f.NewCounter(prometheus.CounterOpts{
			Name: "lb_harmonics_degenerate_faces_total",
			Help: "Total faces skipped for negligible area",
		}),
		Materializations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lb_harmonics_materializations_total",
			Help: "Total harmonic materializations by result",
		}, []string{"result"}),
	}
}
