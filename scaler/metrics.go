package scaler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tierswitch_decisions_total",
		Help: "Decision cycles completed, labeled by selected target tier.",
	}, []string{"target"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tierswitch_transitions_total",
		Help: "Start/stop actions issued to the fleet controller.",
	}, []string{"tier", "action"})

	skipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tierswitch_skips_total",
		Help: "Reconcile no-ops, labeled by skip reason.",
	}, []string{"tier", "reason"})

	fleetErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tierswitch_fleet_errors_total",
		Help: "Failed fleet controller calls.",
	}, []string{"tier"})
)
