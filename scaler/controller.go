package scaler

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tierswitch/tierswitch/scaler/fleet"
)

// Decision is the output of one control-loop cycle. It is returned to
// the caller and not persisted.
type Decision struct {
	Target      string
	ArrivalRate float64
	Outcomes    map[string]Outcome // per tier; absent for tiers not reached after an error
}

// Status is the read-only view served by status queries.
type Status struct {
	ActiveTiers []string
	ArrivalRate float64
}

// Controller runs the adaptive control loop: estimate the arrival rate,
// select the target tier, reconcile every tier's fleet toward it.
//
// The cycle mutex covers the whole reconcile pass, so two concurrent
// cycles cannot both pass the actuator's cooldown check and both issue
// a transition inside one cooldown window. Status queries do not take
// the cycle mutex and tolerate stale reads.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	window   *ArrivalWindow
	actuator *Actuator
	fleet    fleet.Controller
}

// NewController wires the control loop from a validated config and a
// fleet controller.
func NewController(cfg Config, fc fleet.Controller) *Controller {
	return &Controller{
		cfg:      cfg,
		window:   NewArrivalWindow(cfg.Window.Std()),
		actuator: NewActuator(fc, cfg.Cooldown.Std()),
		fleet:    fc,
	}
}

// HandleArrival runs one decision cycle for a single inbound request:
// record the arrival, select the target tier from the estimated rate,
// then reconcile every configured tier.
//
// On a reconcile failure the cycle stops and the error propagates;
// transitions already performed are not rolled back. The next successful
// cycle converges the fleet via the idempotence guard.
func (c *Controller) HandleArrival(ctx context.Context) (Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rate := c.window.RecordAndEstimate()
	target := SelectTier(rate, c.cfg.Thresholds, c.cfg.Tiers)
	decisionsTotal.WithLabelValues(target).Inc()
	logrus.Infof("arrival rate %.2f req/s, target tier %s", rate, target)

	dec := Decision{
		Target:      target,
		ArrivalRate: rate,
		Outcomes:    make(map[string]Outcome, len(c.cfg.Tiers)),
	}
	for _, tier := range c.cfg.Tiers {
		outcome, err := c.actuator.Reconcile(ctx, tier, tier.Name == target)
		if err != nil {
			logrus.Errorf("reconcile failed: %v", err)
			return dec, err
		}
		dec.Outcomes[tier.Name] = outcome
	}
	return dec, nil
}

// Status reports the currently running tiers and the arrival rate
// without recording an arrival. Fleet state is fetched fresh per tier;
// tiers whose fetch fails are omitted from the active list rather than
// failing the whole query.
func (c *Controller) Status(ctx context.Context) Status {
	st := Status{
		ActiveTiers: []string{},
		ArrivalRate: c.window.Estimate(),
	}
	for _, tier := range c.cfg.Tiers {
		state, err := c.fleet.DescribeState(ctx, tier.InstanceIDs)
		if err != nil {
			logrus.Errorf("status check failed for tier %s: %v", tier.Name, err)
			fleetErrorsTotal.WithLabelValues(tier.Name).Inc()
			continue
		}
		if state == fleet.StateRunning {
			st.ActiveTiers = append(st.ActiveTiers, tier.Name)
		}
	}
	return st
}
