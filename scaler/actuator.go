package scaler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tierswitch/tierswitch/scaler/fleet"
)

// Outcome classifies what Reconcile did for one tier.
type Outcome string

const (
	// OutcomeStarted means a start action was issued.
	OutcomeStarted Outcome = "started"
	// OutcomeStopped means a stop action was issued.
	OutcomeStopped Outcome = "stopped"
	// OutcomeSkippedDesired means the tier was already observed in its
	// desired state and nothing was issued.
	OutcomeSkippedDesired Outcome = "skipped-desired-state"
	// OutcomeSkippedCooldown means a transition was needed but the
	// cooldown since the last performed transition had not elapsed.
	OutcomeSkippedCooldown Outcome = "skipped-cooldown"
)

// Actuator drives tiers toward the desired fleet state, guarded by an
// idempotence check against observed state and a cooldown between
// performed transitions.
//
// lastTransition records the time of the last performed (not merely
// attempted) transition. The caller serializes Reconcile calls; the
// check-then-act on lastTransition is not atomic on its own.
type Actuator struct {
	fleet          fleet.Controller
	cooldown       time.Duration
	lastTransition time.Time
	now            func() time.Time // injectable clock for tests
}

// NewActuator creates an actuator with an empty cooldown state.
func NewActuator(fc fleet.Controller, cooldown time.Duration) *Actuator {
	return &Actuator{
		fleet:    fc,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Reconcile observes one tier and, if needed and permitted, issues the
// action that moves it toward its desired state: running when the tier
// is the target, stopped otherwise.
//
// Skips are outcomes, not errors. Fleet controller failures propagate
// unretried and leave the cooldown state untouched.
func (a *Actuator) Reconcile(ctx context.Context, tier Tier, target bool) (Outcome, error) {
	state, err := a.fleet.DescribeState(ctx, tier.InstanceIDs)
	if err != nil {
		fleetErrorsTotal.WithLabelValues(tier.Name).Inc()
		return "", fmt.Errorf("tier %s: %w", tier.Name, err)
	}

	if (target && state == fleet.StateRunning) || (!target && state == fleet.StateStopped) {
		logrus.Infof("tier %s instances %v already %s", tier.Name, tier.InstanceIDs, state)
		skipsTotal.WithLabelValues(tier.Name, string(OutcomeSkippedDesired)).Inc()
		return OutcomeSkippedDesired, nil
	}

	if !a.lastTransition.IsZero() && a.now().Sub(a.lastTransition) < a.cooldown {
		logrus.Warnf("tier %s: scaling skipped, cooldown active", tier.Name)
		skipsTotal.WithLabelValues(tier.Name, string(OutcomeSkippedCooldown)).Inc()
		return OutcomeSkippedCooldown, nil
	}

	var outcome Outcome
	if target {
		if err := a.fleet.Start(ctx, tier.InstanceIDs); err != nil {
			fleetErrorsTotal.WithLabelValues(tier.Name).Inc()
			return "", fmt.Errorf("tier %s: %w", tier.Name, err)
		}
		logrus.Infof("started tier %s instances %v", tier.Name, tier.InstanceIDs)
		transitionsTotal.WithLabelValues(tier.Name, "start").Inc()
		outcome = OutcomeStarted
	} else {
		if err := a.fleet.Stop(ctx, tier.InstanceIDs); err != nil {
			fleetErrorsTotal.WithLabelValues(tier.Name).Inc()
			return "", fmt.Errorf("tier %s: %w", tier.Name, err)
		}
		logrus.Infof("stopped tier %s instances %v", tier.Name, tier.InstanceIDs)
		transitionsTotal.WithLabelValues(tier.Name, "stop").Inc()
		outcome = OutcomeStopped
	}

	a.lastTransition = a.now()
	return outcome, nil
}
