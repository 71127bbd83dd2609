package fleet

import "context"

// InstanceState is the observed run state of a tier's instance set.
type InstanceState string

const (
	StateRunning  InstanceState = "running"
	StateStopped  InstanceState = "stopped"
	StatePending  InstanceState = "pending"
	StateStopping InstanceState = "stopping"
	StateUnknown  InstanceState = "unknown"
)

// Controller is the external authority over instance state. It holds the
// source of truth; callers never assume a start or stop completed
// synchronously and re-observe state on the next cycle instead.
//
// Every method is a blocking network call. Implementations own their
// retry policy; callers see only the final outcome.
type Controller interface {
	// DescribeState reports the current run state of the instance set.
	DescribeState(ctx context.Context, instanceIDs []string) (InstanceState, error)

	// Start requests that the instance set be brought up.
	Start(ctx context.Context, instanceIDs []string) error

	// Stop requests that the instance set be shut down.
	Stop(ctx context.Context, instanceIDs []string) error
}
