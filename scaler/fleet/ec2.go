package fleet

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// maxAPIAttempts bounds the SDK's own retries per API call.
const maxAPIAttempts = 10

// EC2 implements Controller against the EC2 API. Transient API errors
// are retried inside the SDK in adaptive mode.
type EC2 struct {
	client *ec2.Client
}

// NewEC2 builds an EC2 fleet controller for the given region using the
// default credential chain.
func NewEC2(ctx context.Context, region string) (*EC2, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithRetryMode(aws.RetryModeAdaptive),
		awsconfig.WithRetryMaxAttempts(maxAPIAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &EC2{client: ec2.NewFromConfig(cfg)}, nil
}

// DescribeState reports the state of the first instance in the set; the
// instances of a tier are started and stopped together, so one instance
// stands in for the set.
func (f *EC2) DescribeState(ctx context.Context, instanceIDs []string) (InstanceState, error) {
	out, err := f.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: instanceIDs,
	})
	if err != nil {
		return StateUnknown, fmt.Errorf("describe instances %v: %w", instanceIDs, err)
	}
	if len(out.Reservations) == 0 || len(out.Reservations[0].Instances) == 0 {
		return StateUnknown, fmt.Errorf("describe instances %v: empty reservation", instanceIDs)
	}
	inst := out.Reservations[0].Instances[0]
	if inst.State == nil {
		return StateUnknown, fmt.Errorf("describe instances %v: missing state", instanceIDs)
	}
	switch inst.State.Name {
	case ec2types.InstanceStateNameRunning:
		return StateRunning, nil
	case ec2types.InstanceStateNameStopped:
		return StateStopped, nil
	case ec2types.InstanceStateNamePending:
		return StatePending, nil
	case ec2types.InstanceStateNameStopping, ec2types.InstanceStateNameShuttingDown:
		return StateStopping, nil
	default:
		return StateUnknown, nil
	}
}

func (f *EC2) Start(ctx context.Context, instanceIDs []string) error {
	if _, err := f.client.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: instanceIDs,
	}); err != nil {
		return fmt.Errorf("start instances %v: %w", instanceIDs, err)
	}
	return nil
}

func (f *EC2) Stop(ctx context.Context, instanceIDs []string) error {
	if _, err := f.client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: instanceIDs,
	}); err != nil {
		return fmt.Errorf("stop instances %v: %w", instanceIDs, err)
	}
	return nil
}
