package rds

import (
	"context"
	"errors"
	"fmt"

	"github.com/denis-jdsouza/customer-infrastructure-manager/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsrds "github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
)

// InstanceStatus is the driver's view of the managed instance.
// A missing instance is Exists=false, never an error.
type InstanceStatus struct {
	Identifier string
	Exists     bool
	State      InstanceState
	Message    string
}

// API is the subset of the RDS client the driver uses.
type API interface {
	DescribeDBInstances(ctx context.Context, params *awsrds.DescribeDBInstancesInput, optFns ...func(*awsrds.Options)) (*awsrds.DescribeDBInstancesOutput, error)
	StartDBInstance(ctx context.Context, params *awsrds.StartDBInstanceInput, optFns ...func(*awsrds.Options)) (*awsrds.StartDBInstanceOutput, error)
	StopDBInstance(ctx context.Context, params *awsrds.StopDBInstanceInput, optFns ...func(*awsrds.Options)) (*awsrds.StopDBInstanceOutput, error)
}

// Driver queries and starts/stops one RDS instance.
type Driver struct {
	client API
}

// NewDriver creates a driver in the given region using the default AWS
// credential chain.
func NewDriver(ctx context.Context, region string) (*Driver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for RDS: %w", err)
	}
	return &Driver{client: awsrds.NewFromConfig(awsCfg)}, nil
}

// NewDriverWithClient creates a driver over an existing RDS API, used by
// tests to substitute a fake.
func NewDriverWithClient(client API) *Driver {
	return &Driver{client: client}
}

// Describe returns the normalized status of the instance. A nonexistent
// instance degrades to Exists=false rather than erroring.
func (d *Driver) Describe(ctx context.Context, identifier string) (InstanceStatus, error) {
	out, err := d.client.DescribeDBInstances(ctx, &awsrds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(identifier),
	})
	if err != nil {
		var notFound *rdstypes.DBInstanceNotFoundFault
		if errors.As(err, &notFound) {
			return InstanceStatus{
				Identifier: identifier,
				State:      StateUnknown,
				Message:    fmt.Sprintf("RDS instance %q not found", identifier),
			}, nil
		}
		return InstanceStatus{}, fmt.Errorf("failed to describe RDS instance %q: %w", identifier, err)
	}
	if len(out.DBInstances) == 0 {
		return InstanceStatus{
			Identifier: identifier,
			State:      StateUnknown,
			Message:    fmt.Sprintf("RDS instance %q not found", identifier),
		}, nil
	}

	raw := aws.ToString(out.DBInstances[0].DBInstanceStatus)
	state := ParseInstanceState(raw)
	logging.Debug("DatabaseDriver", "Instance %q reported status %q (normalized %q)", identifier, raw, state)
	return InstanceStatus{
		Identifier: identifier,
		Exists:     true,
		State:      state,
		Message:    fmt.Sprintf("RDS instance %q is in state %q", identifier, raw),
	}, nil
}

// Start issues a start request. The request is an acknowledgement only; the
// instance transitions through starting before it is available.
func (d *Driver) Start(ctx context.Context, identifier string) error {
	logging.Info("DatabaseDriver", "Starting RDS instance %q", identifier)
	_, err := d.client.StartDBInstance(ctx, &awsrds.StartDBInstanceInput{
		DBInstanceIdentifier: aws.String(identifier),
	})
	if err != nil {
		return fmt.Errorf("failed to start RDS instance %q: %w", identifier, err)
	}
	return nil
}

// Stop issues a stop request, acknowledged the same way as Start.
func (d *Driver) Stop(ctx context.Context, identifier string) error {
	logging.Info("DatabaseDriver", "Stopping RDS instance %q", identifier)
	_, err := d.client.StopDBInstance(ctx, &awsrds.StopDBInstanceInput{
		DBInstanceIdentifier: aws.String(identifier),
	})
	if err != nil {
		return fmt.Errorf("failed to stop RDS instance %q: %w", identifier, err)
	}
	return nil
}
