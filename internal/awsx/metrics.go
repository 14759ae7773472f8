package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the transactions handler.
const (
	MetricTransactionCreated = "TransactionCreated"
	MetricDuplicateRequest   = "DuplicateRequest"
)

// Metrics emits best-effort CloudWatch counters. A nil client disables
// emission, which keeps local runs and tests quiet.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
}

// NewMetrics returns a Metrics emitter for the given namespace.
func NewMetrics(client CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{
		client:    client,
		namespace: namespace,
	}
}

// Count increments a counter metric by one.
func (m *Metrics) Count(ctx context.Context, name string) error {
	if m == nil || m.client == nil {
		return nil
	}

	one := 1.0
	datum := cwtypes.MetricDatum{
		MetricName: awsString(name),
		Unit:       cwtypes.StandardUnitCount,
		Value:      &one,
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  awsString(m.namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
