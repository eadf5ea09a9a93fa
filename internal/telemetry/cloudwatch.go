// Package telemetry publishes request and job metrics to CloudWatch.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"smokebuddy/internal/types"
)

// putTimeout bounds a single PutMetricData call made outside a request context.
const putTimeout = 2 * time.Second

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics emits:
//   - APILatency / APIRequestCount: Dims {Endpoint, Method, Status}
//   - DailyJobRun: Dims {Task, Result}, plus DailyJobRunLatency: Dims {Task}
//   - CountAdjusted: no dims, value is the signed delta
//
// Publishing failures are logged and never returned.
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchMetrics creates a CloudWatchMetrics. An empty namespace
// defaults to types.MetricNamespace.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchMetrics{client: client, namespace: namespace, logger: logger}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

// RecordRequest emits latency and count for one HTTP request.
func (m *CloudWatchMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	dims := []cwtypes.Dimension{
		dim(types.DimEndpoint, endpoint),
		dim(types.DimMethod, method),
		dim(types.DimStatus, status),
	}
	m.put(ctx, "request",
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPILatency),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: dims,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPIRequestCount),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: dims,
		},
	)
}

// RecordJob emits the outcome and latency of a daily job.
func (m *CloudWatchMetrics) RecordJob(ctx context.Context, task string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failed"
	}
	m.put(ctx, "job",
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricJobRun),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{
				dim(types.DimTask, task),
				dim(types.DimResult, result),
			},
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricJobRun + "Latency"),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: []cwtypes.Dimension{dim(types.DimTask, task)},
		},
	)
}

// RecordCountAdjusted emits the size of a count adjustment.
func (m *CloudWatchMetrics) RecordCountAdjusted(ctx context.Context, delta int) {
	m.put(ctx, "count",
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricCountAdjusted),
			Value:      aws.Float64(float64(delta)),
			Unit:       cwtypes.StandardUnitCount,
		},
	)
}

func (m *CloudWatchMetrics) put(ctx context.Context, kind string, data ...cwtypes.MetricDatum) {
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.WarnContext(ctx, "failed to publish metrics", "kind", kind, "error", err)
	}
}
