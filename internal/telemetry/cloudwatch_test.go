package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smokebuddy/internal/types"
)

// mockCloudWatchClient records PutMetricData calls for verification.
type mockCloudWatchClient struct {
	calls     []*cloudwatch.PutMetricDataInput
	returnErr error
}

func (m *mockCloudWatchClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.calls = append(m.calls, params)
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func dimensions(ds []cwtypes.Dimension) map[string]string {
	out := make(map[string]string, len(ds))
	for _, d := range ds {
		out[aws.ToString(d.Name)] = aws.ToString(d.Value)
	}
	return out
}

func TestCloudWatchMetrics_RecordRequest(t *testing.T) {
	cw := &mockCloudWatchClient{}
	m := NewCloudWatchMetrics(cw, "", nil)

	m.RecordRequest("POST", "/webhook", "200", 42*time.Millisecond)

	require.Len(t, cw.calls, 1)
	input := cw.calls[0]
	assert.Equal(t, types.MetricNamespace, aws.ToString(input.Namespace))
	require.Len(t, input.MetricData, 2)

	latency := input.MetricData[0]
	assert.Equal(t, types.MetricAPILatency, aws.ToString(latency.MetricName))
	assert.Equal(t, 42.0, aws.ToFloat64(latency.Value))
	assert.Equal(t, cwtypes.StandardUnitMilliseconds, latency.Unit)
	assert.Equal(t, map[string]string{
		types.DimEndpoint: "/webhook",
		types.DimMethod:   "POST",
		types.DimStatus:   "200",
	}, dimensions(latency.Dimensions))

	count := input.MetricData[1]
	assert.Equal(t, types.MetricAPIRequestCount, aws.ToString(count.MetricName))
	assert.Equal(t, 1.0, aws.ToFloat64(count.Value))
}

func TestCloudWatchMetrics_RecordJob(t *testing.T) {
	cw := &mockCloudWatchClient{}
	m := NewCloudWatchMetrics(cw, "SmokeBuddyDev", nil)

	m.RecordJob(context.Background(), "summarize_day", false, time.Second)

	require.Len(t, cw.calls, 1)
	assert.Equal(t, "SmokeBuddyDev", aws.ToString(cw.calls[0].Namespace))

	run := cw.calls[0].MetricData[0]
	assert.Equal(t, types.MetricJobRun, aws.ToString(run.MetricName))
	assert.Equal(t, map[string]string{
		types.DimTask:   "summarize_day",
		types.DimResult: "failed",
	}, dimensions(run.Dimensions))

	latency := cw.calls[0].MetricData[1]
	assert.Equal(t, 1000.0, aws.ToFloat64(latency.Value))
}

func TestCloudWatchMetrics_RecordCountAdjusted(t *testing.T) {
	cw := &mockCloudWatchClient{}
	NewCloudWatchMetrics(cw, "", nil).RecordCountAdjusted(context.Background(), -2)

	require.Len(t, cw.calls, 1)
	datum := cw.calls[0].MetricData[0]
	assert.Equal(t, types.MetricCountAdjusted, aws.ToString(datum.MetricName))
	assert.Equal(t, -2.0, aws.ToFloat64(datum.Value))
}

func TestCloudWatchMetrics_ErrorsAreSwallowed(t *testing.T) {
	cw := &mockCloudWatchClient{returnErr: errors.New("throttled")}
	m := NewCloudWatchMetrics(cw, "", nil)

	assert.NotPanics(t, func() {
		m.RecordRequest("GET", "/health", "200", time.Millisecond)
		m.RecordJob(context.Background(), "reset_daily", true, time.Millisecond)
	})
	assert.Len(t, cw.calls, 2)
}
