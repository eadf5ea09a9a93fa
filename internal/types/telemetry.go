package types

// Telemetry metric names for CloudWatch.
const (
	// Metric Names
	MetricAPILatency      = "APILatency"
	MetricAPIRequestCount = "APIRequestCount"
	MetricJobRun          = "DailyJobRun"
	MetricCountAdjusted   = "CountAdjusted"

	// Dimension Keys
	DimEndpoint = "Endpoint"
	DimMethod   = "Method"
	DimStatus   = "Status"
	DimTask     = "Task"
	DimResult   = "Result"

	// Metric Namespace
	MetricNamespace = "SmokeBuddy"
)
