package workflows

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fyrsmithlabs/issuesmith/internal/workflows"

// Metrics for the fix-issue pipeline
var (
	stepDuration        metric.Float64Histogram
	stepErrorCounter    metric.Int64Counter
	pullRequestsOpened  metric.Int64Counter
	cleanupFailures     metric.Int64Counter
)

// initMetrics initializes OpenTelemetry metrics for the pipeline's
// activities. Called once during package initialization.
func initMetrics() {
	meter := otel.Meter(instrumentationName)

	var err error

	stepDuration, err = meter.Float64Histogram(
		"issuesmith.step.duration",
		metric.WithDescription("Duration of pipeline step executions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create step duration histogram: %v", err))
	}

	stepErrorCounter, err = meter.Int64Counter(
		"issuesmith.step.errors",
		metric.WithDescription("Number of pipeline step failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create step error counter: %v", err))
	}

	pullRequestsOpened, err = meter.Int64Counter(
		"issuesmith.pull_requests.opened",
		metric.WithDescription("Number of pull requests opened"),
		metric.WithUnit("{pull_request}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create pull request counter: %v", err))
	}

	cleanupFailures, err = meter.Int64Counter(
		"issuesmith.cleanup.failures",
		metric.WithDescription("Number of working copy cleanups that failed"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create cleanup failure counter: %v", err))
	}
}

func init() {
	initMetrics()
}

// observeStep records duration and outcome for one activity attempt. Call it
// deferred with the attempt's start time.
func observeStep(ctx context.Context, step string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("step", step))
	stepDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		stepErrorCounter.Add(ctx, 1, attrs)
	}
}
