package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// StepPolicy bundles the timeout and retry parameters of one pipeline step.
// Every field is explicit; there are no ad hoc option maps.
type StepPolicy struct {
	// StartToClose bounds a single attempt, independent of retries.
	StartToClose time.Duration
	// MaximumAttempts caps how often the step runs, first attempt included.
	MaximumAttempts int32
	// InitialInterval is the backoff before the second attempt.
	InitialInterval time.Duration
	// MaximumInterval caps the exponential backoff growth.
	MaximumInterval time.Duration
	// BackoffCoefficient is the exponential growth factor.
	BackoffCoefficient float64
	// NonRetryable lists failure kinds excluded from retry.
	NonRetryable []string
}

// ActivityOptions converts the policy into the substrate's activity options.
func (p StepPolicy) ActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: p.StartToClose,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        p.MaximumAttempts,
			InitialInterval:        p.InitialInterval,
			MaximumInterval:        p.MaximumInterval,
			BackoffCoefficient:     p.BackoffCoefficient,
			NonRetryableErrorTypes: p.NonRetryable,
		},
	}
}

// terminalKinds are never worth reattempting, whichever step they surface in.
var terminalKinds = []string{ErrTypeValidation, ErrTypeAuth, ErrTypeResource}

var (
	// ParsePolicy: pure input validation, one attempt.
	ParsePolicy = StepPolicy{
		StartToClose:    30 * time.Second,
		MaximumAttempts: 1,
	}

	// FetchIssuePolicy: one REST call against the issue tracker.
	FetchIssuePolicy = StepPolicy{
		StartToClose:       30 * time.Second,
		MaximumAttempts:    3,
		InitialInterval:    time.Second,
		MaximumInterval:    30 * time.Second,
		BackoffCoefficient: 2.0,
		NonRetryable:       terminalKinds,
	}

	// ClonePolicy: a full clone can be slow on large repositories.
	ClonePolicy = StepPolicy{
		StartToClose:       2 * time.Minute,
		MaximumAttempts:    3,
		InitialInterval:    time.Second,
		MaximumInterval:    30 * time.Second,
		BackoffCoefficient: 2.0,
		NonRetryable:       terminalKinds,
	}

	// GeneratePolicy: fewer attempts, model calls are expensive.
	GeneratePolicy = StepPolicy{
		StartToClose:       2 * time.Minute,
		MaximumAttempts:    2,
		InitialInterval:    time.Second,
		MaximumInterval:    30 * time.Second,
		BackoffCoefficient: 2.0,
		NonRetryable:       terminalKinds,
	}

	// CommitPolicy: local filesystem work only.
	CommitPolicy = StepPolicy{
		StartToClose:       30 * time.Second,
		MaximumAttempts:    3,
		InitialInterval:    time.Second,
		MaximumInterval:    10 * time.Second,
		BackoffCoefficient: 2.0,
		NonRetryable:       terminalKinds,
	}

	// PushPolicy: aggressive. Pushes race against rate limits, so keep the
	// interval cap low and the attempt budget high.
	PushPolicy = StepPolicy{
		StartToClose:       2 * time.Minute,
		MaximumAttempts:    5,
		InitialInterval:    time.Second,
		MaximumInterval:    10 * time.Second,
		BackoffCoefficient: 2.0,
		NonRetryable:       terminalKinds,
	}

	// PullRequestPolicy: same aggressive profile as push.
	PullRequestPolicy = StepPolicy{
		StartToClose:       time.Minute,
		MaximumAttempts:    5,
		InitialInterval:    time.Second,
		MaximumInterval:    10 * time.Second,
		BackoffCoefficient: 2.0,
		NonRetryable:       terminalKinds,
	}

	// CleanupPolicy: best effort, failure is recorded rather than escalated.
	CleanupPolicy = StepPolicy{
		StartToClose:       time.Minute,
		MaximumAttempts:    2,
		InitialInterval:    time.Second,
		MaximumInterval:    10 * time.Second,
		BackoffCoefficient: 2.0,
	}
)
