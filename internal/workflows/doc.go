// Package workflows contains the durable fix-issue pipeline: a Temporal
// workflow that takes a reported GitHub issue, produces a patch, and opens a
// pull request, together with the activities that perform the remote work.
//
// The pipeline is strictly sequential. Each step is a Temporal activity with
// its own start-to-close timeout and retry policy (see policies.go). Failures
// are classified into four kinds (see errors.go); validation, auth, and
// resource failures are never retried, transient failures are retried until
// the step's policy is exhausted. Once a working copy has been cloned, its
// removal is owed as compensation and runs on every exit path of the
// workflow, including cancellation.
package workflows
