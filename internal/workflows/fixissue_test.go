package workflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

// TestFixIssueWorkflow exercises the pipeline end to end against mocked
// activities.
func TestFixIssueWorkflow(t *testing.T) {
	req := IssueRequest{RepoPath: "octo/hello-world", IssueNumber: 42}
	ref := IssueReference{Owner: "octo", Repo: "hello-world", IssueNumber: 42, Title: "Broken link in README"}
	wc := WorkingCopy{Path: "/tmp/issuesmith-hello-world-8842", Branch: "fix-issue-42"}
	patch := Patch{File: "README.md", Content: "fixed", CommitMessage: "fix: Broken link in README\n\nCloses #42"}

	t.Run("completes and cleans up on success", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterWorkflow(FixIssueWorkflow)

		var a *Activities
		env.OnActivity(a.ParseIssue, mock.Anything, req).Return(&IssueReference{Owner: "octo", Repo: "hello-world", IssueNumber: 42}, nil)
		env.OnActivity(a.FetchIssue, mock.Anything, mock.Anything).Return(&ref, nil)
		env.OnActivity(a.CloneAndBranch, mock.Anything, CloneInput{Ref: ref}).Return(&wc, nil)
		env.OnActivity(a.GenerateFix, mock.Anything, GenerateFixInput{Ref: ref, Copy: wc}).Return(&patch, nil)
		env.OnActivity(a.Commit, mock.Anything, CommitInput{Copy: wc, Patch: patch}).Return(&CommitReport{SHA: "abc123", Message: patch.CommitMessage}, nil)
		env.OnActivity(a.Push, mock.Anything, mock.Anything).Return(&PushReport{Branch: wc.Branch, CommitsPushed: 1}, nil)
		env.OnActivity(a.OpenPullRequest, mock.Anything, mock.Anything).Return(&PullRequestReport{URL: "https://github.com/octo/hello-world/pull/7", Number: 7, Title: "Fix issue #42"}, nil)
		env.OnActivity(a.Cleanup, mock.Anything, CleanupInput{Copy: wc}).Return(&CleanupReport{Path: wc.Path, Success: true, Message: "removed working copy"}, nil)

		env.ExecuteWorkflow(FixIssueWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var result FixIssueResult
		require.NoError(t, env.GetWorkflowResult(&result))
		require.NotNil(t, result.PullRequest)
		assert.Equal(t, "https://github.com/octo/hello-world/pull/7", result.PullRequest.URL)
		assert.Equal(t, 7, result.PullRequest.Number)
		assert.Equal(t, "Fix issue #42", result.PullRequest.Title)
		assert.True(t, result.Cleanup.Success)
		assert.Equal(t, wc.Path, result.Cleanup.Path)
		env.AssertExpectations(t)
	})

	t.Run("validation failure short-circuits every later step", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterWorkflow(FixIssueWorkflow)

		var a *Activities
		env.OnActivity(a.ParseIssue, mock.Anything, mock.Anything).Return(nil, NewValidationError("invalid fix request", errors.New("repo path must be owner/name")))

		env.ExecuteWorkflow(FixIssueWorkflow, IssueRequest{RepoPath: "not-a-repo-path", IssueNumber: 1})

		require.True(t, env.IsWorkflowCompleted())
		werr := env.GetWorkflowError()
		require.Error(t, werr)
		assert.True(t, IsErrType(werr, ErrTypeValidation))
		env.AssertNotCalled(t, "FetchIssue", mock.Anything, mock.Anything)
		env.AssertNotCalled(t, "Cleanup", mock.Anything, mock.Anything)
	})

	t.Run("clone failure owes no cleanup", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterWorkflow(FixIssueWorkflow)

		var a *Activities
		env.OnActivity(a.ParseIssue, mock.Anything, mock.Anything).Return(&IssueReference{Owner: "octo", Repo: "hello-world", IssueNumber: 42}, nil)
		env.OnActivity(a.FetchIssue, mock.Anything, mock.Anything).Return(&ref, nil)
		env.OnActivity(a.CloneAndBranch, mock.Anything, mock.Anything).Return(nil, NewAuthError("github token not configured", nil))

		env.ExecuteWorkflow(FixIssueWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		werr := env.GetWorkflowError()
		require.Error(t, werr)
		assert.True(t, IsErrType(werr, ErrTypeAuth))
		env.AssertNotCalled(t, "GenerateFix", mock.Anything, mock.Anything)
		env.AssertNotCalled(t, "Cleanup", mock.Anything, mock.Anything)
	})

	t.Run("generate failure still cleans the working copy", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterWorkflow(FixIssueWorkflow)

		cleanupCalls := 0
		var a *Activities
		env.OnActivity(a.ParseIssue, mock.Anything, mock.Anything).Return(&IssueReference{Owner: "octo", Repo: "hello-world", IssueNumber: 42}, nil)
		env.OnActivity(a.FetchIssue, mock.Anything, mock.Anything).Return(&ref, nil)
		env.OnActivity(a.CloneAndBranch, mock.Anything, mock.Anything).Return(&wc, nil)
		env.OnActivity(a.GenerateFix, mock.Anything, mock.Anything).Return(nil, NewResourceError("README.md not found in repository", nil))
		env.OnActivity(a.Cleanup, mock.Anything, mock.Anything).Return(
			func(ctx context.Context, in CleanupInput) (*CleanupReport, error) {
				cleanupCalls++
				return &CleanupReport{Path: in.Copy.Path, Success: true, Message: "removed working copy"}, nil
			})

		env.ExecuteWorkflow(FixIssueWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		werr := env.GetWorkflowError()
		require.Error(t, werr)
		assert.True(t, IsErrType(werr, ErrTypeResource))
		assert.Equal(t, 1, cleanupCalls)
		env.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
	})

	t.Run("cancellation mid-step still cleans up exactly once", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterWorkflow(FixIssueWorkflow)

		cleanupCalls := 0
		var a *Activities
		env.OnActivity(a.ParseIssue, mock.Anything, mock.Anything).Return(&IssueReference{Owner: "octo", Repo: "hello-world", IssueNumber: 42}, nil)
		env.OnActivity(a.FetchIssue, mock.Anything, mock.Anything).Return(&ref, nil)
		env.OnActivity(a.CloneAndBranch, mock.Anything, mock.Anything).Return(&wc, nil)
		// Blocks until the run is canceled, so the cancellation lands while
		// the working copy is owed.
		env.OnActivity(a.GenerateFix, mock.Anything, mock.Anything).Return(
			func(ctx context.Context, in GenerateFixInput) (*Patch, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})
		env.OnActivity(a.Cleanup, mock.Anything, mock.Anything).Return(
			func(ctx context.Context, in CleanupInput) (*CleanupReport, error) {
				cleanupCalls++
				return &CleanupReport{Path: in.Copy.Path, Success: true, Message: "removed working copy"}, nil
			})
		env.RegisterDelayedCallback(func() { env.CancelWorkflow() }, time.Second)

		env.ExecuteWorkflow(FixIssueWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		require.Error(t, env.GetWorkflowError())
		assert.Equal(t, 1, cleanupCalls)
		env.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
	})

	t.Run("push retries transient failures before succeeding", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterWorkflow(FixIssueWorkflow)

		pushAttempts := 0
		var a *Activities
		env.OnActivity(a.ParseIssue, mock.Anything, mock.Anything).Return(&IssueReference{Owner: "octo", Repo: "hello-world", IssueNumber: 42}, nil)
		env.OnActivity(a.FetchIssue, mock.Anything, mock.Anything).Return(&ref, nil)
		env.OnActivity(a.CloneAndBranch, mock.Anything, mock.Anything).Return(&wc, nil)
		env.OnActivity(a.GenerateFix, mock.Anything, mock.Anything).Return(&patch, nil)
		env.OnActivity(a.Commit, mock.Anything, mock.Anything).Return(&CommitReport{SHA: "abc123", Message: patch.CommitMessage}, nil)
		env.OnActivity(a.Push, mock.Anything, mock.Anything).Return(
			func(ctx context.Context, in PushInput) (*PushReport, error) {
				pushAttempts++
				if pushAttempts < 3 {
					return nil, NewTransientError("push failed", errors.New("connection reset"))
				}
				return &PushReport{Branch: in.Copy.Branch, CommitsPushed: 1}, nil
			})
		env.OnActivity(a.OpenPullRequest, mock.Anything, mock.Anything).Return(&PullRequestReport{URL: "https://github.com/octo/hello-world/pull/7", Number: 7, Title: "Fix issue #42"}, nil)
		env.OnActivity(a.Cleanup, mock.Anything, mock.Anything).Return(&CleanupReport{Path: wc.Path, Success: true, Message: "removed working copy"}, nil)

		env.ExecuteWorkflow(FixIssueWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())
		assert.Equal(t, 3, pushAttempts)

		var result FixIssueResult
		require.NoError(t, env.GetWorkflowResult(&result))
		require.NotNil(t, result.PullRequest)
		assert.True(t, result.Cleanup.Success)
	})

	t.Run("pull request creation retries transient failures", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterWorkflow(FixIssueWorkflow)

		prAttempts := 0
		var a *Activities
		env.OnActivity(a.ParseIssue, mock.Anything, mock.Anything).Return(&IssueReference{Owner: "octo", Repo: "hello-world", IssueNumber: 42}, nil)
		env.OnActivity(a.FetchIssue, mock.Anything, mock.Anything).Return(&ref, nil)
		env.OnActivity(a.CloneAndBranch, mock.Anything, mock.Anything).Return(&wc, nil)
		env.OnActivity(a.GenerateFix, mock.Anything, mock.Anything).Return(&patch, nil)
		env.OnActivity(a.Commit, mock.Anything, mock.Anything).Return(&CommitReport{SHA: "abc123", Message: patch.CommitMessage}, nil)
		env.OnActivity(a.Push, mock.Anything, mock.Anything).Return(&PushReport{Branch: wc.Branch, CommitsPushed: 1}, nil)
		env.OnActivity(a.OpenPullRequest, mock.Anything, mock.Anything).Return(
			func(ctx context.Context, in OpenPullRequestInput) (*PullRequestReport, error) {
				prAttempts++
				if prAttempts < 3 {
					return nil, NewTransientError("create pull request failed", errors.New("502 bad gateway"))
				}
				return &PullRequestReport{URL: "https://github.com/octo/hello-world/pull/7", Number: 7, Title: "Fix issue #42"}, nil
			})
		env.OnActivity(a.Cleanup, mock.Anything, mock.Anything).Return(&CleanupReport{Path: wc.Path, Success: true, Message: "removed working copy"}, nil)

		env.ExecuteWorkflow(FixIssueWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())
		assert.Equal(t, 3, prAttempts)

		var result FixIssueResult
		require.NoError(t, env.GetWorkflowResult(&result))
		require.NotNil(t, result.PullRequest)
		assert.Equal(t, 7, result.PullRequest.Number)
		assert.True(t, result.Cleanup.Success)
	})

	t.Run("cleanup failure is reported without masking the outcome", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()
		env.RegisterWorkflow(FixIssueWorkflow)

		var a *Activities
		env.OnActivity(a.ParseIssue, mock.Anything, mock.Anything).Return(&IssueReference{Owner: "octo", Repo: "hello-world", IssueNumber: 42}, nil)
		env.OnActivity(a.FetchIssue, mock.Anything, mock.Anything).Return(&ref, nil)
		env.OnActivity(a.CloneAndBranch, mock.Anything, mock.Anything).Return(&wc, nil)
		env.OnActivity(a.GenerateFix, mock.Anything, mock.Anything).Return(&patch, nil)
		env.OnActivity(a.Commit, mock.Anything, mock.Anything).Return(&CommitReport{SHA: "abc123", Message: patch.CommitMessage}, nil)
		env.OnActivity(a.Push, mock.Anything, mock.Anything).Return(&PushReport{Branch: wc.Branch, CommitsPushed: 1}, nil)
		env.OnActivity(a.OpenPullRequest, mock.Anything, mock.Anything).Return(&PullRequestReport{URL: "https://github.com/octo/hello-world/pull/7", Number: 7, Title: "Fix issue #42"}, nil)
		env.OnActivity(a.Cleanup, mock.Anything, mock.Anything).Return(&CleanupReport{Path: wc.Path, Success: false, Message: "cleanup failed: permission denied"}, nil)

		env.ExecuteWorkflow(FixIssueWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var result FixIssueResult
		require.NoError(t, env.GetWorkflowResult(&result))
		require.NotNil(t, result.PullRequest)
		assert.False(t, result.Cleanup.Success)
		assert.Contains(t, result.Cleanup.Message, "cleanup failed")
	})
}
