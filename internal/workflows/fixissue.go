package workflows

import (
	"go.temporal.io/sdk/workflow"
)

// FixIssueWorkflow drives one run end to end: parse the request, fetch the
// issue, clone onto a disposable working copy, generate and commit a patch,
// push, and open a pull request. Each step consumes its predecessor's
// output, so the body is strictly sequential.
//
// The deferred block is the compensation phase. It runs on every exit path,
// including cancellation: the disconnected context keeps the cleanup
// activity schedulable after the workflow context itself is canceled. A
// cleanup failure is recorded in the result but never replaces the primary
// outcome.
func FixIssueWorkflow(ctx workflow.Context, req IssueRequest) (result *FixIssueResult, err error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting fix-issue run", "repo", req.RepoPath, "issue", req.IssueNumber)

	var a *Activities
	result = &FixIssueResult{}
	guard := &cleanupGuard{}

	defer func() {
		dctx, cancel := workflow.NewDisconnectedContext(ctx)
		defer cancel()
		dctx = workflow.WithActivityOptions(dctx, CleanupPolicy.ActivityOptions())

		result.Cleanup = guard.release(func(wc WorkingCopy) (CleanupReport, error) {
			var report CleanupReport
			cerr := workflow.ExecuteActivity(dctx, a.Cleanup, CleanupInput{Copy: wc}).Get(dctx, &report)
			return report, cerr
		})
		if result.Cleanup.Success {
			logger.Info("cleanup done", "path", result.Cleanup.Path, "message", result.Cleanup.Message)
		} else {
			logger.Error("cleanup failed", "path", result.Cleanup.Path, "message", result.Cleanup.Message)
		}
	}()

	// Step 1: parse the request into an issue reference.
	var ref IssueReference
	pctx := workflow.WithActivityOptions(ctx, ParsePolicy.ActivityOptions())
	if err = workflow.ExecuteActivity(pctx, a.ParseIssue, req).Get(pctx, &ref); err != nil {
		logger.Error("parse step failed", "error", err)
		return result, err
	}

	// Step 2: enrich with title and body from the tracker.
	fctx := workflow.WithActivityOptions(ctx, FetchIssuePolicy.ActivityOptions())
	if err = workflow.ExecuteActivity(fctx, a.FetchIssue, ref).Get(fctx, &ref); err != nil {
		logger.Error("fetch step failed", "error", err)
		return result, err
	}
	logger.Info("issue fetched", "repo", ref.FullName(), "title", ref.Title)

	// Step 3: clone and branch. From here on a working copy exists and its
	// removal is owed.
	var wc WorkingCopy
	cctx := workflow.WithActivityOptions(ctx, ClonePolicy.ActivityOptions())
	if err = workflow.ExecuteActivity(cctx, a.CloneAndBranch, CloneInput{Ref: ref}).Get(cctx, &wc); err != nil {
		logger.Error("clone step failed", "error", err)
		return result, err
	}
	guard.arm(wc)
	logger.Info("working copy ready", "path", wc.Path, "branch", wc.Branch)

	// Step 4: generate the patch.
	var patch Patch
	gctx := workflow.WithActivityOptions(ctx, GeneratePolicy.ActivityOptions())
	if err = workflow.ExecuteActivity(gctx, a.GenerateFix, GenerateFixInput{Ref: ref, Copy: wc}).Get(gctx, &patch); err != nil {
		logger.Error("generate step failed", "error", err)
		return result, err
	}

	// Step 5: apply and commit.
	var commit CommitReport
	mctx := workflow.WithActivityOptions(ctx, CommitPolicy.ActivityOptions())
	if err = workflow.ExecuteActivity(mctx, a.Commit, CommitInput{Copy: wc, Patch: patch}).Get(mctx, &commit); err != nil {
		logger.Error("commit step failed", "error", err)
		return result, err
	}

	// Step 6: push the branch.
	var push PushReport
	sctx := workflow.WithActivityOptions(ctx, PushPolicy.ActivityOptions())
	if err = workflow.ExecuteActivity(sctx, a.Push, PushInput{Copy: wc, Commit: commit}).Get(sctx, &push); err != nil {
		logger.Error("push step failed", "error", err)
		return result, err
	}

	// Step 7: open the pull request.
	var pr PullRequestReport
	rctx := workflow.WithActivityOptions(ctx, PullRequestPolicy.ActivityOptions())
	if err = workflow.ExecuteActivity(rctx, a.OpenPullRequest, OpenPullRequestInput{Ref: ref, Copy: wc, Push: push}).Get(rctx, &pr); err != nil {
		logger.Error("pull request step failed", "error", err)
		return result, err
	}

	result.PullRequest = &pr
	logger.Info("fix-issue run complete", "pr_url", pr.URL, "pr_number", pr.Number)
	return result, nil
}
