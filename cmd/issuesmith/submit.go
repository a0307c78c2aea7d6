package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/fyrsmithlabs/issuesmith/internal/config"
	"github.com/fyrsmithlabs/issuesmith/internal/workflows"
)

var (
	submitRepo  string
	submitIssue int
	submitWait  bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a fix run for a GitHub issue",
	Long: `Submit a durable run that fixes the given issue and opens a pull request.

The run ID is derived from the repository and issue number, so submitting the
same issue twice while a run is in flight is a no-op: the second submission
reports the existing run instead of starting another.

Examples:
  # Fix issue 42 of octo/hello-world
  issuesmith submit --repo octo/hello-world --issue 42

  # Submit and wait for the pull request URL
  issuesmith submit --repo octo/hello-world --issue 42 --wait`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitRepo, "repo", "", "repository as owner/name (required)")
	submitCmd.Flags().IntVar(&submitIssue, "issue", 0, "issue number (required)")
	submitCmd.Flags().BoolVar(&submitWait, "wait", false, "block until the run finishes and print the result")
	_ = submitCmd.MarkFlagRequired("repo")
	_ = submitCmd.MarkFlagRequired("issue")
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	req := workflows.IssueRequest{RepoPath: submitRepo, IssueNumber: submitIssue}
	runID, err := workflows.DeriveRunID(req)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return fmt.Errorf("unable to create Temporal client: %w", err)
	}
	defer c.Close()

	opts := client.StartWorkflowOptions{
		ID:                    runID,
		TaskQueue:             cfg.Temporal.TaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}

	we, err := c.ExecuteWorkflow(ctx, opts, workflows.FixIssueWorkflow, req)
	if err != nil {
		var already *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &already) {
			// Reject-duplicate also fires for runs that already finished, so
			// report which case this is.
			if desc, derr := c.DescribeWorkflowExecution(ctx, runID, ""); derr == nil &&
				desc.GetWorkflowExecutionInfo().GetStatus() == enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING {
				cmd.Printf("run already in progress: %s\n", runID)
			} else {
				cmd.Printf("run already exists: %s\n", runID)
			}
			return nil
		}
		return fmt.Errorf("starting run: %w", err)
	}

	cmd.Printf("run submitted: %s\n", we.GetID())

	if !submitWait {
		return nil
	}

	var result workflows.FixIssueResult
	if err := we.Get(ctx, &result); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	if result.PullRequest != nil {
		cmd.Printf("pull request: %s\n", result.PullRequest.URL)
	}
	if !result.Cleanup.Success {
		cmd.Printf("warning: cleanup did not complete: %s\n", result.Cleanup.Message)
	}
	return nil
}
