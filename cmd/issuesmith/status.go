package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/fyrsmithlabs/issuesmith/internal/config"
	"github.com/fyrsmithlabs/issuesmith/internal/workflows"
)

var (
	statusRepo  string
	statusIssue int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of a fix run",
	Long: `Show the current state of the run for the given repository and issue.

The run is located by the same derived ID that submit uses, so no run handle
needs to be remembered.

Examples:
  issuesmith status --repo octo/hello-world --issue 42`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusRepo, "repo", "", "repository as owner/name (required)")
	statusCmd.Flags().IntVar(&statusIssue, "issue", 0, "issue number (required)")
	_ = statusCmd.MarkFlagRequired("repo")
	_ = statusCmd.MarkFlagRequired("issue")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	req := workflows.IssueRequest{RepoPath: statusRepo, IssueNumber: statusIssue}
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

	desc, err := c.DescribeWorkflowExecution(ctx, runID, "")
	if err != nil {
		return fmt.Errorf("describing run %s: %w", runID, err)
	}

	info := desc.GetWorkflowExecutionInfo()
	cmd.Printf("run:     %s\n", runID)
	cmd.Printf("status:  %s\n", info.GetStatus())
	cmd.Printf("started: %s\n", info.GetStartTime().AsTime().Format("2006-01-02 15:04:05 MST"))
	if t := info.GetCloseTime(); t != nil {
		cmd.Printf("closed:  %s\n", t.AsTime().Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
