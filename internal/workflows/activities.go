package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-github/v57/github"
	"go.temporal.io/sdk/activity"

	"github.com/fyrsmithlabs/issuesmith/internal/config"
	"github.com/fyrsmithlabs/issuesmith/internal/fixgen"
	"github.com/fyrsmithlabs/issuesmith/internal/gitrepo"
)

// DefaultTargetFile is the file the generator edits when none is configured.
const DefaultTargetFile = "README.md"

// Activities holds the dependencies of the pipeline's remote-effecting
// steps. One instance is registered per worker; every method is safe for
// concurrent runs because all mutable state lives in the per-run working
// copy.
type Activities struct {
	GitHubToken config.Secret
	// Workdir is the parent directory for working copies. Empty means the
	// system temp directory.
	Workdir string
	// TargetFile is the file the generator edits. Empty means
	// DefaultTargetFile.
	TargetFile string
	// BaseBranch is the pull request base. Empty means "main".
	BaseBranch string
	Generator  fixgen.Generator
}

// NewActivities wires activities from loaded configuration.
func NewActivities(cfg *config.Config, gen fixgen.Generator) *Activities {
	return &Activities{
		GitHubToken: cfg.GitHub.Token,
		Workdir:     cfg.Workdir,
		TargetFile:  cfg.TargetFile,
		BaseBranch:  cfg.GitHub.BaseBranch,
		Generator:   gen,
	}
}

func (a *Activities) targetFile() string {
	if a.TargetFile == "" {
		return DefaultTargetFile
	}
	return a.TargetFile
}

func (a *Activities) baseBranch() string {
	if a.BaseBranch == "" {
		return "main"
	}
	return a.BaseBranch
}

// ParseIssue validates the request and resolves it into an issue reference.
// Malformed input is terminal; nothing downstream could repair it.
func (a *Activities) ParseIssue(ctx context.Context, req IssueRequest) (_ *IssueReference, err error) {
	start := time.Now()
	defer func() { observeStep(ctx, "parse_issue", start, err) }()
	logger := activity.GetLogger(ctx)
	logger.Info("parsing fix request", "repo", req.RepoPath, "issue", req.IssueNumber)

	if verr := req.Validate(); verr != nil {
		err = NewValidationError("invalid fix request", verr)
		return nil, err
	}
	owner, name, _ := SplitRepoPath(req.RepoPath)
	return &IssueReference{Owner: owner, Repo: name, IssueNumber: req.IssueNumber}, nil
}

// FetchIssue enriches the reference with the issue's title and body.
func (a *Activities) FetchIssue(ctx context.Context, ref IssueReference) (_ *IssueReference, err error) {
	start := time.Now()
	defer func() { observeStep(ctx, "fetch_issue", start, err) }()
	logger := activity.GetLogger(ctx)

	client, err := NewGitHubClient(ctx, a.GitHubToken)
	if err != nil {
		return nil, err
	}

	issue, resp, gerr := client.Issues.Get(ctx, ref.Owner, ref.Repo, ref.IssueNumber)
	if gerr != nil {
		err = classifyGitHubError("fetch issue", resp, gerr)
		return nil, err
	}

	enriched := ref
	enriched.Title = issue.GetTitle()
	enriched.Body = issue.GetBody()
	logger.Info("issue details fetched", "repo", ref.FullName(), "issue", ref.IssueNumber, "title", enriched.Title)
	return &enriched, nil
}

// CloneAndBranch clones the repository into a fresh temp directory and
// checks out the fix branch. On failure the directory is removed here, so a
// failed clone owes no compensation.
func (a *Activities) CloneAndBranch(ctx context.Context, in CloneInput) (_ *WorkingCopy, err error) {
	start := time.Now()
	defer func() { observeStep(ctx, "clone_and_branch", start, err) }()
	logger := activity.GetLogger(ctx)

	if !a.GitHubToken.IsSet() {
		err = NewAuthError("github token not configured", nil)
		return nil, err
	}

	if a.Workdir != "" {
		if merr := os.MkdirAll(a.Workdir, 0o700); merr != nil {
			return nil, fmt.Errorf("creating workdir: %w", merr)
		}
	}
	dir, err := os.MkdirTemp(a.Workdir, fmt.Sprintf("issuesmith-%s-", in.Ref.Repo))
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	branch := fmt.Sprintf("fix-issue-%d", in.Ref.IssueNumber)
	url := fmt.Sprintf("https://github.com/%s.git", in.Ref.FullName())
	logger.Info("cloning repository", "repo", in.Ref.FullName(), "dir", dir, "branch", branch)

	if cerr := gitrepo.CloneBranch(ctx, url, dir, branch, gitrepo.TokenAuth(a.GitHubToken.Value())); cerr != nil {
		_ = os.RemoveAll(dir)
		err = NewTransientError("clone failed", cerr)
		return nil, err
	}

	logger.Info("working copy created", "dir", dir, "branch", branch)
	return &WorkingCopy{Path: dir, Branch: branch}, nil
}

// GenerateFix reads the target file and asks the generator for its fixed
// content. A missing target file and an empty generator result are terminal;
// generator call failures are transient.
func (a *Activities) GenerateFix(ctx context.Context, in GenerateFixInput) (_ *Patch, err error) {
	start := time.Now()
	defer func() { observeStep(ctx, "generate_fix", start, err) }()
	logger := activity.GetLogger(ctx)

	target := a.targetFile()
	content, rerr := os.ReadFile(filepath.Join(in.Copy.Path, target))
	if rerr != nil {
		if os.IsNotExist(rerr) {
			err = NewResourceError(fmt.Sprintf("%s not found in repository", target), rerr)
			return nil, err
		}
		return nil, fmt.Errorf("reading %s: %w", target, rerr)
	}

	logger.Info("requesting fix", "file", target, "issue", in.Ref.IssueNumber)
	result, gerr := a.Generator.Generate(ctx, fixgen.GenerateInput{
		IssueTitle:  in.Ref.Title,
		IssueBody:   in.Ref.Body,
		IssueNumber: in.Ref.IssueNumber,
		File:        target,
		Content:     string(content),
	})
	if gerr != nil {
		switch {
		case errors.Is(gerr, fixgen.ErrEmptyResult):
			err = NewResourceError("generator returned an empty fix", gerr)
		case errors.Is(gerr, fixgen.ErrUnauthorized):
			err = NewAuthError("generator credential rejected", gerr)
		default:
			err = NewTransientError("fix generation failed", gerr)
		}
		return nil, err
	}

	return &Patch{
		File:          target,
		Content:       result.Content,
		CommitMessage: commitMessage(in.Ref),
	}, nil
}

// Commit writes the patch into the working copy and commits it on the fix
// branch.
func (a *Activities) Commit(ctx context.Context, in CommitInput) (_ *CommitReport, err error) {
	start := time.Now()
	defer func() { observeStep(ctx, "commit", start, err) }()
	logger := activity.GetLogger(ctx)

	sha, cerr := gitrepo.CommitFile(in.Copy.Path, in.Patch.File, in.Patch.Content, in.Patch.CommitMessage)
	if cerr != nil {
		err = fmt.Errorf("apply and commit: %w", cerr)
		return nil, err
	}
	logger.Info("changes committed", "sha", sha, "branch", in.Copy.Branch)
	return &CommitReport{SHA: sha, Message: in.Patch.CommitMessage}, nil
}

// Push pushes the fix branch. Retries may re-push work a crashed attempt
// already completed; a remote that is already up to date counts as success.
func (a *Activities) Push(ctx context.Context, in PushInput) (_ *PushReport, err error) {
	start := time.Now()
	defer func() { observeStep(ctx, "push", start, err) }()
	logger := activity.GetLogger(ctx)
	info := activity.GetInfo(ctx)
	logger.Info("pushing branch", "branch", in.Copy.Branch, "commit", in.Commit.SHA, "attempt", info.Attempt)

	pushed, perr := gitrepo.Push(ctx, in.Copy.Path, in.Copy.Branch, gitrepo.TokenAuth(a.GitHubToken.Value()))
	if perr != nil {
		logger.Warn("push failed", "branch", in.Copy.Branch, "attempt", info.Attempt, "error", perr)
		err = NewTransientError("push failed", perr)
		return nil, err
	}

	logger.Info("branch pushed", "branch", in.Copy.Branch, "commits_pushed", pushed)
	return &PushReport{Branch: in.Copy.Branch, CommitsPushed: pushed}, nil
}

// OpenPullRequest opens the pull request for the pushed branch. When a rerun
// finds the pull request already open, the existing one is returned instead
// of failing the run.
func (a *Activities) OpenPullRequest(ctx context.Context, in OpenPullRequestInput) (_ *PullRequestReport, err error) {
	start := time.Now()
	defer func() { observeStep(ctx, "open_pull_request", start, err) }()
	logger := activity.GetLogger(ctx)

	client, err := NewGitHubClient(ctx, a.GitHubToken)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Fix issue #%d", in.Ref.IssueNumber)
	body := fmt.Sprintf("This PR fixes issue #%d.\n\nCloses #%d", in.Ref.IssueNumber, in.Ref.IssueNumber)
	pr, resp, cerr := client.PullRequests.Create(ctx, in.Ref.Owner, in.Ref.Repo, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Head:  github.String(in.Copy.Branch),
		Base:  github.String(a.baseBranch()),
	})
	if cerr != nil {
		if resp != nil && resp.Response != nil && resp.StatusCode == 422 {
			if existing := a.findOpenPullRequest(ctx, client, in.Ref, in.Copy.Branch); existing != nil {
				logger.Info("pull request already open", "pr_url", existing.URL, "pr_number", existing.Number)
				return existing, nil
			}
		}
		err = classifyGitHubError("create pull request", resp, cerr)
		return nil, err
	}

	pullRequestsOpened.Add(ctx, 1)
	logger.Info("pull request created", "pr_url", pr.GetHTMLURL(), "pr_number", pr.GetNumber())
	return &PullRequestReport{
		URL:    pr.GetHTMLURL(),
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
	}, nil
}

// findOpenPullRequest looks for an open pull request with the given head
// branch. Best effort: lookup failures just mean the original error stands.
func (a *Activities) findOpenPullRequest(ctx context.Context, client *github.Client, ref IssueReference, branch string) *PullRequestReport {
	prs, _, err := client.PullRequests.List(ctx, ref.Owner, ref.Repo, &github.PullRequestListOptions{
		Head:  ref.Owner + ":" + branch,
		State: "open",
	})
	if err != nil || len(prs) == 0 {
		return nil
	}
	pr := prs[0]
	return &PullRequestReport{
		URL:    pr.GetHTMLURL(),
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
	}
}

// Cleanup removes the working copy. It never returns an error: the outcome,
// good or bad, is data in the report.
func (a *Activities) Cleanup(ctx context.Context, in CleanupInput) (*CleanupReport, error) {
	start := time.Now()
	defer func() { observeStep(ctx, "cleanup", start, nil) }()
	logger := activity.GetLogger(ctx)
	logger.Info("cleaning working copy", "path", in.Copy.Path)

	if _, err := os.Stat(in.Copy.Path); os.IsNotExist(err) {
		return &CleanupReport{Path: in.Copy.Path, Success: true, Message: "path did not exist, nothing to clean"}, nil
	}

	if err := os.RemoveAll(in.Copy.Path); err != nil {
		cleanupFailures.Add(ctx, 1)
		logger.Error("cleanup failed", "path", in.Copy.Path, "error", err)
		return &CleanupReport{Path: in.Copy.Path, Success: false, Message: fmt.Sprintf("cleanup failed: %v", err)}, nil
	}

	logger.Info("working copy removed", "path", in.Copy.Path)
	return &CleanupReport{Path: in.Copy.Path, Success: true, Message: "removed working copy"}, nil
}

// commitMessage builds the commit message for a generated fix.
func commitMessage(ref IssueReference) string {
	title := ref.Title
	if title == "" {
		title = fmt.Sprintf("issue #%d", ref.IssueNumber)
	}
	return fmt.Sprintf("fix: %s\n\nThis generated commit addresses the issue described in the title.\n\nCloses #%d", title, ref.IssueNumber)
}
