package workflows

import (
	"fmt"
	"strings"
)

// IssueRequest is the immutable submission that starts a run: which
// repository, which issue. It is never mutated after construction and is the
// sole input to run-identity derivation.
type IssueRequest struct {
	RepoPath    string // "owner/name"
	IssueNumber int
}

// Validate checks the structural invariants of the request. A request that
// fails validation is rejected before any remote work happens.
func (r IssueRequest) Validate() error {
	if strings.TrimSpace(r.RepoPath) == "" {
		return fmt.Errorf("repository path is empty")
	}
	if _, _, ok := SplitRepoPath(r.RepoPath); !ok {
		return fmt.Errorf("repository path %q is not of the form owner/name", r.RepoPath)
	}
	if r.IssueNumber <= 0 {
		return fmt.Errorf("issue number %d is not positive", r.IssueNumber)
	}
	return nil
}

// SplitRepoPath splits "owner/name" into its two components.
func SplitRepoPath(repoPath string) (owner, name string, ok bool) {
	parts := strings.Split(strings.TrimSpace(repoPath), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// IssueReference identifies an issue in a concrete repository. The parse
// step produces it; the fetch step returns an enriched copy with title and
// body filled in. Values are immutable once produced.
type IssueReference struct {
	Owner       string
	Repo        string
	IssueNumber int
	Title       string
	Body        string
}

// FullName returns the "owner/name" form of the repository.
func (r IssueReference) FullName() string {
	return r.Owner + "/" + r.Repo
}

// WorkingCopy represents ownership of a local, disposable clone. Exactly one
// exists per live run. The struct itself is never mutated; only the
// directory it points at is created and later removed.
type WorkingCopy struct {
	Path   string
	Branch string
}

// Patch is the output of fix generation: the full new content for one file
// plus the commit message to record it under.
type Patch struct {
	File          string
	Content       string
	CommitMessage string
}

// CommitReport is produced by the commit step.
type CommitReport struct {
	SHA     string
	Message string
}

// PushReport is produced by the push step. CommitsPushed is zero when the
// remote already had the branch at this commit (a rerun after a crash).
type PushReport struct {
	Branch        string
	CommitsPushed int
}

// PullRequestReport is the terminal success artifact.
type PullRequestReport struct {
	URL    string
	Number int
	Title  string
}

// CleanupReport records the compensation outcome. It is produced whenever a
// working copy existed, success or failure, and also as a "no resource to
// clean" no-op when the clone step never completed.
type CleanupReport struct {
	Path    string
	Success bool
	Message string
}

// FixIssueResult is the workflow's terminal value. PullRequest is nil on a
// failed run; Cleanup is always populated.
type FixIssueResult struct {
	PullRequest *PullRequestReport
	Cleanup     CleanupReport
}

// Activity input records. Each step's input is assembled from the outputs of
// its predecessors, so the structs below only bundle prior results.

type CloneInput struct {
	Ref IssueReference
}

type GenerateFixInput struct {
	Ref  IssueReference
	Copy WorkingCopy
}

type CommitInput struct {
	Copy  WorkingCopy
	Patch Patch
}

type PushInput struct {
	Copy   WorkingCopy
	Commit CommitReport
}

type OpenPullRequestInput struct {
	Ref  IssueReference
	Copy WorkingCopy
	Push PushReport
}

type CleanupInput struct {
	Copy WorkingCopy
}
