// Package gitrepo wraps the go-git operations the fix-issue pipeline needs:
// clone onto a fresh branch, write-and-commit a single file, and push the
// branch to origin. All functions operate on plain directories so they work
// the same against GitHub over HTTPS and against local repositories in
// tests.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Commit author recorded on generated fixes.
const (
	authorName  = "issuesmith"
	authorEmail = "issuesmith@fyrsmithlabs.dev"
)

// TokenAuth returns HTTP basic auth for a GitHub token. Returns nil when the
// token is empty, which go-git treats as anonymous access; useful against
// local repositories in tests.
func TokenAuth(token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: token}
}

// CloneBranch clones url into dir and checks out a new branch off the
// default HEAD.
func CloneBranch(ctx context.Context, url, dir, branch string, auth transport.AuthMethod) error {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  url,
		Auth: auth,
	})
	if err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}

	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	}); err != nil {
		return fmt.Errorf("creating branch %s: %w", branch, err)
	}
	return nil
}

// CommitFile replaces file's content inside the repository at dir, stages
// it, and commits with the given message. Returns the commit hash.
func CommitFile(dir, file, content, message string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("opening repository: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", file, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("opening worktree: %w", err)
	}
	if _, err := wt.Add(file); err != nil {
		return "", fmt.Errorf("staging %s: %w", file, err)
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	return hash.String(), nil
}

// Push pushes branch to origin. Returns the number of refs pushed: zero when
// the remote was already up to date, which a retried push after a crash will
// see and must treat as success.
func Push(ctx context.Context, dir, branch string, auth transport.AuthMethod) (int, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return 0, fmt.Errorf("opening repository: %w", err)
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pushing %s: %w", branch, err)
	}
	return 1, nil
}
