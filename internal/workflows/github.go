package workflows

import (
	"context"
	"net/http"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/fyrsmithlabs/issuesmith/internal/config"
)

// NewGitHubClient creates an authenticated GitHub client. A missing token is
// an auth failure, not something worth retrying.
func NewGitHubClient(ctx context.Context, token config.Secret) (*github.Client, error) {
	if !token.IsSet() {
		return nil, NewAuthError("github token not configured", nil)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Value()})
	return github.NewClient(oauth2.NewClient(ctx, ts)), nil
}

// classifyGitHubError maps a failed GitHub API call onto the failure
// taxonomy. The substrate owns the retry loop, so classification is all an
// activity has to do: mark the kinds that must not be retried and let
// everything else surface as transient.
//
// A 403 with rate information is GitHub's secondary rate limit and is
// transient; a bare 403 is a credential problem.
func classifyGitHubError(op string, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}

	code := 0
	rateLimited := false
	if resp != nil && resp.Response != nil {
		code = resp.StatusCode
		rateLimited = resp.Rate.Limit > 0
	}

	switch {
	case code == http.StatusUnauthorized:
		return NewAuthError(op+": credential rejected", err)
	case code == http.StatusForbidden && !rateLimited:
		return NewAuthError(op+": access forbidden", err)
	case code == http.StatusNotFound:
		return NewResourceError(op+": not found", err)
	case code == http.StatusUnprocessableEntity:
		return NewValidationError(op+": rejected by remote", err)
	case code >= http.StatusBadRequest && code < http.StatusInternalServerError &&
		code != http.StatusTooManyRequests && code != http.StatusForbidden:
		return NewValidationError(op+": remote rejected request", err)
	default:
		// 429, 403 rate limits, 5xx, and transport-level failures.
		return NewTransientError(op+" failed", err)
	}
}
