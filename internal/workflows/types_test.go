package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssueRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     IssueRequest
		wantErr bool
	}{
		{"valid", IssueRequest{RepoPath: "octo/hello-world", IssueNumber: 42}, false},
		{"empty path", IssueRequest{RepoPath: "", IssueNumber: 1}, true},
		{"whitespace path", IssueRequest{RepoPath: "   ", IssueNumber: 1}, true},
		{"missing owner", IssueRequest{RepoPath: "/repo", IssueNumber: 1}, true},
		{"missing name", IssueRequest{RepoPath: "owner/", IssueNumber: 1}, true},
		{"too many segments", IssueRequest{RepoPath: "a/b/c", IssueNumber: 1}, true},
		{"zero issue", IssueRequest{RepoPath: "a/b", IssueNumber: 0}, true},
		{"negative issue", IssueRequest{RepoPath: "a/b", IssueNumber: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitRepoPath(t *testing.T) {
	owner, name, ok := SplitRepoPath("octo/hello-world")
	assert.True(t, ok)
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "hello-world", name)

	owner, name, ok = SplitRepoPath("  octo/hello-world ")
	assert.True(t, ok)
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "hello-world", name)

	_, _, ok = SplitRepoPath("nope")
	assert.False(t, ok)
}

func TestIssueReferenceFullName(t *testing.T) {
	ref := IssueReference{Owner: "octo", Repo: "hello-world", IssueNumber: 42}
	assert.Equal(t, "octo/hello-world", ref.FullName())
}
