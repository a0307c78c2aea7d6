// Package fixgen produces the patched content for a file that resolves a
// reported issue. Two generators exist: a model-backed one using the
// Anthropic API and a deterministic append fallback for environments without
// a model credential. Callers treat a generator as an opaque remote call;
// the pipeline decides what its failures mean.
package fixgen

import (
	"context"
	"errors"
)

// Sentinel errors the pipeline classifies as terminal.
var (
	// ErrEmptyResult means the generator produced no usable content.
	ErrEmptyResult = errors.New("generator returned empty content")
	// ErrUnauthorized means the generator's credential is missing or was
	// rejected.
	ErrUnauthorized = errors.New("generator credential missing or rejected")
)

// GenerateInput carries everything a generator may use: the issue being
// fixed and the current content of the file to rewrite.
type GenerateInput struct {
	IssueTitle  string
	IssueBody   string
	IssueNumber int
	File        string
	Content     string
}

// GenerateResult is the full replacement content for the input file.
type GenerateResult struct {
	Content string
}

// Generator produces fixed file content for an issue.
type Generator interface {
	Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error)
}
