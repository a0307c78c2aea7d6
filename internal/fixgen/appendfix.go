package fixgen

import (
	"context"
	"fmt"
	"strings"
)

// AppendGenerator is the deterministic fallback: it appends a note
// referencing the issue to the end of the file. No credential, no network.
type AppendGenerator struct{}

// NewAppendGenerator creates the fallback generator.
func NewAppendGenerator() *AppendGenerator {
	return &AppendGenerator{}
}

// Generate implements Generator.
func (g *AppendGenerator) Generate(_ context.Context, in GenerateInput) (*GenerateResult, error) {
	note := fmt.Sprintf("Fixed by issuesmith in response to issue #%d", in.IssueNumber)
	if in.IssueTitle != "" {
		note = fmt.Sprintf("%s: %s", note, in.IssueTitle)
	}

	content := strings.TrimRight(in.Content, "\n")
	if content == "" {
		content = note
	} else {
		content = content + "\n\n" + note
	}
	return &GenerateResult{Content: content + "\n"}, nil
}
