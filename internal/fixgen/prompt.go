package fixgen

import (
	"fmt"
	"strings"
	"text/template"
)

const promptTemplate = `You are an expert programmer tasked with fixing a GitHub issue.
Based on the issue details below, please provide the updated file content.

Issue Title: {{.IssueTitle}}
Issue Body: {{.IssueBody}}

Here is the current content of the file to be fixed ({{.File}}):
---
{{.Content}}
---

Please provide the full, updated content for the file {{.File}} that resolves the issue.
Your response should ONLY contain the new file content, with no other text, comments, or explanations.
`

var promptTmpl = template.Must(template.New("fix").Parse(promptTemplate))

// renderPrompt builds the model prompt for one fix request.
func renderPrompt(in GenerateInput) (string, error) {
	var b strings.Builder
	if err := promptTmpl.Execute(&b, in); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return b.String(), nil
}
