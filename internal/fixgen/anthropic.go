package fixgen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "claude-3-5-haiku-latest"

const maxResponseTokens = 8192

// ModelGenerator asks an Anthropic model for the fixed file content.
//
// The call itself carries a short client-side retry for transport blips; the
// pipeline's own step policy handles everything beyond that, so the budget
// here is deliberately small.
type ModelGenerator struct {
	client          anthropic.Client
	model           anthropic.Model
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsed      time.Duration
}

// NewModelGenerator creates a model-backed generator. The API key is
// required; the model name may be empty to use DefaultModel.
func NewModelGenerator(apiKey, model string) (*ModelGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrUnauthorized)
	}
	if model == "" {
		model = DefaultModel
	}
	return &ModelGenerator{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:           anthropic.Model(model),
		initialInterval: time.Second,
		maxInterval:     10 * time.Second,
		maxElapsed:      45 * time.Second,
	}, nil
}

// Generate implements Generator.
func (g *ModelGenerator) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	prompt, err := renderPrompt(in)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: maxResponseTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.initialInterval
	bo.MaxInterval = g.maxInterval
	bo.MaxElapsedTime = g.maxElapsed

	message, err := backoff.RetryWithData(func() (*anthropic.Message, error) {
		m, merr := g.client.Messages.New(ctx, params)
		if merr != nil {
			if perr := classifyModelError(merr); perr != nil {
				return nil, backoff.Permanent(perr)
			}
			return nil, merr
		}
		return m, nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	content := extractText(message)
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyResult
	}
	return &GenerateResult{Content: strings.TrimSpace(content) + "\n"}, nil
}

// classifyModelError returns a terminal error for failures retrying cannot
// fix, or nil when the failure is worth another attempt.
func classifyModelError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nil
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 401 || apiErr.StatusCode == 403 {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		if apiErr.StatusCode == 429 || apiErr.StatusCode >= 500 {
			return nil
		}
		return err
	}

	return nil
}

// extractText concatenates the text blocks of a model response.
func extractText(message *anthropic.Message) string {
	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
