package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Generator makes one-shot generate-content calls that are expected to
// return a JSON document. Used by the question generator and both
// evaluation pipeline stages.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a generator bound to one model.
func NewGenerator(client *genai.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

// GenerateJSON runs a single generation call and returns the raw text of the
// response with any surrounding code fences stripped. The caller owns
// structured parsing and its fallback behavior.
func (g *Generator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.7),
			MaxOutputTokens: 8192,
		})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty model response")
	}
	return StripFences(text), nil
}

// StripFences removes a markdown code-fence wrapper from model output.
// Models regularly wrap JSON in ```json ... ``` despite being told not to.
func StripFences(content string) string {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "```") {
		return content
	}

	// Drop the opening fence line (which may carry a language tag).
	if idx := strings.Index(content, "\n"); idx >= 0 {
		content = content[idx+1:]
	} else {
		content = strings.TrimPrefix(content, "```")
	}

	content = strings.TrimSpace(content)
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
