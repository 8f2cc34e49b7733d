// Package vertex calls the Vertex AI generation service.
package vertex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/rs/zerolog/log"

	"github.com/sahara-wellness/backend/internal/pkg/utils"
)

// Client generates text using a fixed Vertex AI model
type Client struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeOut time.Duration
}

// NewClient creates a new client instance
func NewClient(ctx context.Context, project, location, model string, timeout time.Duration) (*Client, error) {
	if project == "" {
		return nil, fmt.Errorf("project is empty")
	}
	if model == "" {
		return nil, fmt.Errorf("model is empty")
	}
	if timeout <= 0 {
		timeout = time.Second * 20
	}
	log.Ctx(ctx).Info().Str("model", model).Str("location", location).Msg("Init Vertex AI client")
	cl, err := genai.NewClient(ctx, project, location)
	if err != nil {
		return nil, fmt.Errorf("init vertex client: %w", err)
	}
	res := &Client{client: cl, model: cl.GenerativeModel(model), timeOut: timeout}
	return res, nil
}

// Generate returns the model's reply for prompt. The call is bounded by
// the configured timeout; a timeout surfaces as an error, the caller
// decides on fallback content.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := utils.StartSpan(ctx, "vertex.Generate")
	defer span.End()
	ctx, cancelF := context.WithTimeout(ctx, c.timeOut)
	defer cancelF()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if ctx.Err() != nil {
			log.Ctx(ctx).Warn().Dur("timeout", c.timeOut).Msg("model call timed out")
		}
		return "", fmt.Errorf("generate content: %w", err)
	}
	res := extractText(resp)
	if res == "" {
		return "", fmt.Errorf("empty model response")
	}
	return res, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	sb := strings.Builder{}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
