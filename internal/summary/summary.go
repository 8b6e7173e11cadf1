// Package summary generates short blog summaries through an OpenAI-compatible
// chat completion API. Failures never leak past the fixed user-facing
// message; the listing core does not depend on this package.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// FailedMessage is what the reader sees when generation fails, whatever the
// underlying cause.
const FailedMessage = "Failed to generate summary. Please try again."

// ErrContentRequired is returned before any request is made when there is
// nothing to summarize.
var ErrContentRequired = errors.New("content is required")

const promptTemplate = `Provide a concise, engaging summary (50-60 words) of the following blog post. Make it readable and capture the main points, key insights, and tone. Title: %q

Content: %s

Format the response as plain text, starting directly with the summary.`

type Client struct {
	api   *openai.Client
	model string
}

func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

func (c *Client) Summarize(ctx context.Context, title, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrContentRequired
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(promptTemplate, title, content),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summarize: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
