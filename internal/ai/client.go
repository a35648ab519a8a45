// Package ai turns dictated Portuguese text into transaction drafts and
// formatted service orders using an OpenAI-compatible chat endpoint.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const DefaultModel = openai.GPT4oMini

var ErrEmptyResponse = errors.New("ai: empty model response")

// TransactionDraft is the model's proposal for one ledger entry. The
// amount is a decimal string so that parsing and rounding stay in one
// place, the money parser.
type TransactionDraft struct {
	Type          string      `json:"type"`
	Description   string      `json:"description"`
	Amount        json.Number `json:"amount"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
}

type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a client for the given API key. baseURL overrides
// the endpoint, empty means api.openai.com. model empty means
// DefaultModel.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// TransactionDrafts extracts transaction drafts from free text.
func (c *Client) TransactionDrafts(ctx context.Context, inputText string) ([]TransactionDraft, error) {
	content, err := c.complete(ctx, transactionsPrompt(inputText))
	if err != nil {
		return nil, err
	}

	cleaned := cleanJSONString(content)
	var drafts []TransactionDraft
	if err := json.Unmarshal([]byte(cleaned), &drafts); err != nil {
		slog.ErrorContext(ctx, "Failed to parse model response", "error", err, "response", cleaned)
		return nil, fmt.Errorf("parse drafts: %w", err)
	}
	return drafts, nil
}

// ServiceOrder formats a dictated repair note into a service order.
func (c *Client) ServiceOrder(ctx context.Context, inputText string) (string, error) {
	content, err := c.complete(ctx, serviceOrderPrompt(inputText))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

var fenceRegex = regexp.MustCompile("(?s)^```(?:\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// cleanJSONString strips a markdown code fence the model sometimes
// wraps around JSON output.
func cleanJSONString(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
