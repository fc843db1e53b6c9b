package openai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pdfquiz/internal/llm"

	gopenai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-3.5-turbo"

// Client sends chat completion requests to an OpenAI compatible endpoint.
type Client struct {
	client *gopenai.Client
	model  string
}

// NewClient creates a client for the given key and model. baseURL is optional and
// points the client at a compatible endpoint.
func NewClient(apiKey, model, baseURL string) *Client {
	if apiKey == "" {
		log.Println("WARN: OPENAI_API_KEY is not set. Model calls will fail with an authentication error.")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := gopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	return &Client{
		client: gopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends the prompt as a single user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	chatReq := gopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []gopenai.ChatCompletionMessage{
			{Role: gopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", llm.ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
