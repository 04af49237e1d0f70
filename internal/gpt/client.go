// internal/gpt/client.go
package gpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	"nutritrack/config"
)

var ErrNotConfigured = errors.New("AI provider is not configured")

type Client struct {
	client *openai.Client
	model  string
}

// NewClientWithConfig supports OpenAI-compatible providers through BaseURL.
// An empty API key yields a client whose calls fail with ErrNotConfigured.
func NewClientWithConfig(cfg config.GPTConfig) *Client {
	c := &Client{model: openai.GPT4oMini}
	if cfg.Model != "" {
		c.model = cfg.Model
	}
	if cfg.APIKey == "" {
		return c
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	c.client = openai.NewClientWithConfig(oc)
	return c
}

// Message is one prior turn of a chat.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	system    string
	history   []Message
	prompt    string
	maxTokens int
	json      bool
}

func (c *Client) complete(ctx context.Context, r request) (string, error) {
	if c.client == nil {
		return "", ErrNotConfigured
	}

	messages := []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: r.system}}
	for _, m := range r.history {
		role := openai.ChatMessageRoleUser
		if m.Role == openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: r.prompt})

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   r.maxTokens,
		Temperature: 0.7,
	}
	if r.json {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from GPT API")
	}

	return resp.Choices[0].Message.Content, nil
}

// completeJSON runs a JSON-mode completion and decodes the first JSON object
// of the reply into out.
func (c *Client) completeJSON(ctx context.Context, r request, out interface{}) error {
	r.json = true
	text, err := c.complete(ctx, r)
	if err != nil {
		return err
	}
	raw := ExtractJSON(text)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("failed to parse AI response: %w", err)
	}
	return nil
}

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// ExtractJSON strips markdown code fences and returns the outermost JSON
// object in text, or the trimmed text when none is found.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if m := jsonObject.FindString(text); m != "" {
		return m
	}
	return text
}
