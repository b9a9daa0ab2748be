package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voice-form/internal/infra"
)

// DefaultPrompt is the instruction placed ahead of the rendered form.
const DefaultPrompt = "Fix grammar, make concise and professional:"

type ClaudeClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	prompt     string
}

func NewClaudeClient(apiKey, model, prompt string) *ClaudeClient {
	return NewClaudeClientWithURL(apiKey, model, prompt, "https://api.anthropic.com/v1")
}

func NewClaudeClientWithURL(apiKey, model, prompt, baseURL string) *ClaudeClient {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &ClaudeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      model,
		prompt:     prompt,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []message `json:"messages"`
}

type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You polish dictated inspection notes. Keep the template's headings, line order and bullet structure. Leave bracketed [field] markers untouched. Respond with the refined text only, no preamble.`

// Refine sends the rendered form to the Messages API and returns the rewritten text.
func (c *ClaudeClient) Refine(ctx context.Context, text string) (string, error) {
	reqBody := request{
		Model:       c.model,
		MaxTokens:   500,
		Temperature: 0.5,
		System:      systemPrompt,
		Messages: []message{
			{Role: "user", Content: c.prompt + "\n\n" + text},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var result response
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("claude API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return infra.Permanent(fmt.Errorf("claude API error %d: %s", resp.StatusCode, string(respBody)))
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("empty response from claude")
	}

	refined := strings.TrimSpace(result.Content[0].Text)
	if refined == "" {
		return "", fmt.Errorf("empty response from claude")
	}

	return refined, nil
}
