// Package visionclient talks to a chat-completions-style vision/text model
// for prompt reconstruction and instruction-based prompt editing.
package visionclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"imageflow/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Client is a bearer-authenticated chat-completions client.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// Options configures a Client.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// New builds a Client. baseURL defaults to the OpenAI-compatible
// chat-completions root when empty.
func New(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{apiKey: opts.APIKey, model: opts.Model, baseURL: baseURL, http: client}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content []chatPart  `json:"content"`
}

type chatPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ReconstructPrompt implements spec.md §4.3.1: describe image_bytes as a
// detailed re-creation prompt, classifying the free-text reply with the
// refusal heuristic.
func (c *Client) ReconstructPrompt(ctx context.Context, systemPrompt string, imageBytes []byte, mimeType string) (domain.PromptOutcome, error) {
	dataURI := toDataURI(mimeType, imageBytes)
	req := chatRequest{
		Model:       c.model,
		Temperature: 0.4,
		Messages: []chatMessage{
			{Role: "system", Content: []chatPart{{Type: "text", Text: systemPrompt}}},
			{Role: "user", Content: []chatPart{
				{Type: "image_url", ImageURL: &chatImageURL{URL: dataURI}},
				{Type: "text", Text: "Describe this image as a detailed re-creation prompt."},
			}},
		},
	}
	reply, err := c.complete(ctx, req)
	if err != nil {
		return domain.PromptOutcome{}, err
	}
	return domain.ClassifyReply(reply), nil
}

type applyInstructionsPayload struct {
	Prompt            string `json:"prompt"`
	IsPromptGenerated bool   `json:"isPromptGenerated"`
}

// ApplyInstructions implements spec.md §4.3.2: rewrite basePrompt per
// instructions, grounded by optional labeled reference images, using JSON
// mode with a schema directive and falling back to the refusal heuristic
// on parse failure.
func (c *Client) ApplyInstructions(ctx context.Context, systemPrompt, basePrompt, instructions string, references []domain.ImageFile) (domain.PromptOutcome, error) {
	parts := []chatPart{
		{Type: "text", Text: fmt.Sprintf("Base description:\n%s", basePrompt)},
		{Type: "text", Text: fmt.Sprintf("Instructions:\n%s", instructions)},
	}
	for i, ref := range references {
		parts = append(parts,
			chatPart{Type: "text", Text: fmt.Sprintf("Reference image #%d", i+1)},
			chatPart{Type: "image_url", ImageURL: &chatImageURL{URL: toDataURI(ref.MIME, ref.Bytes)}},
		)
	}
	parts = append(parts, chatPart{
		Type: "text",
		Text: `Return a JSON object of the exact shape {"prompt": string, "isPromptGenerated": boolean} and nothing else.`,
	})

	req := chatRequest{
		Model:          c.model,
		Temperature:    0.4,
		ResponseFormat: &chatFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: []chatPart{{Type: "text", Text: systemPrompt}}},
			{Role: "user", Content: parts},
		},
	}
	reply, err := c.complete(ctx, req)
	if err != nil {
		return domain.PromptOutcome{}, err
	}

	fragment := extractJSONFragment(reply)
	var parsed applyInstructionsPayload
	if fragment == "" || json.Unmarshal([]byte(fragment), &parsed) != nil {
		return domain.ClassifyReply(reply), nil
	}
	return domain.PromptOutcome{
		Prompt:    strings.TrimSpace(parsed.Prompt),
		Generated: parsed.IsPromptGenerated,
	}, nil
}

func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", domain.ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", domain.ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: chat completions status %d", domain.ErrTransport, resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", domain.ErrTransport, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrTransport)
	}
	return out.Choices[0].Message.Content, nil
}

func toDataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// extractJSONFragment and trimCodeFence are adapted from this codebase's
// existing prompt-payload parsing helpers: tolerate a markdown code fence
// around the JSON object before the first `{`/`[`.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
