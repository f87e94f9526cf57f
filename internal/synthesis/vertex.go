package synthesis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"imageflow/internal/domain"
)

// VertexClient is the primary image-synthesis provider: Vertex AI's Gemini
// image-generation model via the Google GenAI SDK.
type VertexClient struct {
	client *genai.Client
	model  string
}

// VertexOptions configures a VertexClient.
type VertexOptions struct {
	Project             string
	Region              string
	CredentialsFilePath string
	Model               string
}

const defaultVertexModel = "gemini-2.5-flash-image"

// NewVertexClient builds a VertexClient against the Vertex AI backend. The
// SDK resolves application-default credentials from
// GOOGLE_APPLICATION_CREDENTIALS at client-construction time, so the
// caller's abs-resolved path is re-applied to the environment here before
// the SDK reads it.
func NewVertexClient(ctx context.Context, opts VertexOptions) (*VertexClient, error) {
	model := opts.Model
	if model == "" {
		model = defaultVertexModel
	}
	if opts.CredentialsFilePath != "" {
		if err := os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", opts.CredentialsFilePath); err != nil {
			return nil, fmt.Errorf("%w: applying resolved credentials path: %v", domain.ErrConfiguration, err)
		}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  opts.Project,
		Location: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: building vertex client: %v", domain.ErrConfiguration, err)
	}
	return &VertexClient{client: client, model: model}, nil
}

// Generate builds a single-turn GenerateContent call carrying the text
// prompt and, when an aspect ratio is supplied, an image-generation config
// field carrying it. It extracts the first inline image part on success,
// and classifies the SDK's structured APIError for the quota-exhaustion
// signature.
func (v *VertexClient) Generate(ctx context.Context, prompt string, aspectRatio domain.AspectRatio) (Result, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if aspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: string(aspectRatio)}
	}

	resp, err := v.client.Models.GenerateContent(ctx, v.model, genai.Text(prompt), cfg)
	if err != nil {
		if isQuotaExhausted(err) {
			return Result{}, fmt.Errorf("%w: %v", domain.ErrQuotaExhausted, err)
		}
		return Result{}, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return Result{Bytes: part.InlineData.Data, MIME: part.InlineData.MIMEType}, nil
			}
		}
	}
	return Result{}, fmt.Errorf("%w", domain.ErrNoImageData)
}

// isQuotaExhausted applies spec's detection rule: numeric code 8, status
// "RESOURCE_EXHAUSTED", or details+message (uppercased) containing
// "RESOURCE_EXHAUSTED" or "QUOTA".
func isQuotaExhausted(err error) bool {
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == 8 {
		return true
	}
	if apiErr.Status == "RESOURCE_EXHAUSTED" {
		return true
	}
	combined := strings.ToUpper(fmt.Sprintf("%s %v", apiErr.Message, apiErr.Details))
	return strings.Contains(combined, "RESOURCE_EXHAUSTED") || strings.Contains(combined, "QUOTA")
}
