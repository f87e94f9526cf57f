// Package synthesis generates an image from a text prompt and aspect
// ratio via a primary provider, with automatic fallback to a secondary
// provider on quota exhaustion.
package synthesis

import (
	"context"
	"errors"
	"fmt"

	"imageflow/internal/domain"
)

// Result is the synthesis output: raw image bytes plus the MIME type the
// provider declared for them.
type Result struct {
	Bytes []byte
	MIME  string
}

// primaryProvider is satisfied by vertex.go's Client.
type primaryProvider interface {
	Generate(ctx context.Context, prompt string, aspectRatio domain.AspectRatio) (Result, error)
}

// fallbackProvider is satisfied by fal.go's Client.
type fallbackProvider interface {
	Generate(ctx context.Context, prompt string, aspectRatio domain.AspectRatio) (Result, error)
	Configured() bool
}

// Client composes the primary and fallback providers behind one Generate
// call. Exactly one primary attempt and at most one fallback attempt are
// made; there is no retry loop, per spec's "fast failure" design.
type Client struct {
	primary      primaryProvider
	fallback     fallbackProvider
	defaultRatio domain.AspectRatio
}

// New wires a primary and fallback provider together. defaultRatio is the
// configured fallback aspect ratio; it governs both providers' generation
// config whenever a request omits aspect_ratio, so the primary and the
// fallback never disagree on what "no ratio given" means.
func New(primary primaryProvider, fallback fallbackProvider, defaultRatio domain.AspectRatio) *Client {
	return &Client{primary: primary, fallback: fallback, defaultRatio: defaultRatio}
}

// Generate attempts the primary provider first; on a quota-exhaustion
// condition it routes transparently to the fallback. Any other primary
// error propagates unchanged.
func (c *Client) Generate(ctx context.Context, prompt string, aspectRatio domain.AspectRatio) (Result, error) {
	effective := domain.CoerceAspectRatio(aspectRatio)
	if aspectRatio == "" {
		effective = domain.CoerceAspectRatio(c.defaultRatio)
	}

	res, err := c.primary.Generate(ctx, prompt, effective)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, domain.ErrQuotaExhausted) {
		return Result{}, err
	}
	if !c.fallback.Configured() {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrFallbackUnavailable, err)
	}
	return c.fallback.Generate(ctx, prompt, effective)
}
