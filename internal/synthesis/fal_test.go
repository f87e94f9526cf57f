package synthesis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"imageflow/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestFalClientGenerateFailsWithoutAPIKey(t *testing.T) {
	c := NewFalClient(FalOptions{})
	_, err := c.Generate(context.Background(), "prompt", domain.AspectRatio1x1)
	if !errors.Is(err, domain.ErrFallbackUnavailable) {
		t.Fatalf("expected ErrFallbackUnavailable, got %v", err)
	}
}

func TestFalClientGenerateFetchesFirstImage(t *testing.T) {
	calls := 0
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(`{"images":[{"url":"https://fal.example.com/out.png"}]}`)),
			}, nil
		}
		h := make(http.Header)
		h.Set("Content-Type", "image/png")
		return &http.Response{StatusCode: http.StatusOK, Header: h, Body: io.NopCloser(strings.NewReader("pngbytes"))}, nil
	})
	c := NewFalClient(FalOptions{
		APIKey:       "fal-key",
		Endpoint:     "https://fal.example.com/gemini-image",
		OutputFormat: "png",
		HTTPClient:   &http.Client{Transport: transport},
	})
	res, err := c.Generate(context.Background(), "a cat", domain.AspectRatio16x9)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if string(res.Bytes) != "pngbytes" {
		t.Fatalf("unexpected bytes: %q", res.Bytes)
	}
	if res.MIME != "image/png" {
		t.Fatalf("unexpected mime: %q", res.MIME)
	}
	if calls != 2 {
		t.Fatalf("expected 2 HTTP calls (submit + fetch), got %d", calls)
	}
}

func TestFalClientGenerateDefaultsAspectRatioWhenOmitted(t *testing.T) {
	var capturedBody string
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		capturedBody = string(buf[:n])
		return &http.Response{StatusCode: http.StatusOK, Header: make(http.Header), Body: io.NopCloser(strings.NewReader(`{"images":[]}`))}, nil
	})
	c := NewFalClient(FalOptions{
		APIKey:       "fal-key",
		Endpoint:     "https://fal.example.com/gemini-image",
		DefaultRatio: domain.AspectRatio1x1,
		HTTPClient:   &http.Client{Transport: transport},
	})
	_, _ = c.Generate(context.Background(), "a cat", "")
	if !strings.Contains(capturedBody, `"aspect_ratio":"1:1"`) {
		t.Fatalf("expected default aspect ratio in request body, got %q", capturedBody)
	}
}
