package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"imageflow/internal/blobstore"
	"imageflow/internal/domain"
	"imageflow/internal/pipeline"
	"imageflow/internal/synthesis"
)

func TestHealthReturnsOK(t *testing.T) {
	app := &App{ProxyHandler: http.NotFoundHandler()}
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.Health(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q, want ok", body["status"])
	}
}

func TestImageFlowRejectsMissingBaseImage(t *testing.T) {
	app := &App{MaxReferenceImages: 2, ProxyHandler: http.NotFoundHandler()}
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/image-flow", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	app.ImageFlow(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

type fakeUploaderForHTTP struct{}

func (f *fakeUploaderForHTTP) Upload(ctx context.Context, data []byte, mimeType string, prefix blobstore.Prefix, ext string) (*domain.StoredAsset, error) {
	return &domain.StoredAsset{Key: "k", PublicURL: "https://cdn.example.com/k"}, nil
}

type fakeVisionForHTTP struct{}

func (fakeVisionForHTTP) ReconstructPrompt(ctx context.Context, systemPrompt string, imageBytes []byte, mimeType string) (domain.PromptOutcome, error) {
	return domain.PromptOutcome{Prompt: "a lovely scene", Generated: true}, nil
}

func (fakeVisionForHTTP) ApplyInstructions(ctx context.Context, systemPrompt, basePrompt, instructions string, references []domain.ImageFile) (domain.PromptOutcome, error) {
	return domain.PromptOutcome{Prompt: basePrompt, Generated: true}, nil
}

type fakeSynthForHTTP struct {
	result synthesis.Result
}

func (f fakeSynthForHTTP) Generate(ctx context.Context, prompt string, aspectRatio domain.AspectRatio) (synthesis.Result, error) {
	return f.result, nil
}

func TestImageFlowRunsPipelineOnValidRequest(t *testing.T) {
	orch := &pipeline.Orchestrator{
		Store:        &fakeUploaderForHTTP{},
		Vision:       fakeVisionForHTTP{},
		Synth:        fakeSynthForHTTP{result: synthesis.Result{Bytes: []byte("img"), MIME: "image/png"}},
		OutputFormat: "png",
	}
	app := &App{Orchestrator: orch, MaxReferenceImages: 2, ProxyHandler: http.NotFoundHandler()}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="baseImage"; filename="img.png"`},
		"Content-Type":        {"image/png"},
	})
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	_, _ = part.Write([]byte("fake-bytes"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/image-flow", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	app.ImageFlow(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}
