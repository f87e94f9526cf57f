// Package pipeline wires the Blob Store Adapter, Vision/Text Model Client,
// Image Synthesis Client, and their upload side effects into the
// request-scoped orchestration state machine. Requests reach it already
// validated.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"imageflow/internal/blobstore"
	"imageflow/internal/domain"
	"imageflow/internal/synthesis"
)

// Vision is the subset of visionclient.Client the orchestrator needs.
type Vision interface {
	ReconstructPrompt(ctx context.Context, systemPrompt string, imageBytes []byte, mimeType string) (domain.PromptOutcome, error)
	ApplyInstructions(ctx context.Context, systemPrompt, basePrompt, instructions string, references []domain.ImageFile) (domain.PromptOutcome, error)
}

// Synthesizer is the subset of synthesis.Client the orchestrator needs.
type Synthesizer interface {
	Generate(ctx context.Context, prompt string, aspectRatio domain.AspectRatio) (synthesis.Result, error)
}

// Uploader is the subset of blobstore.Store the orchestrator needs.
type Uploader interface {
	Upload(ctx context.Context, data []byte, mimeType string, prefix blobstore.Prefix, ext string) (*domain.StoredAsset, error)
}

// Orchestrator runs the full pipeline for one request.
type Orchestrator struct {
	Store              Uploader
	Vision             Vision
	Synth              Synthesizer
	SystemPromptImage  string
	SystemPromptEditor string
	OutputFormat       string
}

// Outcome is Run's result: the response body plus the HTTP status it
// should be served with.
type Outcome struct {
	Response domain.PipelineResponse
	Status   int
}

// Run executes UploadingInputs -> Stage1 -> (Stage2 | SkipStage2) ->
// Stage3 -> UploadingOutput -> Done on an already validated request (the
// HTTP handler runs the Validator before calling Run), short-circuiting on
// the first stage failure per spec's propagation policy. It never deletes
// partial state already uploaded.
func (o *Orchestrator) Run(ctx context.Context, req *domain.PipelineRequest) Outcome {
	resp := domain.PipelineResponse{}

	base, refs, err := o.uploadInputs(ctx, req)
	if err != nil {
		return Outcome{Status: 500, Response: domain.PipelineResponse{Error: err.Error()}}
	}
	resp.BaseImageURL = base.PublicURL
	resp.BaseImageKey = base.Key
	for _, ref := range refs {
		resp.ReferenceImageURLs = append(resp.ReferenceImageURLs, ref.PublicURL)
		resp.ReferenceImageKeys = append(resp.ReferenceImageKeys, ref.Key)
	}

	outcome1, err := o.Vision.ReconstructPrompt(ctx, o.SystemPromptImage, req.BaseImage.Bytes, req.BaseImage.MIME)
	if err != nil {
		resp.Error = fmt.Sprintf("stage 1 failed: %v", err)
		return Outcome{Status: 502, Response: resp}
	}
	if !outcome1.Usable() {
		resp.Prompt1 = ptr(outcome1.Prompt)
		resp.Error = fmt.Errorf("stage 1: %w", domain.ErrRefused).Error()
		return Outcome{Status: 502, Response: resp}
	}
	prompt1 := outcome1.Prompt
	resp.Prompt1 = ptr(prompt1)

	prompt2 := prompt1
	if req.HasInstructions() {
		outcome2, err := o.Vision.ApplyInstructions(ctx, o.SystemPromptEditor, prompt1, req.UserInstructions, req.ReferenceImages)
		if err != nil {
			resp.Error = fmt.Sprintf("stage 2 failed: %v", err)
			return Outcome{Status: 502, Response: resp}
		}
		if !outcome2.Usable() {
			resp.Prompt2 = ptr(outcome2.Prompt)
			resp.Step2Executed = true
			resp.Error = fmt.Errorf("stage 2: %w", domain.ErrRefused).Error()
			return Outcome{Status: 502, Response: resp}
		}
		prompt2 = outcome2.Prompt
		resp.Step2Executed = true
	}
	resp.Prompt2 = ptr(prompt2)

	synthResult, err := o.Synth.Generate(ctx, prompt2, req.AspectRatio)
	if err != nil {
		resp.Error = fmt.Sprintf("stage 3 failed: %v", err)
		return Outcome{Status: 502, Response: resp}
	}

	outputMIME := "image/" + o.OutputFormat
	output, err := o.Store.Upload(ctx, synthResult.Bytes, outputMIME, blobstore.PrefixOutputs, o.OutputFormat)
	if err != nil {
		resp.Error = err.Error()
		return Outcome{Status: 500, Response: resp}
	}

	resp.OutputImageURL = ptr(output.PublicURL)
	resp.OutputImageKey = ptr(output.Key)
	resp.PromptGenerated = true
	return Outcome{Status: 200, Response: resp}
}

// uploadInputs fans the base image and every reference image out
// concurrently, before Stage 1 runs — the only intra-request parallelism
// in the pipeline. All must succeed; any
// failure aborts with the wrapped storage error.
func (o *Orchestrator) uploadInputs(ctx context.Context, req *domain.PipelineRequest) (*domain.StoredAsset, []*domain.StoredAsset, error) {
	g, ctx := errgroup.WithContext(ctx)

	var base *domain.StoredAsset
	g.Go(func() error {
		asset, err := o.Store.Upload(ctx, req.BaseImage.Bytes, req.BaseImage.MIME, blobstore.PrefixInputs, "")
		if err != nil {
			return err
		}
		base = asset
		return nil
	})

	refs := make([]*domain.StoredAsset, len(req.ReferenceImages))
	for i, img := range req.ReferenceImages {
		i, img := i, img
		g.Go(func() error {
			asset, err := o.Store.Upload(ctx, img.Bytes, img.MIME, blobstore.PrefixInputs, "")
			if err != nil {
				return err
			}
			refs[i] = asset
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return base, refs, nil
}

func ptr(s string) *string {
	return &s
}
