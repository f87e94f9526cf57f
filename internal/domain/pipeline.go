package domain

// ImageFile is a single validated in-memory image: raw bytes plus the
// declared MIME type the client sent it as.
type ImageFile struct {
	Bytes []byte
	MIME  string
}

// PipelineRequest is the immutable input to one orchestration run.
type PipelineRequest struct {
	BaseImage        ImageFile
	ReferenceImages  []ImageFile
	UserInstructions string // trimmed; empty means "not provided"
	AspectRatio      AspectRatio
}

// HasInstructions reports whether Stage 2 should run.
func (r *PipelineRequest) HasInstructions() bool {
	return r.UserInstructions != ""
}

// StoredAsset is an immutable object already written to the blob store.
type StoredAsset struct {
	Key       string
	PublicURL string
}

// PipelineResponse is returned to the caller after a full or partial run.
// Pointer fields are nullable in the JSON encoding and reflect how far the
// pipeline got before a short-circuit.
type PipelineResponse struct {
	BaseImageURL        string   `json:"base_image_url"`
	BaseImageKey        string   `json:"base_image_key"`
	ReferenceImageURLs  []string `json:"reference_image_urls"`
	ReferenceImageKeys  []string `json:"reference_image_keys"`
	Prompt1             *string  `json:"prompt1"`
	Prompt2             *string  `json:"prompt2"`
	OutputImageURL      *string  `json:"output_image_url"`
	OutputImageKey      *string  `json:"output_image_key"`
	Step2Executed       bool     `json:"step2_executed"`
	PromptGenerated     bool     `json:"prompt_generated"`
	Error               string   `json:"error,omitempty"`
}
