// Package validate decodes and validates the multipart image-flow request
// into a domain.PipelineRequest, or reports a structured rejection.
package validate

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"imageflow/internal/domain"
)

// PerFileSizeLimit and AggregateSizeLimit are both 50 MB, per spec.
const (
	PerFileSizeLimit  = 50 << 20
	AggregateSizeLimit = 50 << 20

	// multipartMemoryCeiling bounds how much of the body ParseMultipartForm
	// is allowed to buffer in memory before spilling to temp files; it is
	// deliberately the same as the aggregate ceiling so a body that fits
	// the aggregate rule never needs disk spillover.
	multipartMemoryCeiling = AggregateSizeLimit
)

var acceptedMIMETypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/jpg":  {},
	"image/webp": {},
	"image/gif":  {},
}

// Error is a structured validation rejection: a human message plus a list
// of specific issues, matching the `{ "message": "...", "issues": [...] }`
// shape of spec.md §6.
type Error struct {
	Message string
	Issues  []string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(message string, issues ...string) *Error {
	return &Error{Message: message, Issues: issues}
}

// Request parses and validates a POST /api/image-flow body. maxReferences
// is the configured ceiling on reference image count (spec.md's
// max_reference_images); it is enforced here, at the parser level, as the
// canonical structured-400 behavior for an over-the-limit submission.
func Request(r *http.Request, maxReferences int) (*domain.PipelineRequest, *Error) {
	if err := r.ParseMultipartForm(multipartMemoryCeiling); err != nil {
		return nil, newError("invalid multipart body", err.Error())
	}
	defer r.MultipartForm.RemoveAll()

	baseFiles := r.MultipartForm.File["baseImage"]
	if len(baseFiles) == 0 {
		return nil, newError("baseImage is required")
	}
	if len(baseFiles) > 1 {
		return nil, newError("baseImage must be exactly one file")
	}

	refFiles := r.MultipartForm.File["referenceImages"]
	if len(refFiles) > maxReferences {
		return nil, newError(
			fmt.Sprintf("at most %d reference images are allowed", maxReferences),
			fmt.Sprintf("received %d", len(refFiles)),
		)
	}

	var aggregate int64
	base, ferr := readImage(baseFiles[0])
	if ferr != nil {
		return nil, ferr
	}
	aggregate += int64(len(base.Bytes))

	refs := make([]domain.ImageFile, 0, len(refFiles))
	for _, fh := range refFiles {
		img, ferr := readImage(fh)
		if ferr != nil {
			return nil, ferr
		}
		aggregate += int64(len(img.Bytes))
		refs = append(refs, *img)
	}

	if aggregate > AggregateSizeLimit {
		return nil, newError("aggregate image size exceeds the 50MB limit", fmt.Sprintf("aggregate bytes=%d", aggregate))
	}

	userPrompt := strings.TrimSpace(r.FormValue("userPrompt"))

	aspectRaw := r.FormValue("aspectRatio")
	aspect, ok := domain.ParseAspectRatio(aspectRaw)
	if !ok {
		return nil, newError("aspectRatio is not one of the supported values", aspectRaw)
	}

	return &domain.PipelineRequest{
		BaseImage:        *base,
		ReferenceImages:  refs,
		UserInstructions: userPrompt,
		AspectRatio:      aspect,
	}, nil
}

func readImage(fh *multipart.FileHeader) (*domain.ImageFile, *Error) {
	if fh.Size > PerFileSizeLimit {
		return nil, newError(
			fmt.Sprintf("%s exceeds the 50MB per-file limit", fh.Filename),
			fmt.Sprintf("bytes=%d", fh.Size),
		)
	}
	mimeType := normalizeMIME(fh.Header.Get("Content-Type"))
	if _, ok := acceptedMIMETypes[mimeType]; !ok {
		return nil, newError(
			fmt.Sprintf("%s has an unsupported content type", fh.Filename),
			mimeType,
		)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, newError(fmt.Sprintf("failed to read %s", fh.Filename), err.Error())
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, newError(fmt.Sprintf("failed to read %s", fh.Filename), err.Error())
	}
	if int64(len(data)) > PerFileSizeLimit {
		return nil, newError(
			fmt.Sprintf("%s exceeds the 50MB per-file limit", fh.Filename),
			fmt.Sprintf("bytes=%d", len(data)),
		)
	}
	return &domain.ImageFile{Bytes: data, MIME: mimeType}, nil
}

func normalizeMIME(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return strings.TrimSpace(mimeType)
}
