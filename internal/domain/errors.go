package domain

import "errors"

// Sentinel errors for the pipeline's error taxonomy. Stage-level code
// wraps these with fmt.Errorf("...: %w", ...) so callers can classify a
// failure with errors.Is while the orchestrator still gets a readable
// message for the response's error field.
var (
	// ErrRefused marks a vision/text model reply classified as a decline
	// or as empty/too-short content.
	ErrRefused = errors.New("model refused or returned an unusable reply")

	// ErrTransport marks a non-2xx upstream response, a network error, or
	// a malformed reply outside JSON mode.
	ErrTransport = errors.New("upstream transport or protocol error")

	// ErrStorage marks a blob-store upload failure.
	ErrStorage = errors.New("blob store upload failed")

	// ErrQuotaExhausted marks the primary synthesis provider's
	// resource-exhausted condition. Handled internally by the synthesis
	// client; only escalates to the caller if the fallback is also
	// unavailable or fails.
	ErrQuotaExhausted = errors.New("primary provider quota exhausted")

	// ErrFallbackUnavailable marks a missing fallback credential — a
	// distinct condition from ErrQuotaExhausted, since the client does
	// not silently degrade.
	ErrFallbackUnavailable = errors.New("fallback provider not configured")

	// ErrNoImageData marks a synthesis reply with no inline image data.
	ErrNoImageData = errors.New("synthesis reply carried no image data")

	// ErrConfiguration marks a missing required environment variable or
	// unreadable credentials file. Fatal at startup.
	ErrConfiguration = errors.New("invalid configuration")
)
