package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInput     = errors.New("prompt and attachments are both empty")
	ErrPayloadTooLarge  = errors.New("prompt or attachment exceeds configured limit")
	ErrMissingAPIKey    = errors.New("generation api key is not configured")
	ErrMissingSessionID = errors.New("x-session-id header is missing")
	ErrNoCandidates     = errors.New("generation api returned no candidates")
	ErrQuotaExceeded    = errors.New("generation api quota exceeded")
	ErrAmbiguousPart    = errors.New("part has both text and inline data")
	ErrUnknownPart      = errors.New("part has neither text nor inline data")
)

// UpstreamError preserves the generation API's error envelope verbatim
// for diagnosability.
type UpstreamError struct {
	StatusCode int    // HTTP status returned by the API
	Code       int    // error.code from the envelope, if present
	Message    string // error.message from the envelope, if present
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("generation api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("generation api error %d", e.StatusCode)
}
