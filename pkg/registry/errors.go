package registry

import (
	"errors"
	"fmt"
)

// Sentinel classes for ingestion failures. Match with errors.Is.
var (
	// ErrUnreachable covers transport-level failures: network errors and
	// non-2xx responses. Retryable by a later sync run.
	ErrUnreachable = errors.New("registry unreachable")

	// ErrMalformedDocument means the response body was not valid JSON
	ErrMalformedDocument = errors.New("registry document is not valid JSON")

	// ErrInvalidMetadata means the document's top-level meta failed strict
	// validation; the whole document is rejected.
	ErrInvalidMetadata = errors.New("invalid registry metadata")

	// ErrInvalidShape means the characters field is not an array
	ErrInvalidShape = errors.New(`registry "characters" must be an array`)

	// ErrEmptyAfterValidation means every character in the document failed
	// validation; an all-invalid document is an ingestion failure, not a
	// silent empty import.
	ErrEmptyAfterValidation = errors.New("registry contains no valid characters")
)

// IngestError is a classified ingestion failure for one registry URL. Kind is
// one of the sentinel classes above; Cause, when present, is the underlying
// transport, decode, or validation error.
type IngestError struct {
	URL   string
	Kind  error
	Cause error
}

// NewIngestError builds a classified ingestion failure
func NewIngestError(url string, kind, cause error) *IngestError {
	return &IngestError{URL: url, Kind: kind, Cause: cause}
}

func (e *IngestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", e.URL, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.URL, e.Kind)
}

// Is matches the error against its kind so callers can classify with
// errors.Is(err, registry.ErrUnreachable) and friends.
func (e *IngestError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

func (e *IngestError) Unwrap() error {
	return e.Cause
}
