package errors

import (
	"errors"
	"fmt"
)

// Lookup and local-file errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrMalformedFilename = errors.New("filename does not encode a deck id (expected <name>-<deck_id>.md)")
)

// ErrDuplicateDetected blocks plan execution when id-less local cards
// match existing remote content. It is a soft stop, not a crash: the
// caller resolves the duplicates or overrides with --force.
var ErrDuplicateDetected = errors.New("duplicate cards detected")

// RemoteError is a non-2xx response from the card API. The body is kept
// verbatim so the operator sees whatever the server had to say.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote API returned status %d: %s", e.StatusCode, e.Body)
}

// GradingParseError means an LLM response was not the expected JSON
// shape. The affected batch degrades to "ungraded" rather than aborting
// the run.
type GradingParseError struct {
	Detail string
}

func (e *GradingParseError) Error() string {
	return fmt.Sprintf("unparseable grading response: %s", e.Detail)
}
