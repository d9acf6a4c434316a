package enrich

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNoBundle is returned by operations that require a loaded
	// ATT&CK bundle when none is available.
	ErrNoBundle = errors.New("no ATT&CK bundle loaded")
)
