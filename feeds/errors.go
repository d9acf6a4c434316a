package feeds

import "errors"

var (
	// ErrUnknownSourceKind is returned for a source kind with no client.
	ErrUnknownSourceKind = errors.New("unknown source kind")

	// ErrMissingAPIKey is returned when a source requires an API key and
	// the configured environment variable is empty.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrSourceNotFound is returned when a named source is not configured.
	ErrSourceNotFound = errors.New("source not found")
)
