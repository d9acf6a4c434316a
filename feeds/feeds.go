package feeds

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// Source is an upstream threat intelligence feed.
type Source interface {
	// Name returns the configured source identifier.
	Name() string

	// Fetch retrieves the current feed contents as threat documents.
	// Documents carry deterministic content-based IDs, so fetching the
	// same feed twice does not duplicate storage.
	Fetch(ctx context.Context) ([]*core.ThreatDocument, error)
}

// NewSource builds a Source from its configuration. The HTTP client may
// be nil, in which case http.DefaultClient is used.
func NewSource(cfg SourceConfig, client *http.Client) (Source, error) {
	if client == nil {
		client = http.DefaultClient
	}

	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	switch cfg.Kind {
	case SourceKindOTX:
		return newOTXSource(cfg, client, apiKey), nil
	case SourceKindNVD:
		return newNVDSource(cfg, client, apiKey), nil
	case SourceKindCERT:
		return newCERTSource(cfg, client), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSourceKind, cfg.Kind)
	}
}

// BuildSources constructs every source declared in the configuration.
func BuildSources(cfg *Config, client *http.Client) ([]Source, error) {
	sources := make([]Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		source, err := NewSource(sc, client)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", sc.Name, err)
		}
		sources = append(sources, source)
	}
	return sources, nil
}
