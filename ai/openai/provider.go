package openai

import (
	"log/slog"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// It manages embedder and extractor instances.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	entities  *EntityExtractor
	relations *RelationExtractor
	logger    *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	entities, err := newEntityExtractor(config)
	if err != nil {
		return nil, err
	}

	relations, err := newRelationExtractor(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		entities:  entities,
		relations: relations,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// EntityExtractor returns the entity extraction service.
func (p *Provider) EntityExtractor() ai.EntityExtractor {
	return p.entities
}

// RelationExtractor returns the relationship extraction service.
func (p *Provider) RelationExtractor() ai.RelationExtractor {
	return p.relations
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
