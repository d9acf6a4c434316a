package mock

import "github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder and extractor instances.
type MockProvider struct {
	embedder  *MockEmbedder
	entities  *MockEntityExtractor
	relations *MockRelationExtractor
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use the GetMock* methods to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		entities:  NewMockEntityExtractor(),
		relations: NewMockRelationExtractor(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, entities *MockEntityExtractor, relations *MockRelationExtractor) ai.AIProvider {
	return &MockProvider{
		embedder:  embedder,
		entities:  entities,
		relations: relations,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// EntityExtractor returns the mock entity extractor.
func (p *MockProvider) EntityExtractor() ai.EntityExtractor {
	return p.entities
}

// RelationExtractor returns the mock relation extractor.
func (p *MockProvider) RelationExtractor() ai.RelationExtractor {
	return p.relations
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockEntityExtractor returns the underlying mock entity extractor for test assertions.
func (p *MockProvider) GetMockEntityExtractor() *MockEntityExtractor {
	return p.entities
}

// GetMockRelationExtractor returns the underlying mock relation extractor for test assertions.
func (p *MockProvider) GetMockRelationExtractor() *MockRelationExtractor {
	return p.relations
}
