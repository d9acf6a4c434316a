package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EntityExtractor extracts named threat entities from intelligence text.
// Implementations must be thread-safe for concurrent use.
type EntityExtractor interface {
	// ExtractEntities analyzes text and extracts threat entities with their
	// types and confidence scores. Entities represent actors, malware, tools,
	// vulnerabilities, and the other categories named in core.EntityTypes.
	// Returns an empty slice if no entities are found.
	// Returns an error if entity extraction fails.
	ExtractEntities(ctx context.Context, text string) ([]ExtractedEntity, error)
}

// RelationExtractor extracts relationships between known entities from text.
// Implementations must be thread-safe for concurrent use.
type RelationExtractor interface {
	// ExtractRelations analyzes text together with a list of entities known
	// to appear in it, and extracts directed relationships between entity
	// pairs. Endpoints are identified by name and type; callers resolve them
	// against stored entities.
	// Returns an empty slice if no relationships are found.
	// Returns an error if relation extraction fails.
	ExtractRelations(ctx context.Context, text string, entities []ExtractedEntity) ([]ExtractedRelation, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, EntityExtractor, and RelationExtractor
// instances, ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// EntityExtractor returns the entity extraction service.
	// The returned EntityExtractor is safe for concurrent use.
	EntityExtractor() EntityExtractor

	// RelationExtractor returns the relationship extraction service.
	// The returned RelationExtractor is safe for concurrent use.
	RelationExtractor() RelationExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
