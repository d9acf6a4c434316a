package storage

import (
	"context"
	"time"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds threat documents similar to the given vector.
	// Returns documents with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing threat documents.
type DocumentRepository interface {
	Repository
	// AddDocuments adds one or more threat documents to storage.
	// For documents with Id=0, derives the content-based ID from
	// (Source, Indicator, Text). Sets InsertedAt.
	// Returns the documents with IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.ThreatDocument) ([]*core.ThreatDocument, error)

	// UpdateDocuments updates existing threat documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.ThreatDocument) ([]*core.ThreatDocument, error)

	// DeleteDocuments removes documents by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.ThreatDocument, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.ThreatDocument, error)

	// GetDocumentsByDateRange retrieves documents ingested within a time range.
	// Returns documents where start <= InsertedAt < end, ordered by insertion time.
	GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.ThreatDocument, error)

	// GetRecentDocuments retrieves the N most recently ingested documents,
	// newest first.
	GetRecentDocuments(ctx context.Context, limit int) ([]*core.ThreatDocument, error)

	// GetDocumentsByEntity retrieves IDs of documents that reference an entity.
	GetDocumentsByEntity(ctx context.Context, entityID core.ID) ([]core.ID, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}

// EntityRepository provides operations for managing threat entities.
type EntityRepository interface {
	Repository
	// AddEntities adds one or more entities to storage.
	// Uses content-based IDs (IDFromContent of the entity tuple).
	// Sets InsertedAt. Returns the entities with timestamps populated.
	AddEntities(ctx context.Context, entities ...*core.ThreatEntity) ([]*core.ThreatEntity, error)

	// UpdateEntities updates existing entities.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any entity doesn't exist.
	UpdateEntities(ctx context.Context, entities ...*core.ThreatEntity) ([]*core.ThreatEntity, error)

	// DeleteEntities removes entities by their IDs.
	// Returns ErrNotFound if any entity doesn't exist.
	DeleteEntities(ctx context.Context, ids ...core.ID) error

	// GetEntity retrieves a single entity by ID.
	// Returns ErrNotFound if the entity doesn't exist.
	GetEntity(ctx context.Context, id core.ID) (*core.ThreatEntity, error)

	// GetEntities retrieves multiple entities by their IDs.
	// Returns only the entities that exist (no error for missing entities).
	GetEntities(ctx context.Context, ids ...core.ID) ([]*core.ThreatEntity, error)

	// FindEntityByNameAndType finds an entity by its (type,name) tuple.
	// Name matching is case-insensitive.
	// Returns ErrNotFound if no matching entity exists.
	FindEntityByNameAndType(ctx context.Context, name string, entityType core.EntityType) (*core.ThreatEntity, error)

	// GetOrCreateEntity finds or creates an entity from the given template.
	// If the entity exists, returns it; enrichment fields present on the
	// template but missing on the stored entity are merged in.
	// Thread-safe: handles concurrent creation attempts.
	GetOrCreateEntity(ctx context.Context, entity *core.ThreatEntity) (*core.ThreatEntity, error)

	// GetAllEntities retrieves all entities from storage.
	GetAllEntities(ctx context.Context) ([]*core.ThreatEntity, error)
}

// RelationRepository provides operations for managing knowledge-graph edges.
type RelationRepository interface {
	Repository
	// AddRelationships adds one or more relationship edges to storage.
	// Uses content-based IDs derived from (source, type, target).
	// Sets InsertedAt. Returns the relationships with timestamps populated.
	AddRelationships(ctx context.Context, rels ...*core.ThreatRelationship) ([]*core.ThreatRelationship, error)

	// DeleteRelationships removes relationships by their IDs.
	// Returns ErrNotFound if any relationship doesn't exist.
	DeleteRelationships(ctx context.Context, ids ...core.ID) error

	// GetRelationship retrieves a single relationship by ID.
	// Returns ErrNotFound if the relationship doesn't exist.
	GetRelationship(ctx context.Context, id core.ID) (*core.ThreatRelationship, error)

	// GetRelationshipsBySource retrieves relationships originating at an entity.
	GetRelationshipsBySource(ctx context.Context, sourceID core.ID) ([]*core.ThreatRelationship, error)

	// GetRelationshipsByTarget retrieves relationships pointing at an entity.
	GetRelationshipsByTarget(ctx context.Context, targetID core.ID) ([]*core.ThreatRelationship, error)

	// Neighbors retrieves the graph neighborhood of an entity: every edge
	// touching it, with the entity ID on the other end.
	Neighbors(ctx context.Context, entityID core.ID) ([]*core.Neighbor, error)
}

// CheckpointRepository persists pipeline processing progress.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for a processor type.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a processor type.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)
}
