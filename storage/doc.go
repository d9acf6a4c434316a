// Package storage provides the storage abstraction layer for the threat
// intelligence knowledge store.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic. It allows for different storage
// backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	repo, err := badger.NewDocumentRepository(backend)  // returns storage.DocumentRepository
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: operations common to all repositories
//   - DocumentRepository: operations for threat documents
//   - EntityRepository: operations for threat entities
//   - RelationRepository: operations for knowledge-graph edges
//   - CheckpointRepository: pipeline progress persistence
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific timeout
// requirements.
package storage
