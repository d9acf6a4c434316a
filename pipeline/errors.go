package pipeline

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrEntityRepositoryRequired is returned when an entity repository is not provided.
	ErrEntityRepositoryRequired = errors.New("entity repository required")

	// ErrRelationRepositoryRequired is returned when a relation repository is not provided.
	ErrRelationRepositoryRequired = errors.New("relation repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
