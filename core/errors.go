package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a ThreatDocument failed validation.
	ErrInvalidDocument = errors.New("invalid threat document")

	// ErrInvalidEntity indicates a ThreatEntity failed validation.
	ErrInvalidEntity = errors.New("invalid threat entity")

	// ErrInvalidRelationship indicates a ThreatRelationship failed validation.
	ErrInvalidRelationship = errors.New("invalid threat relationship")

	// ErrEmptySource indicates the document Source field is empty.
	ErrEmptySource = errors.New("document source cannot be empty")

	// ErrEmptyText indicates the document Text field is empty.
	ErrEmptyText = errors.New("document text cannot be empty")

	// ErrInvalidTimestamp indicates a record timestamp in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyEntityName indicates the entity Name field is empty.
	ErrEmptyEntityName = errors.New("entity name cannot be empty")

	// ErrInvalidEntityType indicates an unknown EntityType value.
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrInvalidRelationType indicates an unknown RelationType value.
	ErrInvalidRelationType = errors.New("invalid relation type")

	// ErrInvalidConfidence indicates a confidence outside [0,1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")

	// ErrMissingEndpoint indicates a relationship without both endpoints.
	ErrMissingEndpoint = errors.New("relationship requires source and target entities")
)
