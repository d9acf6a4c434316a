package core

import (
	"fmt"
	"slices"
	"time"
)

// IsValidTimestamp reports whether a timestamp is acceptable on a record.
// The zero time is valid (repositories stamp it on write), as is any time
// up to now. Future timestamps are not.
func IsValidTimestamp(ts time.Time) bool {
	return ts.IsZero() || !ts.After(time.Now())
}

// ValidateDocument validates a ThreatDocument according to domain rules.
//
// Validation rules:
//   - Source must not be empty
//   - Text must not be empty
//   - InsertedAt and UpdatedAt must not lie in the future
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding processor runs)
//   - Entities (can be empty until the extraction processor runs)
//   - Id (0 is valid before AddDocuments assigns the content-based ID)
func ValidateDocument(doc *ThreatDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySource)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyText)
	}

	if !IsValidTimestamp(doc.InsertedAt) || !IsValidTimestamp(doc.UpdatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateEntity validates a ThreatEntity according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Type must be one of EntityTypes
//   - Confidence must be in [0,1]
func ValidateEntity(entity *ThreatEntity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidEntity)
	}

	if entity.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyEntityName)
	}

	if err := ValidateEntityType(entity.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}

	if entity.Confidence < 0 || entity.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrInvalidConfidence)
	}

	return nil
}

// ValidateRelationship validates a ThreatRelationship according to domain rules.
//
// Validation rules:
//   - SourceId and TargetId must be nonzero
//   - Type must be one of RelationTypes
//   - Confidence must be in [0,1]
func ValidateRelationship(rel *ThreatRelationship) error {
	if rel == nil {
		return fmt.Errorf("%w: relationship is nil", ErrInvalidRelationship)
	}

	if rel.SourceId == 0 || rel.TargetId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRelationship, ErrMissingEndpoint)
	}

	if err := ValidateRelationType(rel.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRelationship, err)
	}

	if rel.Confidence < 0 || rel.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidRelationship, ErrInvalidConfidence)
	}

	return nil
}

// ValidateEntityType validates that an EntityType has a known value.
func ValidateEntityType(entityType EntityType) error {
	if !slices.Contains(EntityTypes, entityType) {
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, entityType)
	}
	return nil
}

// ValidateRelationType validates that a RelationType has a known value.
func ValidateRelationType(relType RelationType) error {
	if !slices.Contains(RelationTypes, relType) {
		return fmt.Errorf("%w: %q", ErrInvalidRelationType, relType)
	}
	return nil
}
