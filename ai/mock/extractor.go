package mock

import (
	"context"
	"regexp"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

var mockCVEPattern = regexp.MustCompile(`CVE-\d{4}-\d{4,7}`)

// MockEntityExtractor is a test double for ai.EntityExtractor.
// It allows custom behavior injection via function fields.
type MockEntityExtractor struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, uses default CVE extraction.
	ExtractEntitiesFunc func(ctx context.Context, text string) ([]ai.ExtractedEntity, error)

	callCount int
}

// NewMockEntityExtractor creates a mock entity extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockEntityExtractor().
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// ExtractEntities extracts simple mock entities from text.
// Default behavior: extracts CVE identifiers as vulnerability entities.
func (m *MockEntityExtractor) ExtractEntities(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
	m.callCount++

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}

	matches := mockCVEPattern.FindAllString(text, -1)
	entities := make([]ai.ExtractedEntity, 0, len(matches))
	seen := make(map[string]bool)
	for _, match := range matches {
		if seen[match] {
			continue
		}
		seen[match] = true
		entities = append(entities, ai.ExtractedEntity{
			Name:       match,
			Type:       core.EntityTypeVulnerability,
			Confidence: 0.9,
		})
	}
	return entities, nil
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.callCount = 0
	m.ExtractEntitiesFunc = nil
}

// MockRelationExtractor is a test double for ai.RelationExtractor.
// It allows custom behavior injection via function fields.
type MockRelationExtractor struct {
	// ExtractRelationsFunc is called by ExtractRelations if set.
	// If nil, returns no relations.
	ExtractRelationsFunc func(ctx context.Context, text string, entities []ai.ExtractedEntity) ([]ai.ExtractedRelation, error)

	callCount int
}

// NewMockRelationExtractor creates a mock relation extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockRelationExtractor().
func NewMockRelationExtractor() *MockRelationExtractor {
	return &MockRelationExtractor{}
}

// ExtractRelations returns mock relations.
// Default behavior: returns an empty slice.
func (m *MockRelationExtractor) ExtractRelations(ctx context.Context, text string, entities []ai.ExtractedEntity) ([]ai.ExtractedRelation, error) {
	m.callCount++

	if m.ExtractRelationsFunc != nil {
		return m.ExtractRelationsFunc(ctx, text, entities)
	}

	return []ai.ExtractedRelation{}, nil
}

// CallCount returns the number of times ExtractRelations was called.
func (m *MockRelationExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockRelationExtractor) Reset() {
	m.callCount = 0
	m.ExtractRelationsFunc = nil
}
