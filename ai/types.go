package ai

import "github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"

// ExtractedEntity represents a threat entity identified in text.
type ExtractedEntity struct {
	// Name is the entity surface form as it appears in the text.
	// Example: "APT28", "CVE-2021-44228", "Cobalt Strike"
	Name string

	// Type categorizes the entity. Must be one of core.EntityTypes.
	Type core.EntityType

	// Confidence is the extraction confidence between 0 and 1.
	Confidence float32
}

// ExtractedRelation represents a directed relationship between two entities
// identified in text. Endpoints are named rather than resolved; callers match
// them against stored entities by (name, type).
type ExtractedRelation struct {
	SourceName string
	SourceType core.EntityType
	TargetName string
	TargetType core.EntityType

	// Type is the relationship category. Must be one of core.RelationTypes.
	Type core.RelationType

	// Confidence is the extraction confidence between 0 and 1.
	Confidence float32

	// Description is a short free-text summary of the relationship.
	Description string
}
