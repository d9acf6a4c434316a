package ner

import (
	"strings"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// DefaultMinConfidence is the extraction confidence below which entities are dropped.
const DefaultMinConfidence = 0.7

// noisyTokens are NER artifacts that slip through model extraction.
var noisyTokens = map[string]bool{
	"run":          true,
	"the":          true,
	".":            true,
	",":            true,
	"e":            true,
	"dll32.exe":    true,
	"rund1132.exe": true,
}

// dedupeKey identifies an entity by lowercased name and type.
type dedupeKey struct {
	name       string
	entityType core.EntityType
}

// FilterAndDeduplicate drops low-confidence, too-short, and noisy entities,
// then deduplicates by (lowercased name, type) keeping the highest confidence.
func FilterAndDeduplicate(entities []ai.ExtractedEntity, minConfidence float32) []ai.ExtractedEntity {
	seen := make(map[dedupeKey]ai.ExtractedEntity)
	var order []dedupeKey

	for _, ent := range entities {
		if ent.Confidence < minConfidence {
			continue
		}
		if len(ent.Name) <= 2 {
			continue
		}
		nameKey := strings.ToLower(ent.Name)
		if noisyTokens[nameKey] {
			continue
		}

		key := dedupeKey{name: nameKey, entityType: ent.Type}
		existing, ok := seen[key]
		if !ok {
			seen[key] = ent
			order = append(order, key)
		} else if ent.Confidence > existing.Confidence {
			seen[key] = ent
		}
	}

	result := make([]ai.ExtractedEntity, 0, len(order))
	for _, key := range order {
		result = append(result, seen[key])
	}
	return result
}
