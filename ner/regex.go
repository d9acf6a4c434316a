package ner

import (
	"context"
	"regexp"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// regexPattern pairs a compiled pattern with the entity type it produces and
// the fixed confidence assigned to its matches.
type regexPattern struct {
	re         *regexp.Regexp
	entityType core.EntityType
	confidence float32
}

// threatPatterns covers the indicator formats common in CTI text.
// Confidence reflects how unambiguous each format is: an ATT&CK technique ID
// is certain, a bare IPv4 address could be anything.
// Every pattern matches case-insensitively; feed text casing is unreliable.
var threatPatterns = []regexPattern{
	{regexp.MustCompile(`(?i)CVE-\d{4}-\d{4,7}`), core.EntityTypeVulnerability, 0.9},
	{regexp.MustCompile(`(?i)\bT\d{4}(?:\.\d{3})?\b`), core.EntityTypeMitreTechnique, 1.0},
	{regexp.MustCompile(`(?i)\bAPT\d+\b`), core.EntityTypeThreatActor, 0.85},
	{regexp.MustCompile(`(?i)\b[\w-]+(?:Stealer|RAT|Malware|Bot)\b`), core.EntityTypeMalware, 0.8},
	{regexp.MustCompile(`(?i)\b(?:Mimikatz|Cobalt Strike|Metasploit|Netcat|Meterpreter)\b`), core.EntityTypeTool, 0.8},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), core.EntityTypeIndicator, 0.7},
	{regexp.MustCompile(`(?i)\b[a-f0-9]{32,64}\b`), core.EntityTypeIndicator, 0.7},
	{regexp.MustCompile(`(?i)\b(?:EternalBlue|BlueKeep|Heartbleed)\b`), core.EntityTypeExploit, 0.85},
	{regexp.MustCompile(`(?i)\b\w+\.py\b`), core.EntityTypeTool, 0.75},
}

// RegexExtractor extracts threat entities using the pattern table.
// It implements ai.EntityExtractor and never fails.
type RegexExtractor struct{}

var _ ai.EntityExtractor = (*RegexExtractor)(nil)

// NewRegexExtractor creates a regex-based entity extractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// ExtractEntities scans text with every pattern and returns all matches with
// their fixed confidences. Duplicates are kept; callers deduplicate via
// FilterAndDeduplicate.
func (e *RegexExtractor) ExtractEntities(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
	var entities []ai.ExtractedEntity
	for _, p := range threatPatterns {
		for _, match := range p.re.FindAllString(text, -1) {
			entities = append(entities, ai.ExtractedEntity{
				Name:       match,
				Type:       p.entityType,
				Confidence: p.confidence,
			})
		}
	}
	return entities, nil
}
