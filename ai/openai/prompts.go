package openai

import (
	"fmt"
	"strings"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

const entityResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {
            "type": "string"
          },
          "type": {
            "type": "string"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          }
        },
        "required": ["name", "type", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const entityPromptTemplate = `Extract cybersecurity entities from the given threat intelligence text and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Entity names must be the exact surface form from the text (keep case, hyphens, and dots).
- Type field must match exactly one of the listed values: %s.
- Confidence is a number from 0 (uncertain) to 1 (certain). Rate based on how clearly the text identifies the entity.
- Include only entities that are explicitly mentioned in the text. Do not hallucinate.
- If no entities can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "APT28 used X-Agent malware to exploit CVE-2017-0144 via the EternalBlue exploit."
Output:
{
  "entities": [
    {"name":"APT28","type":"threat_actor","confidence":0.95},
    {"name":"X-Agent","type":"malware","confidence":0.9},
    {"name":"CVE-2017-0144","type":"vulnerability","confidence":0.95},
    {"name":"EternalBlue","type":"exploit","confidence":0.9}
  ]
}

Example (no entities):
Input: "No suspicious activity was observed during the reporting period."
Output:
{
  "entities": []
}`

// buildEntityPrompt creates the system prompt with entity types embedded.
func buildEntityPrompt() string {
	types := make([]string, len(core.EntityTypes))
	for i, t := range core.EntityTypes {
		types[i] = string(t)
	}
	return fmt.Sprintf(entityPromptTemplate, entityResponseSchema, strings.Join(types, ", "))
}

// buildRelationPrompt creates the per-document prompt for relationship
// extraction. The model sees the text plus the entities already known to
// appear in it.
func buildRelationPrompt(text string, entities []ai.ExtractedEntity) string {
	var entityList strings.Builder
	for _, e := range entities {
		fmt.Fprintf(&entityList, "- %s (%s)\n", e.Name, e.Type)
	}

	relTypes := make([]string, len(core.RelationTypes))
	for i, t := range core.RelationTypes {
		relTypes[i] = string(t)
	}

	return fmt.Sprintf(`Extract cybersecurity relationships from the following text.

Text:
%s

Entities:
%s
Return a JSON array of relation objects. Each object must have:
- source_name (string)
- source_type (string)
- target_name (string)
- target_type (string)
- relationship_type (%s)
- confidence (float between 0 and 1)
- description (max 50 words)

Output only valid JSON array.
Begin extraction now.`, text, entityList.String(), strings.Join(relTypes, ", "))
}
