package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

const (
	relationMaxAttempts = 2
	relationRetryPause  = 1 * time.Second

	// defaultRelationConfidence is assigned when the model omits a score.
	defaultRelationConfidence = 0.7
)

// RelationExtractor implements ai.RelationExtractor using OpenAI-compatible chat APIs.
type RelationExtractor struct {
	client llms.Model
	logger *slog.Logger
}

// relation is an internal type used for JSON unmarshaling.
// Confidence is a pointer so a missing score can be told apart from zero.
type relation struct {
	SourceName       string   `json:"source_name"`
	SourceType       string   `json:"source_type"`
	TargetName       string   `json:"target_name"`
	TargetType       string   `json:"target_type"`
	RelationshipType string   `json:"relationship_type"`
	Confidence       *float32 `json:"confidence"`
	Description      string   `json:"description"`
}

// newRelationExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newRelationExtractor(config *ai.Config) (*RelationExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &RelationExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-relation-extractor"),
	}, nil
}

// NewRelationExtractor creates a new relation extractor using the provided configuration.
//
// Returns ai.RelationExtractor interface to enforce abstraction.
func NewRelationExtractor(config *ai.Config) (ai.RelationExtractor, error) {
	return newRelationExtractor(config)
}

// ExtractRelations extracts relationships between known entities using an LLM.
// The response is a bare JSON array, so JSON mode is not used; the array is
// located inside whatever surrounding text the model produces.
func (e *RelationExtractor) ExtractRelations(ctx context.Context, text string, entities []ai.ExtractedEntity) ([]ai.ExtractedRelation, error) {
	if text == "" || len(entities) == 0 {
		e.logger.Debug("empty input for relation extraction")
		return []ai.ExtractedRelation{}, nil
	}

	prompt := buildRelationPrompt(text, entities)
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	var relations []relation
	var lastErr error
	for attempt := 1; attempt <= relationMaxAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.3))
		if err != nil {
			lastErr = err
			e.logger.Error("relation extraction request failed", "attempt", attempt, "err", err)
			if attempt < relationMaxAttempts {
				select {
				case <-time.After(relationRetryPause):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			continue
		}

		if len(response.Choices) < 1 || strings.TrimSpace(response.Choices[0].Content) == "" {
			e.logger.Warn("empty relation extraction response", "attempt", attempt)
			continue
		}

		arrayText := extractJSONArray(response.Choices[0].Content)
		if arrayText == "" {
			e.logger.Warn("no JSON array found in relation response", "attempt", attempt)
			continue
		}

		if err := json.Unmarshal([]byte(arrayText), &relations); err != nil {
			lastErr = err
			e.logger.Warn("error parsing relation response",
				"attempt", attempt,
				"response", arrayText,
				"err", err)
			continue
		}

		return e.cleanRelations(relations), nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return []ai.ExtractedRelation{}, nil
}

// cleanRelations drops incomplete relations and applies defaults.
func (e *RelationExtractor) cleanRelations(relations []relation) []ai.ExtractedRelation {
	cleaned := make([]ai.ExtractedRelation, 0, len(relations))
	for _, r := range relations {
		if r.SourceName == "" || r.SourceType == "" ||
			r.TargetName == "" || r.TargetType == "" || r.RelationshipType == "" {
			e.logger.Warn("incomplete relation skipped",
				"source", r.SourceName, "target", r.TargetName, "type", r.RelationshipType)
			continue
		}

		relType := core.RelationType(strings.ReplaceAll(r.RelationshipType, " ", "_"))
		if !slices.Contains(core.RelationTypes, relType) {
			e.logger.Debug("dropping relation with unknown type", "type", r.RelationshipType)
			continue
		}

		confidence := float32(defaultRelationConfidence)
		if r.Confidence != nil {
			confidence = *r.Confidence
		}

		cleaned = append(cleaned, ai.ExtractedRelation{
			SourceName:  r.SourceName,
			SourceType:  core.EntityType(r.SourceType),
			TargetName:  r.TargetName,
			TargetType:  core.EntityType(r.TargetType),
			Type:        relType,
			Confidence:  confidence,
			Description: r.Description,
		})
	}
	return cleaned
}

// extractJSONArray locates a JSON array inside text that may contain extra
// prose around it. Returns an empty string if no array is present.
func extractJSONArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}
