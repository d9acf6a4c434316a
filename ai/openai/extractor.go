package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// EntityExtractor implements ai.EntityExtractor using OpenAI-compatible chat APIs.
type EntityExtractor struct {
	client        llms.Model
	minConfidence float32
	logger        *slog.Logger
}

// entity is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type entity struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Confidence float32 `json:"confidence"`
}

// entityAnalysis is the wrapper structure for the LLM's JSON response.
type entityAnalysis struct {
	Entities []entity `json:"entities"`
}

// newEntityExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEntityExtractor(config *ai.Config) (*EntityExtractor, error) {
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

	return &EntityExtractor{
		client:        client,
		minConfidence: config.MinConfidence,
		logger:        slog.Default().With("component", "openai-entity-extractor"),
	}, nil
}

// NewEntityExtractor creates a new entity extractor using the provided configuration.
//
// Returns ai.EntityExtractor interface to enforce abstraction.
func NewEntityExtractor(config *ai.Config) (ai.EntityExtractor, error) {
	return newEntityExtractor(config)
}

// ExtractEntities extracts threat entities from text using an LLM.
// It applies confidence filtering and returns only entities with a valid type
// and a confidence above the minimum threshold.
func (e *EntityExtractor) ExtractEntities(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
	systemPrompt := buildEntityPrompt()
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result entityAnalysis
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []ai.ExtractedEntity{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Filter by confidence and valid type, convert to ai.ExtractedEntity
	extracted := make([]ai.ExtractedEntity, 0, len(result.Entities))
	for _, ent := range result.Entities {
		if ent.Name == "" || ent.Confidence < e.minConfidence {
			continue
		}
		entityType := core.EntityType(strings.ReplaceAll(ent.Type, " ", "_"))
		if !slices.Contains(core.EntityTypes, entityType) {
			e.logger.Debug("dropping entity with unknown type", "name", ent.Name, "type", ent.Type)
			continue
		}
		extracted = append(extracted, ai.ExtractedEntity{
			Name:       ent.Name,
			Type:       entityType,
			Confidence: ent.Confidence,
		})
	}

	// Sort by confidence (descending)
	slices.SortFunc(extracted, func(a, b ai.ExtractedEntity) int {
		if a.Confidence > b.Confidence {
			return -1
		}
		if a.Confidence < b.Confidence {
			return 1
		}
		return 0
	})

	e.logger.Debug("extracted entities",
		"total", len(result.Entities),
		"filtered", len(extracted))

	return extracted, nil
}
