package ner

import (
	"context"
	"log/slog"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// HybridExtractor combines model-based and regex-based entity extraction.
// It implements ai.EntityExtractor.
type HybridExtractor struct {
	model         ai.EntityExtractor
	regex         *RegexExtractor
	minConfidence float32
	logger        *slog.Logger
}

var _ ai.EntityExtractor = (*HybridExtractor)(nil)

// HybridOption is a functional option for configuring a HybridExtractor.
type HybridOption func(*HybridExtractor)

// WithModel sets the model-based extractor arm. Without it only regex runs.
func WithModel(model ai.EntityExtractor) HybridOption {
	return func(h *HybridExtractor) {
		h.model = model
	}
}

// WithMinConfidence sets the confidence threshold for the merged results.
func WithMinConfidence(min float32) HybridOption {
	return func(h *HybridExtractor) {
		h.minConfidence = min
	}
}

// NewHybridExtractor creates a hybrid extractor.
func NewHybridExtractor(opts ...HybridOption) *HybridExtractor {
	h := &HybridExtractor{
		regex:         NewRegexExtractor(),
		minConfidence: DefaultMinConfidence,
		logger:        slog.Default().With("component", "hybrid-ner"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ExtractEntities runs both arms and merges the results. The model arm takes
// precedence, so a regex match never overrides the model's confidence for the
// same (name, type) pair.
// A model failure degrades to regex-only extraction rather than failing the
// whole call.
func (h *HybridExtractor) ExtractEntities(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
	var combined []ai.ExtractedEntity
	seen := make(map[string]bool)

	if h.model != nil {
		modelEntities, err := h.model.ExtractEntities(ctx, text)
		if err != nil {
			h.logger.Warn("model extraction failed, falling back to regex only", "err", err)
		} else {
			combined = append(combined, modelEntities...)
			for _, ent := range modelEntities {
				seen[core.EntityTuple(ent.Name, ent.Type)] = true
			}
		}
	}

	regexEntities, _ := h.regex.ExtractEntities(ctx, text)
	for _, ent := range regexEntities {
		if seen[core.EntityTuple(ent.Name, ent.Type)] {
			continue
		}
		combined = append(combined, ent)
	}

	filtered := FilterAndDeduplicate(combined, h.minConfidence)

	h.logger.Debug("extracted entities",
		"total", len(combined),
		"filtered", len(filtered))
	return filtered, nil
}
