package ner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai/mock"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

func TestHybridExtractor_RegexOnly(t *testing.T) {
	extractor := NewHybridExtractor()

	entities, err := extractor.ExtractEntities(context.Background(),
		"APT28 exploited CVE-2017-0144.")
	require.NoError(t, err)

	require.NotNil(t, findEntity(entities, "APT28", core.EntityTypeThreatActor))
	require.NotNil(t, findEntity(entities, "CVE-2017-0144", core.EntityTypeVulnerability))
}

func TestHybridExtractor_MergesModelAndRegex(t *testing.T) {
	model := mock.NewMockEntityExtractor()
	model.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return []ai.ExtractedEntity{
			{Name: "Fancy Bear", Type: core.EntityTypeThreatActor, Confidence: 0.85},
		}, nil
	}

	extractor := NewHybridExtractor(WithModel(model))

	entities, err := extractor.ExtractEntities(context.Background(),
		"Fancy Bear, also tracked as APT28, was responsible.")
	require.NoError(t, err)

	require.NotNil(t, findEntity(entities, "Fancy Bear", core.EntityTypeThreatActor))
	require.NotNil(t, findEntity(entities, "APT28", core.EntityTypeThreatActor))
	assert.Equal(t, 1, model.CallCount())
}

func TestHybridExtractor_ModelFailureFallsBackToRegex(t *testing.T) {
	model := mock.NewMockEntityExtractor()
	model.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return nil, errors.New("service unavailable")
	}

	extractor := NewHybridExtractor(WithModel(model))

	entities, err := extractor.ExtractEntities(context.Background(),
		"The campaign abused CVE-2021-44228.")
	require.NoError(t, err)

	require.NotNil(t, findEntity(entities, "CVE-2021-44228", core.EntityTypeVulnerability))
}

func TestHybridExtractor_ModelArmTakesPrecedence(t *testing.T) {
	model := mock.NewMockEntityExtractor()
	model.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		// The regex suffix pattern would score this name 0.8
		return []ai.ExtractedEntity{
			{Name: "UglyBot", Type: core.EntityTypeMalware, Confidence: 0.75},
		}, nil
	}

	extractor := NewHybridExtractor(WithModel(model))

	entities, err := extractor.ExtractEntities(context.Background(),
		"UglyBot beaconed to its controller.")
	require.NoError(t, err)

	var matches []ai.ExtractedEntity
	for _, e := range entities {
		if e.Type == core.EntityTypeMalware {
			matches = append(matches, e)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, float32(0.75), matches[0].Confidence)
}

func TestHybridExtractor_ModelPrecedenceIgnoresCase(t *testing.T) {
	model := mock.NewMockEntityExtractor()
	model.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return []ai.ExtractedEntity{
			{Name: "cve-2021-44228", Type: core.EntityTypeVulnerability, Confidence: 0.75},
		}, nil
	}

	extractor := NewHybridExtractor(WithModel(model))

	entities, err := extractor.ExtractEntities(context.Background(),
		"Exploitation of CVE-2021-44228 continues.")
	require.NoError(t, err)

	var matches []ai.ExtractedEntity
	for _, e := range entities {
		if e.Type == core.EntityTypeVulnerability {
			matches = append(matches, e)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, float32(0.75), matches[0].Confidence)
}

func TestHybridExtractor_MinConfidence(t *testing.T) {
	model := mock.NewMockEntityExtractor()
	model.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return []ai.ExtractedEntity{
			{Name: "WeakGuess", Type: core.EntityTypeMalware, Confidence: 0.4},
		}, nil
	}

	extractor := NewHybridExtractor(WithModel(model), WithMinConfidence(0.6))

	entities, err := extractor.ExtractEntities(context.Background(), "WeakGuess was mentioned.")
	require.NoError(t, err)
	assert.Nil(t, findEntity(entities, "WeakGuess", core.EntityTypeMalware))
}
