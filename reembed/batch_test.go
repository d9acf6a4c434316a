package reembed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai/mock"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

func TestBatchProcessor_NormalizesVectors(t *testing.T) {
	docRepo, _ := setupTestRepositories(t)
	docs := addTestDocuments(t, docRepo, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embeddings := make([][]float32, len(texts))
		for i := range texts {
			embeddings[i] = []float32{3, 4}
		}
		return embeddings, nil
	}

	processor := NewBatchProcessor(docRepo, embedder, 3, time.Millisecond)
	err := processor.Process(context.Background(), docs)
	require.NoError(t, err)

	for _, doc := range docs {
		require.Len(t, doc.Vector, 2)
		assert.InDelta(t, 0.6, doc.Vector[0], 0.0001)
		assert.InDelta(t, 0.8, doc.Vector[1], 0.0001)
	}
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	docRepo, _ := setupTestRepositories(t)
	docs := addTestDocuments(t, docRepo, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	processor := NewBatchProcessor(docRepo, embedder, 1, time.Millisecond)
	err := processor.Process(context.Background(), docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	docRepo, _ := setupTestRepositories(t)

	embedder := mock.NewMockEmbedder()
	processor := NewBatchProcessor(docRepo, embedder, 1, time.Millisecond)

	err := processor.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestEntityBatchProcessor_EmbedsTuples(t *testing.T) {
	_, entityRepo := setupTestRepositories(t)

	ctx := context.Background()
	stored, err := entityRepo.AddEntities(ctx,
		&core.ThreatEntity{Name: "APT28", Type: core.EntityTypeThreatActor, Confidence: 0.9},
	)
	require.NoError(t, err)

	var seen []string
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		seen = texts
		return [][]float32{{1, 0}}, nil
	}

	processor := NewEntityBatchProcessor(entityRepo, embedder, 1, time.Millisecond)
	err = processor.Process(ctx, stored)
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, "(threat_actor,apt28)", seen[0])
}
