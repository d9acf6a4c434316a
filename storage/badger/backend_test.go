package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestFindSimilar_NoDocuments(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	vector := []float32{0.1, 0.2, 0.3}

	results, err := backend.FindSimilar(ctx, vector, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_WithDocuments(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		relRepo.Close()
		entityRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	docs := []*core.ThreatDocument{
		{
			Source: "otx",
			Text:   "Emotet campaign targeting financial institutions",
			Vector: []float32{1.0, 0.0, 0.0}, // Very similar to query
		},
		{
			Source: "otx",
			Text:   "Emotet delivery via phishing emails",
			Vector: []float32{0.9, 0.1, 0.0}, // Somewhat similar
		},
		{
			Source: "cert",
			Text:   "Unrelated vulnerability bulletin",
			Vector: []float32{0.0, 0.0, 1.0}, // Not similar
		},
		{
			Source: "cert",
			Text:   "Document awaiting embedding",
			Vector: nil, // No vector, should be skipped
		},
	}

	added, err := docRepo.AddDocuments(ctx, docs...)
	require.NoError(t, err)
	require.Len(t, added, 4)

	queryVector := []float32{1.0, 0.0, 0.0}
	results, err := backend.FindSimilar(ctx, queryVector, 0.8, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	// Sorted by similarity descending
	assert.Equal(t, "Emotet campaign targeting financial institutions", results[0].Document.Text)
	assert.Greater(t, results[0].Score, results[1].Score)

	// Limit caps the result count
	limited, err := backend.FindSimilar(ctx, queryVector, 0.8, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestFindSimilar_ThresholdFiltersAll(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		relRepo.Close()
		entityRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	_, err = docRepo.AddDocuments(ctx, &core.ThreatDocument{
		Source: "otx",
		Text:   "some report",
		Vector: []float32{0.0, 1.0, 0.0},
	})
	require.NoError(t, err)

	results, err := backend.FindSimilar(ctx, []float32{1.0, 0.0, 0.0}, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 1.0, dotProduct([]float32{1, 0, 0}, []float32{1, 0, 0}), 1e-6)
	assert.InDelta(t, 0.0, dotProduct([]float32{1, 0, 0}, []float32{0, 1, 0}), 1e-6)
	// Mismatched lengths use the shorter vector
	assert.InDelta(t, 0.5, dotProduct([]float32{0.5, 0.5}, []float32{1}), 1e-6)
}
