package search

import (
	"context"
	"iter"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai/mock"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage/badger"
)

func setupSearchRepositories(t *testing.T) (storage.DocumentRepository, storage.EntityRepository) {
	t.Helper()
	docRepo, entityRepo, relRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		relRepo.Close()
		entityRepo.Close()
		docRepo.Close()
		backend.Close()
	})
	return docRepo, entityRepo
}

// addIndexedEntity stores an entity so the query's entity arm can
// resolve it by name and type.
func addIndexedEntity(t *testing.T, entityRepo storage.EntityRepository, name string, entityType core.EntityType) *core.ThreatEntity {
	t.Helper()
	entity := &core.ThreatEntity{Name: name, Type: entityType, Confidence: 0.9}
	added, err := entityRepo.AddEntities(context.Background(), entity)
	require.NoError(t, err)
	return added[0]
}

func TestNewSearcher(t *testing.T) {
	docRepo, entityRepo := setupSearchRepositories(t)
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(docRepo, entityRepo, provider)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(docRepo, entityRepo, provider, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(docRepo, entityRepo, provider, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewSearcher(nil, entityRepo, provider)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil entity repository", func(t *testing.T) {
		_, err := NewSearcher(docRepo, nil, provider)
		assert.Equal(t, ErrEntityRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(docRepo, entityRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestFindSimilar_EmptyDatabase(t *testing.T) {
	docRepo, entityRepo := setupSearchRepositories(t)

	searcher, err := NewSearcher(docRepo, entityRepo, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.FindSimilar(context.Background(), "test query", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_SemanticSearchOnly(t *testing.T) {
	docRepo, entityRepo := setupSearchRepositories(t)
	ctx := context.Background()

	docs := []*core.ThreatDocument{
		{Source: "otx", Text: "Report about ransomware campaigns", Vector: []float32{0.9, 0.1, 0.0}},
		{Source: "otx", Text: "Report about ransomware payments", Vector: []float32{0.85, 0.15, 0.0}},
		{Source: "otx", Text: "Unrelated phishing infrastructure notes", Vector: []float32{0.1, 0.1, 0.8}},
	}
	added, err := docRepo.AddDocuments(ctx, docs...)
	require.NoError(t, err)
	require.Len(t, added, 3)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.88, 0.12, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(mockEmbedder, mock.NewMockEntityExtractor(), mock.NewMockRelationExtractor())

	searcher, err := NewSearcher(docRepo, entityRepo, provider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "ransomware activity", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	for i := 0; i < len(results)-1; i++ {
		assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score)
	}
}

func TestFindSimilar_EntitySearchOnly(t *testing.T) {
	docRepo, entityRepo := setupSearchRepositories(t)
	ctx := context.Background()

	vuln := addIndexedEntity(t, entityRepo, "CVE-2017-0144", core.EntityTypeVulnerability)

	docs := []*core.ThreatDocument{
		{
			Source: "nvd",
			Text:   "The SMBv1 flaw enables remote execution.",
			Vector: []float32{0.1, 0.1, 0.1},
			Entities: []core.EntityRef{
				{EntityId: vuln.Id, Confidence: 0.9},
			},
		},
		{
			Source: "nvd",
			Text:   "A different advisory entirely.",
			Vector: []float32{0.1, 0.1, 0.1},
		},
	}
	added, err := docRepo.AddDocuments(ctx, docs...)
	require.NoError(t, err)
	require.Len(t, added, 2)

	// The default extractor picks the CVE out of the query, no mock needed.
	searcher, err := NewSearcher(docRepo, entityRepo, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "impact of CVE-2017-0144", 10)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Document.Text, "SMBv1")
	assert.Equal(t, float32(1.2), results[0].Score)
}

func TestFindSimilar_HybridSearch(t *testing.T) {
	docRepo, entityRepo := setupSearchRepositories(t)
	ctx := context.Background()

	actor := addIndexedEntity(t, entityRepo, "APT28", core.EntityTypeThreatActor)

	docs := []*core.ThreatDocument{
		{
			Source: "report",
			Text:   "APT28 spearphishing wave hits ministries",
			Vector: []float32{0.9, 0.1, 0.0},
			Entities: []core.EntityRef{
				{EntityId: actor.Id, Confidence: 0.85},
			},
		},
		{
			Source: "report",
			Text:   "Spearphishing infrastructure overlaps",
			Vector: []float32{0.85, 0.15, 0.0},
		},
		{
			Source: "report",
			Text:   "Older campaign retrospective",
			Vector: []float32{0.2, 0.1, 0.7},
			Entities: []core.EntityRef{
				{EntityId: actor.Id, Confidence: 0.85},
			},
		},
	}
	added, err := docRepo.AddDocuments(ctx, docs...)
	require.NoError(t, err)
	require.Len(t, added, 3)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(mockEmbedder, mock.NewMockEntityExtractor(), mock.NewMockRelationExtractor())

	searcher, err := NewSearcher(docRepo, entityRepo, provider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "APT28 spearphishing", 10)
	require.NoError(t, err)

	require.Len(t, results, 3)

	// The document in both arms wins with the 1.5x boost.
	assert.Contains(t, results[0].Document.Text, "APT28 spearphishing wave")
	assert.Greater(t, results[0].Score, float32(1.2))
}

func TestFindSimilar_VerbatimBoost(t *testing.T) {
	docRepo, entityRepo := setupSearchRepositories(t)
	ctx := context.Background()

	docs := []*core.ThreatDocument{
		{Source: "otx", Text: "credential stuffing attack detected", Vector: []float32{0.9, 0.1, 0.0}},
		{Source: "otx", Text: "unrelated content entirely", Vector: []float32{0.9, 0.1, 0.0}},
	}
	added, err := docRepo.AddDocuments(ctx, docs...)
	require.NoError(t, err)
	require.Len(t, added, 2)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(mockEmbedder, mock.NewMockEntityExtractor(), mock.NewMockRelationExtractor())

	searcher, err := NewSearcher(docRepo, entityRepo, provider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "credential stuffing", 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Contains(t, results[0].Document.Text, "credential stuffing")
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestFindSimilar_WithMaxHits(t *testing.T) {
	docRepo, entityRepo := setupSearchRepositories(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := docRepo.AddDocuments(ctx, &core.ThreatDocument{
			Source: "otx",
			Text:   "Advisory number " + string(rune('a'+i)),
			Vector: []float32{0.9, 0.1, 0.0},
		})
		require.NoError(t, err)
	}

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(mockEmbedder, mock.NewMockEntityExtractor(), mock.NewMockRelationExtractor())

	searcher, err := NewSearcher(docRepo, entityRepo, provider)
	require.NoError(t, err)

	results, err := searcher.FindSimilar(ctx, "advisory", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestFindSimilar_EntityNotInDatabase(t *testing.T) {
	docRepo, entityRepo := setupSearchRepositories(t)
	ctx := context.Background()

	_, err := docRepo.AddDocuments(ctx, &core.ThreatDocument{
		Source: "otx",
		Text:   "General threat landscape notes",
		Vector: []float32{0.9, 0.1, 0.0},
	})
	require.NoError(t, err)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(mockEmbedder, mock.NewMockEntityExtractor(), mock.NewMockRelationExtractor())

	searcher, err := NewSearcher(docRepo, entityRepo, provider)
	require.NoError(t, err)

	// The query mentions a CVE the database has never seen. The entity
	// arm finds nothing and the search falls back to semantic results.
	results, err := searcher.FindSimilar(ctx, "CVE-2099-0001 analysis", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestFindSimilarWithMonitor(t *testing.T) {
	docRepo, entityRepo := setupSearchRepositories(t)
	ctx := context.Background()

	_, err := docRepo.AddDocuments(ctx, &core.ThreatDocument{
		Source: "otx",
		Text:   "Test advisory",
		Vector: []float32{0.9, 0.1, 0.0},
	})
	require.NoError(t, err)

	mockEmbedder := mock.NewMockEmbedder()
	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.9, 0.1, 0.0}, nil
	}
	provider := mock.NewMockProviderWithServices(mockEmbedder, mock.NewMockEntityExtractor(), mock.NewMockRelationExtractor())

	searcher, err := NewSearcher(docRepo, entityRepo, provider)
	require.NoError(t, err)

	monitor := &testMonitor{}
	results, err := searcher.FindSimilarWithMonitor(ctx, "test query", 10, monitor)
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	assert.True(t, monitor.startCalled)
	assert.True(t, monitor.finishCalled)
}

// testMonitor is a simple test implementation of SearchMonitor
type testMonitor struct {
	startCalled  bool
	finishCalled bool
}

func (m *testMonitor) Start(query string) {
	m.startCalled = true
}

func (m *testMonitor) AfterSemanticSearch(ids []uint64) {}

func (m *testMonitor) AfterQueryEntityExtraction(entities []*core.ThreatEntity) {}

func (m *testMonitor) FoundRelatedEntities(tuple string, entityIds []uint64) {}

func (m *testMonitor) AfterEntityRelatedSearch(seq iter.Seq[uint64]) {}

func (m *testMonitor) AfterDocumentRetrieval(docs []*core.ThreatDocument) {}

func (m *testMonitor) SemanticAndEntityHit(doc *core.ThreatDocument) {}

func (m *testMonitor) SemanticHit(doc *core.ThreatDocument) {}

func (m *testMonitor) EntityHit(doc *core.ThreatDocument) {}

func (m *testMonitor) Finish(results []*core.SearchResult) {
	m.finishCalled = true
}
