package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai/mock"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage/badger"
)

func setupTestRepositories(t *testing.T) (storage.DocumentRepository, storage.EntityRepository, storage.RelationRepository, *badger.Backend) {
	t.Helper()
	docRepo, entityRepo, relRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		relRepo.Close()
		entityRepo.Close()
		docRepo.Close()
		backend.Close()
	})
	return docRepo, entityRepo, relRepo, backend
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(t *testing.T, provider ai.AIProvider, opts ...Option) (*Pipeline, storage.DocumentRepository, storage.EntityRepository, storage.RelationRepository) {
	t.Helper()
	docRepo, entityRepo, relRepo, _ := setupTestRepositories(t)

	opts = append([]Option{WithLogger(quietLogger()), WithPoolSize(1)}, opts...)
	p, err := NewPipeline(docRepo, entityRepo, relRepo, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	return p, docRepo, entityRepo, relRepo
}

func TestNewPipeline_Validation(t *testing.T) {
	docRepo, entityRepo, relRepo, _ := setupTestRepositories(t)
	provider := mock.NewMockProvider()

	_, err := NewPipeline(nil, entityRepo, relRepo, provider)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewPipeline(docRepo, nil, relRepo, provider)
	assert.ErrorIs(t, err, ErrEntityRepositoryRequired)

	_, err = NewPipeline(docRepo, entityRepo, nil, provider)
	assert.ErrorIs(t, err, ErrRelationRepositoryRequired)

	_, err = NewPipeline(docRepo, entityRepo, relRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestIngest_ValidationFailureAbortsBatch(t *testing.T) {
	p, docRepo, _, _ := newTestPipeline(t, mock.NewMockProvider())
	ctx := context.Background()

	err := p.Ingest(ctx,
		&core.ThreatDocument{Source: "otx", Text: "A valid advisory text."},
		&core.ThreatDocument{Source: "otx"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidDocument)

	count, err := docRepo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "nothing should be stored when validation fails")
}

func TestIngest_GeneratesEmbeddings(t *testing.T) {
	p, docRepo, _, _ := newTestPipeline(t, mock.NewMockProvider())
	ctx := context.Background()

	err := p.Ingest(ctx, &core.ThreatDocument{
		Source: "nvd",
		Text:   "A buffer overflow was reported in the SMB service.",
	})
	require.NoError(t, err)
	p.Wait()

	docs, err := docRepo.GetRecentDocuments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotEmpty(t, docs[0].Vector, "embedding processor should populate the vector")

	// Vectors are normalized to unit length.
	var magnitude float32
	for _, v := range docs[0].Vector {
		magnitude += v * v
	}
	assert.InDelta(t, 1.0, float64(magnitude), 0.001)
}

func TestIngest_ExtractsEntities(t *testing.T) {
	p, docRepo, entityRepo, _ := newTestPipeline(t, mock.NewMockProvider())
	ctx := context.Background()

	err := p.Ingest(ctx, &core.ThreatDocument{
		Source: "nvd",
		Text:   "Exploitation of CVE-2017-0144 observed in the wild.",
	})
	require.NoError(t, err)
	p.Wait()

	entity, err := entityRepo.FindEntityByNameAndType(ctx, "CVE-2017-0144", core.EntityTypeVulnerability)
	require.NoError(t, err)
	assert.Equal(t, "CVE-2017-0144", entity.Name)
	assert.NotEmpty(t, entity.Vector, "resolved entities carry tuple embeddings")

	docs, err := docRepo.GetRecentDocuments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Entities, 1)
	assert.Equal(t, entity.Id, docs[0].Entities[0].EntityId)
	assert.InDelta(t, 0.9, float64(docs[0].Entities[0].Confidence), 0.0001)
}

func TestIngest_MinConfidenceFiltersEntities(t *testing.T) {
	extractor := mock.NewMockEntityExtractor()
	extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return []ai.ExtractedEntity{
			{Name: "LowConfActor", Type: core.EntityTypeThreatActor, Confidence: 0.5},
		}, nil
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor, mock.NewMockRelationExtractor())

	p, _, entityRepo, _ := newTestPipeline(t, provider)
	ctx := context.Background()

	err := p.Ingest(ctx, &core.ThreatDocument{Source: "report", Text: "Unattributed phishing campaign."})
	require.NoError(t, err)
	p.Wait()

	_, err = entityRepo.FindEntityByNameAndType(ctx, "LowConfActor", core.EntityTypeThreatActor)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// A lowered threshold lets the same extraction through.
	p2, _, entityRepo2, _ := newTestPipeline(t, provider, WithMinConfidence(0.4))
	err = p2.Ingest(ctx, &core.ThreatDocument{Source: "report", Text: "Unattributed phishing campaign."})
	require.NoError(t, err)
	p2.Wait()

	entity, err := entityRepo2.FindEntityByNameAndType(ctx, "LowConfActor", core.EntityTypeThreatActor)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, float64(entity.Confidence), 0.0001)
}

func TestIngest_ExtractsRelationships(t *testing.T) {
	extractor := mock.NewMockEntityExtractor()
	extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return []ai.ExtractedEntity{
			{Name: "APT28", Type: core.EntityTypeThreatActor, Confidence: 0.85},
			{Name: "X-Agent", Type: core.EntityTypeMalware, Confidence: 0.8},
		}, nil
	}
	relations := mock.NewMockRelationExtractor()
	relations.ExtractRelationsFunc = func(ctx context.Context, text string, entities []ai.ExtractedEntity) ([]ai.ExtractedRelation, error) {
		return []ai.ExtractedRelation{
			{
				SourceName: "apt28", SourceType: core.EntityTypeThreatActor,
				TargetName: "X-Agent", TargetType: core.EntityTypeMalware,
				Type: core.RelationTypeUses, Confidence: 0.9,
			},
			{
				// Unknown endpoint, should be dropped.
				SourceName: "Sandworm", SourceType: core.EntityTypeThreatActor,
				TargetName: "X-Agent", TargetType: core.EntityTypeMalware,
				Type: core.RelationTypeUses, Confidence: 0.5,
			},
		}, nil
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor, relations)

	p, _, entityRepo, relRepo := newTestPipeline(t, provider)
	ctx := context.Background()

	err := p.Ingest(ctx, &core.ThreatDocument{
		Source: "report",
		Text:   "APT28 deployed X-Agent against government targets.",
	})
	require.NoError(t, err)
	p.Wait()

	actor, err := entityRepo.FindEntityByNameAndType(ctx, "APT28", core.EntityTypeThreatActor)
	require.NoError(t, err)

	rels, err := relRepo.GetRelationshipsBySource(ctx, actor.Id)
	require.NoError(t, err)
	require.Len(t, rels, 1, "the unresolved relation should be dropped")
	assert.Equal(t, core.RelationTypeUses, rels[0].Type)

	neighbors, err := relRepo.Neighbors(ctx, actor.Id)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.True(t, neighbors[0].Outgoing)
}

func TestIngest_ExtractionFailureDoesNotFailIngest(t *testing.T) {
	extractor := mock.NewMockEntityExtractor()
	extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return nil, errors.New("model unavailable")
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor, mock.NewMockRelationExtractor())

	p, docRepo, _, _ := newTestPipeline(t, provider)
	ctx := context.Background()

	err := p.Ingest(ctx, &core.ThreatDocument{
		Source: "otx",
		Text:   "Suspicious activity from 10.0.0.5 reported.",
	})
	require.NoError(t, err, "async processing errors must not fail ingestion")
	p.Wait()

	// The embedding arm still runs independently.
	docs, err := docRepo.GetRecentDocuments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotEmpty(t, docs[0].Vector)
}

func TestIngest_SavesCheckpoints(t *testing.T) {
	docRepo, entityRepo, relRepo, backend := setupTestRepositories(t)
	checkpoints := badger.NewCheckpointRepository(backend)

	p, err := NewPipeline(docRepo, entityRepo, relRepo, mock.NewMockProvider(),
		WithLogger(quietLogger()), WithPoolSize(1), WithCheckpoints(checkpoints))
	require.NoError(t, err)
	t.Cleanup(p.Release)

	ctx := context.Background()
	err = p.Ingest(ctx, &core.ThreatDocument{
		Source: "nvd",
		Text:   "CVE-2021-44228 allows remote code execution via JNDI lookups.",
	})
	require.NoError(t, err)
	p.Wait()

	for _, procType := range []string{"embeddings", "extraction"} {
		cp, err := checkpoints.LoadCheckpoint(ctx, procType)
		require.NoError(t, err)
		require.NotNil(t, cp, "checkpoint for %s should exist", procType)
		assert.NotZero(t, cp.LastId)
	}
}

func TestIngest_MultipleDocuments(t *testing.T) {
	p, docRepo, entityRepo, _ := newTestPipeline(t, mock.NewMockProvider())
	ctx := context.Background()

	err := p.Ingest(ctx,
		&core.ThreatDocument{Source: "nvd", Text: "CVE-2014-0160 leaks memory from TLS heartbeats."},
		&core.ThreatDocument{Source: "nvd", Text: "CVE-2017-0144 enables remote SMBv1 code execution."},
		&core.ThreatDocument{Source: "cert", Text: "General advisory without identifiers."},
	)
	require.NoError(t, err)
	p.Wait()

	count, err := docRepo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	entities, err := entityRepo.GetAllEntities(ctx)
	require.NoError(t, err)
	assert.Len(t, entities, 2)
}

func TestNormalizeVector(t *testing.T) {
	normalized := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(normalized[0]), 0.0001)
	assert.InDelta(t, 0.8, float64(normalized[1]), 0.0001)

	zero := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, zero)

	assert.Empty(t, NormalizeVector(nil))
}
