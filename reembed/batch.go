package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/pipeline"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

// BatchProcessor handles embedding generation for batches of threat documents.
type BatchProcessor struct {
	repo           storage.DocumentRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.DocumentRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of documents and updates them in storage.
// Vectors are normalized after embedding to ensure compatibility with cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.ThreatDocument) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(docs), len(embeddings))
	}

	for i := range docs {
		docs[i].Vector = pipeline.NormalizeVector(embeddings[i])
	}

	_, err = bp.repo.UpdateDocuments(ctx, docs...)
	if err != nil {
		return fmt.Errorf("failed to update documents: %w", err)
	}

	return nil
}

// EntityBatchProcessor handles embedding generation for batches of threat entities.
// Entities are embedded from their identity tuple, matching how the processing
// pipeline indexes them.
type EntityBatchProcessor struct {
	repo           storage.EntityRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewEntityBatchProcessor creates a new entity batch processor.
func NewEntityBatchProcessor(repo storage.EntityRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *EntityBatchProcessor {
	return &EntityBatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of entities and updates them in storage.
func (bp *EntityBatchProcessor) Process(ctx context.Context, entities []*core.ThreatEntity) error {
	if len(entities) == 0 {
		return nil
	}

	texts := make([]string, len(entities))
	for i, entity := range entities {
		texts[i] = entity.Tuple()
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(entities) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(entities), len(embeddings))
	}

	for i := range entities {
		entities[i].Vector = pipeline.NormalizeVector(embeddings[i])
	}

	_, err = bp.repo.UpdateEntities(ctx, entities...)
	if err != nil {
		return fmt.Errorf("failed to update entities: %w", err)
	}

	return nil
}
