package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

// embeddingProcessor generates embeddings for threat documents.
type embeddingProcessor struct {
	documentRepository storage.DocumentRepository
	embedder           ai.Embedder
	checkpoints        storage.CheckpointRepository
	lastID             core.ID
	logger             *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
// The checkpoint repository may be nil, which disables checkpointing.
func newEmbeddingProcessor(
	documentRepository storage.DocumentRepository,
	embedder ai.Embedder,
	checkpoints storage.CheckpointRepository,
	logger *slog.Logger,
) (processor, error) {
	if documentRepository == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		documentRepository: documentRepository,
		embedder:           embedder,
		checkpoints:        checkpoints,
		logger:             logger.With("processor", embeddingProcessorType),
	}, nil
}

// process generates embeddings for the specified documents.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing documents for embeddings", "documents", len(ids))

	// Sort first so checkpointing works correctly
	slices.Sort(ids)

	docs, err := ep.documentRepository.GetDocuments(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving documents", "err", err)
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	ep.logger.Debug("generating embeddings for documents", "documents", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(docs), len(embeddings))
	}

	// Unit-length vectors let search use a plain dot product for cosine similarity.
	for i := range embeddings {
		docs[i].Vector = NormalizeVector(embeddings[i])
	}

	updated, err := ep.documentRepository.UpdateDocuments(ctx, docs...)
	if err != nil {
		return err
	}

	highestID := updated[len(updated)-1].Id
	if highestID > ep.lastID {
		ep.lastID = highestID
	}

	return nil
}

// checkpoint saves the processor's progress.
func (ep *embeddingProcessor) checkpoint(ctx context.Context) error {
	if ep.checkpoints == nil || ep.lastID == 0 {
		return nil
	}
	return ep.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: embeddingProcessorType,
		LastId:        ep.lastID,
	})
}
