package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/enrich"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

// extractionProcessor extracts entities and relationships from threat
// documents and wires them into the knowledge graph.
type extractionProcessor struct {
	documentRepository storage.DocumentRepository
	entityRepository   storage.EntityRepository
	relationRepository storage.RelationRepository
	embedder           ai.Embedder
	entityExtractor    ai.EntityExtractor
	relationExtractor  ai.RelationExtractor
	enricher           *enrich.Enricher
	checkpoints        storage.CheckpointRepository
	lastID             core.ID
	logger             *slog.Logger
}

var _ processor = (*extractionProcessor)(nil)

// newExtractionProcessor creates a new extraction processor.
// The enricher and checkpoint repository may be nil.
func newExtractionProcessor(
	documentRepository storage.DocumentRepository,
	entityRepository storage.EntityRepository,
	relationRepository storage.RelationRepository,
	embedder ai.Embedder,
	entityExtractor ai.EntityExtractor,
	relationExtractor ai.RelationExtractor,
	enricher *enrich.Enricher,
	checkpoints storage.CheckpointRepository,
	logger *slog.Logger,
) (processor, error) {
	if documentRepository == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if entityRepository == nil {
		return nil, fmt.Errorf("entity repository required")
	}
	if relationRepository == nil {
		return nil, fmt.Errorf("relation repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if entityExtractor == nil {
		return nil, fmt.Errorf("entity extractor required")
	}
	if relationExtractor == nil {
		return nil, fmt.Errorf("relation extractor required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &extractionProcessor{
		documentRepository: documentRepository,
		entityRepository:   entityRepository,
		relationRepository: relationRepository,
		embedder:           embedder,
		entityExtractor:    entityExtractor,
		relationExtractor:  relationExtractor,
		enricher:           enricher,
		checkpoints:        checkpoints,
		logger:             logger.With("processor", extractionProcessorType),
	}, nil
}

// process extracts entities and relationships from the specified documents.
// Failures on individual documents are collected and joined so one bad
// document does not block the rest of the batch.
func (xp *extractionProcessor) process(ctx context.Context, ids ...core.ID) error {
	xp.logger.Info("processing documents for extraction", "documents", len(ids))

	// Sort to ensure checkpointing works correctly
	slices.Sort(ids)

	docs, err := xp.documentRepository.GetDocuments(ctx, ids...)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	var extractionErrors []error
	for _, doc := range docs {
		if err := xp.processDocument(ctx, doc); err != nil {
			extractionErrors = append(extractionErrors, fmt.Errorf("document %d: %w", doc.Id, err))
		}
	}

	if _, err := xp.documentRepository.UpdateDocuments(ctx, docs...); err != nil {
		extractionErrors = append(extractionErrors, fmt.Errorf("update documents failed: %w", err))
	} else {
		xp.lastID = docs[len(docs)-1].Id
	}

	if len(extractionErrors) > 0 {
		return errors.Join(extractionErrors...)
	}
	return nil
}

// processDocument runs the full extraction chain for one document:
// entity extraction, ATT&CK enrichment, entity resolution in storage,
// then relationship extraction between the resolved entities.
func (xp *extractionProcessor) processDocument(ctx context.Context, doc *core.ThreatDocument) error {
	extracted, err := xp.entityExtractor.ExtractEntities(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("entity extraction failed: %w", err)
	}

	if len(extracted) == 0 {
		doc.Entities = nil
		return nil
	}

	templates := make([]*core.ThreatEntity, len(extracted))
	for i, e := range extracted {
		templates[i] = &core.ThreatEntity{
			Name:       e.Name,
			Type:       e.Type,
			Confidence: e.Confidence,
		}
	}

	if xp.enricher != nil {
		templates = xp.enricher.EnrichEntities(templates)
	}

	resolved, err := xp.getOrCreateEntities(ctx, templates)
	if err != nil {
		return fmt.Errorf("entity resolution failed: %w", err)
	}

	doc.Entities = make([]core.EntityRef, len(resolved))
	entityByTuple := make(map[string]core.ID, len(resolved))
	for i, entity := range resolved {
		doc.Entities[i] = core.EntityRef{
			EntityId:   entity.Id,
			Confidence: extracted[i].Confidence,
		}
		entityByTuple[entity.Tuple()] = entity.Id
	}

	return xp.extractRelationships(ctx, doc, extracted, entityByTuple)
}

// getOrCreateEntities resolves entity templates in storage, embedding
// their tuples so entities participate in similarity search.
func (xp *extractionProcessor) getOrCreateEntities(ctx context.Context, templates []*core.ThreatEntity) ([]*core.ThreatEntity, error) {
	tuples := make([]string, len(templates))
	for i, template := range templates {
		tuples[i] = template.Tuple()
	}

	embeddings, err := xp.embedder.EmbedTexts(ctx, tuples)
	if err != nil {
		return nil, err
	}

	result := make([]*core.ThreatEntity, 0, len(templates))
	for i, template := range templates {
		if i < len(embeddings) {
			template.Vector = NormalizeVector(embeddings[i])
		}
		entity, err := xp.entityRepository.GetOrCreateEntity(ctx, template)
		if err != nil {
			return nil, err
		}
		result = append(result, entity)
	}
	return result, nil
}

// extractRelationships extracts edges between the document's entities.
// Endpoint names are resolved against the entities found in this
// document; relations naming anything else are dropped.
func (xp *extractionProcessor) extractRelationships(
	ctx context.Context,
	doc *core.ThreatDocument,
	extracted []ai.ExtractedEntity,
	entityByTuple map[string]core.ID,
) error {
	if len(extracted) < 2 {
		return nil
	}

	relations, err := xp.relationExtractor.ExtractRelations(ctx, doc.Text, extracted)
	if err != nil {
		return fmt.Errorf("relation extraction failed: %w", err)
	}
	if len(relations) == 0 {
		return nil
	}

	rels := make([]*core.ThreatRelationship, 0, len(relations))
	for _, rel := range relations {
		sourceID, ok := entityByTuple[core.EntityTuple(rel.SourceName, rel.SourceType)]
		if !ok {
			xp.logger.Debug("skipping relation with unresolved source",
				"source", rel.SourceName, "type", rel.Type)
			continue
		}
		targetID, ok := entityByTuple[core.EntityTuple(rel.TargetName, rel.TargetType)]
		if !ok {
			xp.logger.Debug("skipping relation with unresolved target",
				"target", rel.TargetName, "type", rel.Type)
			continue
		}
		if sourceID == targetID {
			continue
		}

		rels = append(rels, &core.ThreatRelationship{
			SourceId:    sourceID,
			TargetId:    targetID,
			Type:        rel.Type,
			Confidence:  rel.Confidence,
			Description: rel.Description,
		})
	}

	if len(rels) == 0 {
		return nil
	}

	if _, err := xp.relationRepository.AddRelationships(ctx, rels...); err != nil {
		return fmt.Errorf("storing relationships failed: %w", err)
	}

	xp.logger.Debug("stored relationships", "document", doc.Id, "relationships", len(rels))
	return nil
}

// checkpoint saves the processor's progress.
func (xp *extractionProcessor) checkpoint(ctx context.Context) error {
	if xp.checkpoints == nil || xp.lastID == 0 {
		return nil
	}
	return xp.checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: extractionProcessorType,
		LastId:        xp.lastID,
	})
}
