package search

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sort"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ner"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

// minQuerySimilarity is the semantic match threshold for query vectors.
const minQuerySimilarity = 0.60

// Searcher provides hybrid semantic and entity-based search over threat
// documents.
type Searcher struct {
	documentRepository storage.DocumentRepository
	entityRepository   storage.EntityRepository
	embedder           ai.Embedder
	extractor          ai.EntityExtractor
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithEntityExtractor replaces the extractor used for the query's entity
// arm. The default is pattern-based extraction, which is deterministic
// and adds no model latency to interactive searches.
func WithEntityExtractor(extractor ai.EntityExtractor) Option {
	return func(s *Searcher) error {
		if extractor != nil {
			s.extractor = extractor
		}
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	documentRepository storage.DocumentRepository,
	entityRepository storage.EntityRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if entityRepository == nil {
		return nil, ErrEntityRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		documentRepository: documentRepository,
		entityRepository:   entityRepository,
		embedder:           provider.Embedder(),
		extractor:          ner.NewRegexExtractor(),
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for threat documents relevant to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches for threat documents relevant to the query
// with monitoring. The monitor receives callbacks at each stage of the
// search process. Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	// 1. Perform semantic search
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.documentRepository.FindSimilar(ctx, embedding, minQuerySimilarity, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar documents", "err", err)
		return nil, err
	}

	// Track semantic results
	semanticSet := make(map[uint64]bool)
	semanticScores := make(map[uint64]float32)
	semanticIds := make([]uint64, 0, len(matches))
	for _, match := range matches {
		semanticSet[uint64(match.Document.Id)] = true
		semanticScores[uint64(match.Document.Id)] = match.Score
		semanticIds = append(semanticIds, uint64(match.Document.Id))
	}
	monitor.AfterSemanticSearch(semanticIds)

	// 2. Extract entities mentioned in the query
	extracted, err := s.extractor.ExtractEntities(ctx, query)
	if err != nil {
		s.logger.Error("error extracting entities from query", "err", err)
		return nil, err
	}

	// Resolve extracted mentions against the entity index
	queryEntities := make([]*core.ThreatEntity, 0, len(extracted))
	for _, ee := range extracted {
		entity, err := s.entityRepository.FindEntityByNameAndType(ctx, ee.Name, ee.Type)
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("query entity not in database", "tuple", core.EntityTuple(ee.Name, ee.Type))
			continue
		}
		if err != nil {
			s.logger.Warn("error looking up query entity", "tuple", core.EntityTuple(ee.Name, ee.Type), "err", err)
			continue
		}
		queryEntities = append(queryEntities, entity)
	}
	monitor.AfterQueryEntityExtraction(queryEntities)

	// 3. Find documents via exact entity matching
	entitySet := make(map[uint64]bool)
	for _, entity := range queryEntities {
		monitor.FoundRelatedEntities(entity.Tuple(), []uint64{uint64(entity.Id)})

		docIds, err := s.documentRepository.GetDocumentsByEntity(ctx, entity.Id)
		if err != nil {
			s.logger.Warn("failed to get documents for entity", "entityID", entity.Id, "err", err)
			continue
		}
		for _, docId := range docIds {
			entitySet[uint64(docId)] = true
		}
	}
	monitor.AfterEntityRelatedSearch(maps.Keys(entitySet))

	// 4. Combine and score results
	allIds := make(map[uint64]bool)
	for id := range semanticSet {
		allIds[id] = true
	}
	for id := range entitySet {
		allIds[id] = true
	}

	if len(allIds) == 0 {
		return []*core.SearchResult{}, nil
	}

	uniqueIds := make([]core.ID, 0, len(allIds))
	for id := range allIds {
		uniqueIds = append(uniqueIds, core.ID(id))
	}

	docs, err := s.documentRepository.GetDocuments(ctx, uniqueIds...)
	if err != nil {
		s.logger.Error("error retrieving documents", "documentCount", len(uniqueIds), "err", err)
		return nil, err
	}
	monitor.AfterDocumentRetrieval(docs)

	// Score and build results
	results := make([]*core.SearchResult, 0, len(docs))

	for _, doc := range docs {
		if doc == nil {
			continue
		}

		inSemantic := semanticSet[uint64(doc.Id)]
		inEntity := entitySet[uint64(doc.Id)]

		var score float32
		if inSemantic && inEntity {
			// In both: boost by 1.5x, weighted by similarity score
			similarityScore := semanticScores[uint64(doc.Id)]
			score = 1.5 * similarityScore
			monitor.SemanticAndEntityHit(doc)
		} else if inEntity {
			// Entity only: 1.2
			score = 1.2
			monitor.EntityHit(doc)
		} else {
			// Semantic only: 1.0, weighted by similarity score
			similarityScore := semanticScores[uint64(doc.Id)]
			score = 1.0 * similarityScore
			monitor.SemanticHit(doc)
		}

		// Apply verbatim match boost
		if containsAllQueryWords(doc.Text, query) {
			score += 0.3
		}

		results = append(results, &core.SearchResult{
			Document: doc,
			Score:    score,
		})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
