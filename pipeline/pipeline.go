package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/enrich"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ner"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

// Pipeline orchestrates the ingestion and processing of threat documents.
// It manages concurrent processing of embeddings and entity/relationship
// extraction.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	entityRepository   storage.EntityRepository
	relationRepository storage.RelationRepository
	checkpoints        storage.CheckpointRepository
	enricher           *enrich.Enricher
	embeddingPool      *ants.Pool
	extractionPool     *ants.Pool
	embeddingProc      processor
	extractionProc     processor
	minConfidence      float32
	inFlight           sync.WaitGroup
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		if p.extractionPool != nil {
			p.extractionPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		extractionPool, err := ants.NewPool(size)
		if err != nil {
			embeddingPool.Release()
			return err
		}

		p.embeddingPool = embeddingPool
		p.extractionPool = extractionPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithCheckpoints enables checkpointing of processor progress.
func WithCheckpoints(checkpoints storage.CheckpointRepository) Option {
	return func(p *Pipeline) error {
		p.checkpoints = checkpoints
		return nil
	}
}

// WithEnricher sets the ATT&CK enricher applied to extracted entities.
func WithEnricher(enricher *enrich.Enricher) Option {
	return func(p *Pipeline) error {
		p.enricher = enricher
		return nil
	}
}

// WithMinConfidence sets the confidence threshold for extracted entities.
// Default is ner.DefaultMinConfidence.
func WithMinConfidence(min float32) Option {
	return func(p *Pipeline) error {
		p.minConfidence = min
		return nil
	}
}

// NewPipeline creates a new processing pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	entityRepository storage.EntityRepository,
	relationRepository storage.RelationRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if entityRepository == nil {
		return nil, ErrEntityRepositoryRequired
	}
	if relationRepository == nil {
		return nil, ErrRelationRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	extractionPool, err := ants.NewPool(poolSize)
	if err != nil {
		embeddingPool.Release()
		return nil, err
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		entityRepository:   entityRepository,
		relationRepository: relationRepository,
		embeddingPool:      embeddingPool,
		extractionPool:     extractionPool,
		minConfidence:      ner.DefaultMinConfidence,
		logger:             slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create processors after options are applied (so they get final config)
	embeddingProc, err := newEmbeddingProcessor(documentRepository, provider.Embedder(), p.checkpoints, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	// Regex patterns catch the identifiers models routinely miss
	// (CVE IDs, hashes, technique IDs), and the model arm catches
	// everything the patterns cannot name.
	extractor := ner.NewHybridExtractor(
		ner.WithModel(provider.EntityExtractor()),
		ner.WithMinConfidence(p.minConfidence),
	)

	extractionProc, err := newExtractionProcessor(documentRepository, entityRepository, relationRepository,
		provider.Embedder(), extractor, provider.RelationExtractor(),
		p.enricher, p.checkpoints, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.embeddingProc = embeddingProc
	p.extractionProc = extractionProc

	return p, nil
}

// Ingest stores documents and submits them for asynchronous processing.
// Documents failing validation abort the whole batch before anything is
// stored. Errors during async processing are logged but do not fail the
// ingestion; use Wait to block until processing drains.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.ThreatDocument) error {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return err
		}
	}

	added, err := p.documentRepository.AddDocuments(ctx, docs...)
	if err != nil {
		return err
	}

	if len(added) == 0 {
		return nil
	}

	ids := make([]core.ID, len(added))
	for i, doc := range added {
		ids[i] = doc.Id
	}

	// Extraction is chained after embedding for the same batch. Both
	// processors rewrite the documents, so running them concurrently
	// would lose one side's update.
	p.inFlight.Add(1)
	err = p.embeddingPool.Submit(func() {
		defer p.inFlight.Done()
		p.runProcessor(p.embeddingProc, ids)
		p.submit(p.extractionPool, p.extractionProc, ids)
	})
	if err != nil {
		p.inFlight.Done()
		p.logger.Error("error submitting work to pool", "err", err)
	}

	return nil
}

// submit queues one processor run over ids on the given pool.
func (p *Pipeline) submit(pool *ants.Pool, proc processor, ids []core.ID) {
	p.inFlight.Add(1)
	err := pool.Submit(func() {
		defer p.inFlight.Done()
		p.runProcessor(proc, ids)
	})
	if err != nil {
		p.inFlight.Done()
		p.logger.Error("error submitting work to pool", "err", err)
	}
}

// runProcessor executes one processor over ids, logging failures.
// A processing failure still leaves earlier processors' work intact.
func (p *Pipeline) runProcessor(proc processor, ids []core.ID) {
	if err := proc.process(context.Background(), ids...); err != nil {
		p.logger.Error("error processing documents", "err", err)
		return
	}
	if err := proc.checkpoint(context.Background()); err != nil {
		p.logger.Error("error applying checkpoint", "err", err)
	}
}

// Wait blocks until all submitted processing has completed.
func (p *Pipeline) Wait() {
	p.inFlight.Wait()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
	if p.extractionPool != nil {
		p.extractionPool.Release()
	}
}
