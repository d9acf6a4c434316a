package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

// Config holds configuration for a reembedding operation.
type Config struct {
	// BatchSize is the number of items to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of items)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder orchestrates the reembedding of all threat documents in a database.
type Reembedder struct {
	repo      storage.DocumentRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *DocumentIterator
}

// NewReembedder creates a new document reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.DocumentRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewDocumentIterator(repo, config.BatchSize)

	return &Reembedder{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the reembedding operation. Every threat document in the
// database is reembedded with the configured embedder. Progress is
// reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	total, err := r.repo.CountDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No documents found in database (0 documents)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(docs []*core.ThreatDocument) error {
		if err := r.processor.Process(ctx, docs); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(docs)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d documents in %v (%.1f documents/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

// EntityReembedder orchestrates the reembedding of all threat entities in a database.
type EntityReembedder struct {
	repo      storage.EntityRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *EntityBatchProcessor
	iterator  *EntityIterator
}

// NewEntityReembedder creates a new entity reembedder.
func NewEntityReembedder(repo storage.EntityRepository, embedder ai.Embedder, config *Config, progress io.Writer) *EntityReembedder {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewEntityBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewEntityIterator(repo, config.BatchSize)

	return &EntityReembedder{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the entity reembedding operation.
func (r *EntityReembedder) Run(ctx context.Context) error {
	entities, err := r.repo.GetAllEntities(ctx)
	if err != nil {
		return fmt.Errorf("failed to count entities: %w", err)
	}

	total := len(entities)
	if total == 0 {
		fmt.Fprintf(r.progress, "No entities found in database (0 entities)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d entities (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(batch []*core.ThreatEntity) error {
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(batch)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d entities in %v (%.1f entities/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
