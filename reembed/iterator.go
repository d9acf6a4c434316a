package reembed

import (
	"context"
	"time"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

const (
	// DefaultBatchSize is the default number of items to process in each batch
	DefaultBatchSize = 100
)

// allTimeRange returns a date range wide enough to cover every stored document.
func allTimeRange() (time.Time, time.Time) {
	start := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)
	return start, end
}

// DocumentIterator iterates over all threat documents in batches.
type DocumentIterator struct {
	repo      storage.DocumentRepository
	batchSize int
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of documents to process in each batch (must be > 0)
func NewDocumentIterator(repo storage.DocumentRepository, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &DocumentIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all threat documents, calling fn for each batch.
// Iteration stops on first error from fn or when all documents are processed.
// Context cancellation is checked between batches.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.ThreatDocument) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start, end := allTimeRange()
	docs, err := it.repo.GetDocumentsByDateRange(ctx, start, end)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		return nil
	}

	for i := 0; i < len(docs); i += it.batchSize {
		stop := i + it.batchSize
		if stop > len(docs) {
			stop = len(docs)
		}

		if err := fn(docs[i:stop]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}

// EntityIterator iterates over all threat entities in batches.
type EntityIterator struct {
	repo      storage.EntityRepository
	batchSize int
}

// NewEntityIterator creates a new entity iterator.
func NewEntityIterator(repo storage.EntityRepository, batchSize int) *EntityIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &EntityIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all threat entities, calling fn for each batch.
func (it *EntityIterator) ForEach(ctx context.Context, fn func([]*core.ThreatEntity) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entities, err := it.repo.GetAllEntities(ctx)
	if err != nil {
		return err
	}

	if len(entities) == 0 {
		return nil
	}

	for i := 0; i < len(entities); i += it.batchSize {
		stop := i + it.batchSize
		if stop > len(entities) {
			stop = len(entities)
		}

		if err := fn(entities[i:stop]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
