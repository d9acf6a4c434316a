package pipeline

import (
	"context"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// Processor type names stored with checkpoints.
const (
	embeddingProcessorType  = "embeddings"
	extractionProcessorType = "extraction"
)

// processor is an internal interface for processing threat documents.
// Implementations handle specific enrichment tasks like embeddings or
// entity and relationship extraction.
type processor interface {
	// process enriches the threat documents identified by the given IDs.
	process(ctx context.Context, ids ...core.ID) error

	// checkpoint persists the processor's progress. A no-op when no
	// checkpoint repository is configured.
	checkpoint(ctx context.Context) error
}
