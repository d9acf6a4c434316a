// Package ai provides abstractions for the AI services used in the
// threat intelligence pipeline.
//
// This package defines interfaces for text embeddings, named entity
// extraction, and relationship extraction. The core domain and pipeline
// logic depend on these abstractions rather than concrete
// implementations.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockEntityExtractor,
// mock.NewMockRelationExtractor) return CONCRETE types to enable test
// assertions and behavior injection via the mock's public fields and methods
// (CallCount, *Func, Reset).
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "APT28 deploys X-Agent")
//	entities, err := provider.EntityExtractor().ExtractEntities(ctx, report)
package ai
