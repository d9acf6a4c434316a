// Package search provides hybrid semantic and entity-based search over
// threat documents.
//
// The Searcher type implements a multi-stage search algorithm that combines:
//   - Semantic search using vector embeddings
//   - Entity search using deterministic pattern extraction over the query
//   - Verbatim keyword matching with stop-word filtering
//
// Search results are scored and ranked based on multiple signals to provide
// the most relevant results for a given query.
package search
