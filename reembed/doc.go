// Package reembed provides maintenance operations for regenerating the
// vector embeddings of stored threat documents and entities, typically
// after switching to a new embedding model.
//
// The package supports batch processing, progress tracking, and retry
// logic with exponential backoff. Vectors are normalized after embedding
// so that similarity search can keep using a plain dot product.
package reembed
