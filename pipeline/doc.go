// Package pipeline orchestrates the ingestion and processing of threat
// documents. It manages concurrent processing of embeddings, entity
// extraction, MITRE ATT&CK enrichment and relationship extraction.
//
// Documents entering the pipeline are stored immediately; the expensive
// model work runs asynchronously on worker pools so that ingestion
// stays responsive. Wait blocks until all submitted work has drained,
// which batch tools use before exiting.
//
// Processing progress is checkpointed per processor when a checkpoint
// repository is configured, so an interrupted run can be inspected and
// resumed.
package pipeline
