// Package ingest loads chunked threat intelligence dumps from disk.
//
// Feed exports arrive as large JSON arrays of text chunks, optionally
// gzipped. Each chunk carries a record_id, a chunk_index, and a slice of the
// record's text plus the record's metadata. The loader streams the array
// without holding it in memory, groups chunks by record, sorts them by index,
// and joins them back into full documents. Malformed or out-of-bounds chunks
// are skipped and counted rather than failing the load.
package ingest
