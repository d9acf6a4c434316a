package ingest

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

const (
	// MaxChunkTextLength caps characters per chunk to prevent memory overload.
	MaxChunkTextLength = 2048

	// MinTextLength is the minimum characters to treat a chunk as valid.
	MinTextLength = 10
)

// Chunk is one entry of a chunked threat data file.
type Chunk struct {
	RecordID   int64  `json:"record_id"`
	ChunkIndex int    `json:"chunk_index"`
	Source     string `json:"source"`
	Type       string `json:"type"`
	Indicator  string `json:"indicator"`
	Date       string `json:"date"`
	Text       string `json:"text"`
}

// Stats summarizes a load.
type Stats struct {
	TotalChunks   int
	ValidChunks   int
	SkippedChunks int
	Documents     int
}

// ChunkedLoader reconstructs full threat documents from chunked JSON files.
// Files with a .gz suffix are transparently decompressed.
type ChunkedLoader struct {
	filePath  string
	isGzipped bool
	logger    *slog.Logger
}

// NewChunkedLoader creates a loader for the given file path.
// Returns an error if the file does not exist.
func NewChunkedLoader(filePath string) (*ChunkedLoader, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("chunk file %s: %w", filePath, err)
	}
	return &ChunkedLoader{
		filePath:  filePath,
		isGzipped: strings.HasSuffix(filePath, ".gz"),
		logger:    slog.Default().With("component", "chunked-loader"),
	}, nil
}

// recordEntry accumulates chunks for one record during a load.
type recordEntry struct {
	recordID  int64
	source    string
	indType   string
	indicator string
	date      string
	chunks    []indexedChunk
}

type indexedChunk struct {
	index int
	text  string
}

// Load streams the chunk file and reconstructs full documents.
// Chunks are grouped by record_id, sorted by chunk_index, and joined with a
// single space. Returns the documents in first-seen record order along with
// load statistics.
func (l *ChunkedLoader) Load() ([]*core.ThreatDocument, *Stats, error) {
	f, err := os.Open(l.filePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if l.isGzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip %s: %w", l.filePath, err)
		}
		defer gz.Close()
		reader = gz
	}

	l.logger.Info("loading chunks", "path", l.filePath)

	stats := &Stats{}
	records := make(map[int64]*recordEntry)
	var order []int64

	// Stream the top-level array one chunk at a time
	dec := json.NewDecoder(reader)
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", l.filePath, err)
	}
	for dec.More() {
		// Every streamed chunk counts toward the total, malformed ones included
		stats.TotalChunks++

		var chunk Chunk
		if err := dec.Decode(&chunk); err != nil {
			l.logger.Error("skipping malformed chunk", "err", err)
			stats.SkippedChunks++
			// A decode error mid-stream is not recoverable
			if _, ok := err.(*json.SyntaxError); ok {
				return nil, nil, fmt.Errorf("parse %s: %w", l.filePath, err)
			}
			continue
		}

		if len(chunk.Text) < MinTextLength {
			l.logger.Warn("chunk text too short or missing, skipping",
				"record_id", chunk.RecordID, "chunk", chunk.ChunkIndex)
			stats.SkippedChunks++
			continue
		}
		if len(chunk.Text) > MaxChunkTextLength {
			l.logger.Warn("chunk text too long, skipping",
				"record_id", chunk.RecordID, "chunk", chunk.ChunkIndex, "length", len(chunk.Text))
			stats.SkippedChunks++
			continue
		}

		entry, ok := records[chunk.RecordID]
		if !ok {
			entry = &recordEntry{
				recordID:  chunk.RecordID,
				source:    chunk.Source,
				indType:   chunk.Type,
				indicator: chunk.Indicator,
				date:      chunk.Date,
			}
			records[chunk.RecordID] = entry
			order = append(order, chunk.RecordID)
		} else if entry.source != chunk.Source || entry.indType != chunk.Type ||
			entry.indicator != chunk.Indicator || entry.date != chunk.Date {
			l.logger.Warn("inconsistent metadata in record",
				"record_id", chunk.RecordID, "chunk", chunk.ChunkIndex)
		}

		entry.chunks = append(entry.chunks, indexedChunk{index: chunk.ChunkIndex, text: chunk.Text})
		stats.ValidChunks++
	}

	l.logger.Info("processed chunks",
		"total", stats.TotalChunks,
		"valid", stats.ValidChunks,
		"skipped", stats.SkippedChunks)

	// Reconstruct documents by sorting and joining text chunks
	documents := make([]*core.ThreatDocument, 0, len(order))
	for _, recordID := range order {
		entry := records[recordID]
		slices.SortFunc(entry.chunks, func(a, b indexedChunk) int {
			return a.index - b.index
		})

		texts := make([]string, len(entry.chunks))
		for i, c := range entry.chunks {
			texts[i] = c.text
		}

		documents = append(documents, &core.ThreatDocument{
			Id:            core.DocumentID(entry.source, entry.recordID),
			Source:        entry.source,
			IndicatorType: entry.indType,
			Indicator:     entry.indicator,
			Date:          entry.date,
			Text:          strings.TrimSpace(strings.Join(texts, " ")),
		})
	}
	stats.Documents = len(documents)

	l.logger.Info("reconstructed documents", "count", stats.Documents)
	return documents, stats, nil
}

// LoadFile is a convenience wrapper that creates a loader and loads the file.
func LoadFile(filePath string) ([]*core.ThreatDocument, *Stats, error) {
	loader, err := NewChunkedLoader(filePath)
	if err != nil {
		return nil, nil, err
	}
	return loader.Load()
}
