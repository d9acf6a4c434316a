package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	return &DocumentRepository{
		backend: backend,
	}, nil
}

// Close releases resources. DocumentRepository has no resources to release.
func (r *DocumentRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *DocumentRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocuments adds one or more threat documents to storage.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.ThreatDocument) ([]*core.ThreatDocument, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			// Content-based ID keeps re-ingestion of the same feed idempotent
			if doc.Id == 0 {
				doc.Id = core.IDFromContent(doc.Source + ":" + doc.Indicator + ":" + doc.Text)
			}

			key := makeDocumentKey(doc.Id)

			// A record may already exist when the same feed is ingested
			// again. Keep the original insertion time so the date index
			// stays a single entry per document.
			old, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if old != nil {
				doc.InsertedAt = old.InsertedAt
			} else {
				doc.InsertedAt = now
			}
			doc.UpdatedAt = now

			// Store primary record
			value := storage.MarshalDocument(doc)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update date index
			dateKey := makeDocumentDateKey(doc.InsertedAt, doc.Id)
			if err := tx.Set(dateKey, storage.MarshalID(doc.Id)); err != nil {
				return err
			}

			// Update entity index, clearing stale refs on re-ingest
			if old != nil && !entityRefsEqual(old.Entities, doc.Entities) {
				if err := r.deleteEntityIndex(tx, old); err != nil {
					return err
				}
			}
			if err := r.updateEntityIndex(tx, doc); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// UpdateDocuments updates existing threat documents.
func (r *DocumentRepository) UpdateDocuments(ctx context.Context, docs ...*core.ThreatDocument) ([]*core.ThreatDocument, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			key := makeDocumentKey(doc.Id)

			// Read old document to detect changes
			old, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// The date index tracks insertion time, which never changes
			doc.InsertedAt = old.InsertedAt
			doc.UpdatedAt = time.Now().UTC()

			// Store updated record
			value := storage.MarshalDocument(doc)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update entity index if entity refs changed
			if !entityRefsEqual(old.Entities, doc.Entities) {
				if err := r.deleteEntityIndex(tx, old); err != nil {
					return err
				}
				if err := r.updateEntityIndex(tx, doc); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// DeleteDocuments removes documents by their IDs.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)

			// Read document to get metadata for index cleanup
			doc, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}

			// Delete from date index
			dateKey := makeDocumentDateKey(doc.InsertedAt, doc.Id)
			if err := tx.Delete(dateKey); err != nil {
				return err
			}

			// Delete from entity index
			if err := r.deleteEntityIndex(tx, doc); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.ThreatDocument, error) {
	var result *core.ThreatDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		var err error
		result, err = r.readDocument(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.ThreatDocument, error) {
	var result []*core.ThreatDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)
			doc, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetDocumentsByDateRange retrieves documents ingested within a time range.
func (r *DocumentRepository) GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.ThreatDocument, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.ThreatDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialDocumentDateKey(start)
		endKey := makePartialDocumentDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			// Read the ID from the index
			var docID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				docID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full document
			docKey := makeDocumentKey(docID)
			doc, err := r.readDocument(tx, docKey)
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecentDocuments retrieves the N most recently ingested documents, newest first.
func (r *DocumentRepository) GetRecentDocuments(ctx context.Context, limit int) ([]*core.ThreatDocument, error) {
	var results []*core.ThreatDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent documents first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key in the date index
		startKey := makePartialDocumentDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))

		prefix := []byte(documentDatePrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()

			// Check if we're still in the date index
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			// Read the ID from the index
			var docID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				docID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full document
			docKey := makeDocumentKey(docID)
			doc, err := r.readDocument(tx, docKey)
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// GetDocumentsByEntity retrieves IDs of documents that reference an entity.
func (r *DocumentRepository) GetDocumentsByEntity(ctx context.Context, entityID core.ID) ([]core.ID, error) {
	var docIDs []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialDocumentEntityKey(entityID)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			// Check if key still has our entityID prefix
			if len(key) < len(startKey) {
				break
			}
			if slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			// Read the document ID from the value
			var docID core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				docID, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}
			docIDs = append(docIDs, docID)
		}
		return nil
	}, false)

	return docIDs, err
}

// CountDocuments returns the number of stored documents.
func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(documentDatePrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !hasPrefix(key, prefix) {
				break
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// Helper methods

// readDocument reads a threat document from the transaction.
func (r *DocumentRepository) readDocument(tx *badger.Txn, key []byte) (*core.ThreatDocument, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.ThreatDocument
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// updateEntityIndex adds entity index entries for a document.
func (r *DocumentRepository) updateEntityIndex(tx *badger.Txn, doc *core.ThreatDocument) error {
	if len(doc.Entities) == 0 {
		return nil
	}
	for _, ref := range doc.Entities {
		key := makeDocumentEntityKey(ref.EntityId, doc.Id)
		value := storage.MarshalID(doc.Id)
		if err := tx.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// deleteEntityIndex removes entity index entries for a document.
func (r *DocumentRepository) deleteEntityIndex(tx *badger.Txn, doc *core.ThreatDocument) error {
	if len(doc.Entities) == 0 {
		return nil
	}
	for _, ref := range doc.Entities {
		key := makeDocumentEntityKey(ref.EntityId, doc.Id)
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// entityRefsEqual compares two entity ref slices for equality.
func entityRefsEqual(a, b []core.EntityRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].EntityId != b[i].EntityId || a[i].Confidence != b[i].Confidence {
			return false
		}
	}
	return true
}
