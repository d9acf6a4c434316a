package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

// RelationRepository implements storage.RelationRepository for BadgerDB.
type RelationRepository struct {
	backend *Backend
}

var _ storage.RelationRepository = (*RelationRepository)(nil)

// NewRelationRepository creates a new RelationRepository.
func NewRelationRepository(backend *Backend) (*RelationRepository, error) {
	return &RelationRepository{
		backend: backend,
	}, nil
}

// Close releases resources. RelationRepository has no resources to release.
func (r *RelationRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *RelationRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *RelationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddRelationships adds one or more relationship edges to storage.
func (r *RelationRepository) AddRelationships(ctx context.Context, rels ...*core.ThreatRelationship) ([]*core.ThreatRelationship, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, rel := range rels {
			// Use content-based ID if not set
			if rel.Id == 0 {
				rel.Id = core.RelationshipID(rel.SourceId, rel.Type, rel.TargetId)
			}

			rel.InsertedAt = time.Now().UTC()
			rel.UpdatedAt = rel.InsertedAt

			// Store primary record
			key := makeRelationKey(rel.Id)
			value := storage.MarshalRelationship(rel)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update source and target indexes
			srcKey := makeRelationEndpointKey(relationSourcePrefix, rel.SourceId, rel.Id)
			if err := tx.Set(srcKey, storage.MarshalID(rel.Id)); err != nil {
				return err
			}
			tgtKey := makeRelationEndpointKey(relationTargetPrefix, rel.TargetId, rel.Id)
			if err := tx.Set(tgtKey, storage.MarshalID(rel.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return rels, err
}

// DeleteRelationships removes relationships by their IDs.
func (r *RelationRepository) DeleteRelationships(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRelationKey(id)

			// Read relationship to get endpoints for index cleanup
			rel, err := readRelationship(tx, key)
			if err != nil {
				return err
			}
			if rel == nil {
				return storage.ErrNotFound
			}

			// Delete from endpoint indexes
			srcKey := makeRelationEndpointKey(relationSourcePrefix, rel.SourceId, rel.Id)
			if err := tx.Delete(srcKey); err != nil {
				return err
			}
			tgtKey := makeRelationEndpointKey(relationTargetPrefix, rel.TargetId, rel.Id)
			if err := tx.Delete(tgtKey); err != nil {
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

// GetRelationship retrieves a single relationship by ID.
func (r *RelationRepository) GetRelationship(ctx context.Context, id core.ID) (*core.ThreatRelationship, error) {
	var result *core.ThreatRelationship
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRelationKey(id)
		var err error
		result, err = readRelationship(tx, key)
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

// GetRelationshipsBySource retrieves relationships originating at an entity.
func (r *RelationRepository) GetRelationshipsBySource(ctx context.Context, sourceID core.ID) ([]*core.ThreatRelationship, error) {
	return r.getByEndpoint(relationSourcePrefix, sourceID)
}

// GetRelationshipsByTarget retrieves relationships pointing at an entity.
func (r *RelationRepository) GetRelationshipsByTarget(ctx context.Context, targetID core.ID) ([]*core.ThreatRelationship, error) {
	return r.getByEndpoint(relationTargetPrefix, targetID)
}

// Neighbors retrieves the graph neighborhood of an entity.
func (r *RelationRepository) Neighbors(ctx context.Context, entityID core.ID) ([]*core.Neighbor, error) {
	outgoing, err := r.GetRelationshipsBySource(ctx, entityID)
	if err != nil {
		return nil, err
	}
	incoming, err := r.GetRelationshipsByTarget(ctx, entityID)
	if err != nil {
		return nil, err
	}

	neighbors := make([]*core.Neighbor, 0, len(outgoing)+len(incoming))
	for _, rel := range outgoing {
		neighbors = append(neighbors, &core.Neighbor{
			Relationship: rel,
			EntityId:     rel.TargetId,
			Outgoing:     true,
		})
	}
	for _, rel := range incoming {
		// Self loops already appear in the outgoing half
		if rel.SourceId == entityID && rel.TargetId == entityID {
			continue
		}
		neighbors = append(neighbors, &core.Neighbor{
			Relationship: rel,
			EntityId:     rel.SourceId,
			Outgoing:     false,
		})
	}
	return neighbors, nil
}

// Helper methods

// getByEndpoint scans an endpoint index and resolves the full relationships.
func (r *RelationRepository) getByEndpoint(prefix string, endpointID core.ID) ([]*core.ThreatRelationship, error) {
	var results []*core.ThreatRelationship
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialRelationEndpointKey(prefix, endpointID)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) {
				break
			}
			if slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			// Read the relationship ID from the value
			var relID core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				relID, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			// Look up the full relationship
			relKey := makeRelationKey(relID)
			rel, err := readRelationship(tx, relKey)
			if err != nil {
				return err
			}
			if rel != nil {
				results = append(results, rel)
			}
		}
		return nil
	}, false)

	return results, err
}

// readRelationship reads a relationship from the transaction.
func readRelationship(tx *badger.Txn, key []byte) (*core.ThreatRelationship, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var rel *core.ThreatRelationship
	err = item.Value(func(val []byte) error {
		var err error
		rel, err = storage.UnmarshalRelationship(val)
		return err
	})
	return rel, err
}
