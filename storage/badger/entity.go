package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

// EntityRepository implements storage.EntityRepository for BadgerDB.
type EntityRepository struct {
	backend *Backend
}

var _ storage.EntityRepository = (*EntityRepository)(nil)

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(backend *Backend) (*EntityRepository, error) {
	return &EntityRepository{
		backend: backend,
	}, nil
}

// Close releases resources. EntityRepository has no resources to release.
func (r *EntityRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *EntityRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *EntityRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEntities adds one or more entities to storage.
func (r *EntityRepository) AddEntities(ctx context.Context, entities ...*core.ThreatEntity) ([]*core.ThreatEntity, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entity := range entities {
			// Use content-based ID if not set
			if entity.Id == 0 {
				entity.Id = core.IDFromContent(entity.Tuple())
			}

			entity.InsertedAt = time.Now().UTC()
			entity.UpdatedAt = entity.InsertedAt

			// Store primary record
			key := makeEntityKey(entity.Id)
			value := storage.MarshalEntity(entity)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Store tuple index
			tupleKey := makeEntityTupleKey(entity.Name, entity.Type)
			if err := tx.Set(tupleKey, storage.MarshalID(entity.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entities, err
}

// UpdateEntities updates existing entities.
func (r *EntityRepository) UpdateEntities(ctx context.Context, entities ...*core.ThreatEntity) ([]*core.ThreatEntity, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entity := range entities {
			key := makeEntityKey(entity.Id)

			// Read old entity to detect changes
			old, err := readEntity(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			entity.UpdatedAt = time.Now().UTC()

			// Store updated record
			value := storage.MarshalEntity(entity)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update tuple index if name or type changed
			if old.Tuple() != entity.Tuple() {
				oldTupleKey := makeEntityTupleKey(old.Name, old.Type)
				if err := tx.Delete(oldTupleKey); err != nil {
					return err
				}
				newTupleKey := makeEntityTupleKey(entity.Name, entity.Type)
				if err := tx.Set(newTupleKey, storage.MarshalID(entity.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return entities, err
}

// DeleteEntities removes entities by their IDs.
func (r *EntityRepository) DeleteEntities(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeEntityKey(id)

			// Read entity to get metadata for index cleanup
			entity, err := readEntity(tx, key)
			if err != nil {
				return err
			}
			if entity == nil {
				return storage.ErrNotFound
			}

			// Delete from tuple index
			tupleKey := makeEntityTupleKey(entity.Name, entity.Type)
			if err := tx.Delete(tupleKey); err != nil {
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

// GetEntity retrieves a single entity by ID.
func (r *EntityRepository) GetEntity(ctx context.Context, id core.ID) (*core.ThreatEntity, error) {
	var result *core.ThreatEntity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEntityKey(id)
		var err error
		result, err = readEntity(tx, key)
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

// GetEntities retrieves multiple entities by their IDs.
func (r *EntityRepository) GetEntities(ctx context.Context, ids ...core.ID) ([]*core.ThreatEntity, error) {
	var result []*core.ThreatEntity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeEntityKey(id)
			entity, err := readEntity(tx, key)
			if err != nil {
				return err
			}
			if entity != nil {
				result = append(result, entity)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindEntityByNameAndType finds an entity by its name and type tuple.
func (r *EntityRepository) FindEntityByNameAndType(ctx context.Context, name string, entityType core.EntityType) (*core.ThreatEntity, error) {
	var result *core.ThreatEntity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Look up ID from tuple index
		tupleKey := makeEntityTupleKey(name, entityType)
		item, err := tx.Get(tupleKey)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var entityID core.ID
		err = item.Value(func(val []byte) error {
			entityID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		// Look up full entity
		entityKey := makeEntityKey(entityID)
		result, err = readEntity(tx, entityKey)
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

// GetOrCreateEntity finds or creates an entity from the given template.
// Enrichment fields present on the template but missing on the stored
// entity are merged in.
func (r *EntityRepository) GetOrCreateEntity(ctx context.Context, entity *core.ThreatEntity) (*core.ThreatEntity, error) {
	// Try to find existing entity
	existing, err := r.FindEntityByNameAndType(ctx, entity.Name, entity.Type)
	if err == nil {
		if mergeEntity(existing, entity) {
			if _, err := r.UpdateEntities(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	// Create new entity
	added, err := r.AddEntities(ctx, entity)
	if err != nil {
		// If add failed, try to find it again (someone else may have created it)
		existing, findErr := r.FindEntityByNameAndType(ctx, entity.Name, entity.Type)
		if findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	return added[0], nil
}

// GetAllEntities retrieves all entities from storage.
func (r *EntityRepository) GetAllEntities(ctx context.Context) ([]*core.ThreatEntity, error) {
	var results []*core.ThreatEntity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(entityPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			key := item.Key()

			// Stop if we've moved past entity keys
			if !hasPrefix(key, prefix) {
				break
			}

			var entity *core.ThreatEntity
			err := item.Value(func(val []byte) error {
				var err error
				entity, err = storage.UnmarshalEntity(val)
				return err
			})
			if err != nil {
				return err
			}

			if entity != nil {
				results = append(results, entity)
			}
		}
		return nil
	}, false)

	return results, err
}

// Helper methods

// hasPrefix checks if a byte slice has a given prefix
func hasPrefix(s, prefix []byte) bool {
	return len(s) >= len(prefix) && string(s[:len(prefix)]) == string(prefix)
}

// mergeEntity copies enrichment fields from src onto dst where dst is
// missing them. Returns true if dst changed.
func mergeEntity(dst, src *core.ThreatEntity) bool {
	changed := false
	if dst.Description == "" && src.Description != "" {
		dst.Description = src.Description
		changed = true
	}
	if dst.MitreID == "" && src.MitreID != "" {
		dst.MitreID = src.MitreID
		changed = true
	}
	if len(dst.Aliases) == 0 && len(src.Aliases) > 0 {
		dst.Aliases = src.Aliases
		changed = true
	}
	if len(dst.References) == 0 && len(src.References) > 0 {
		dst.References = src.References
		changed = true
	}
	if len(dst.Vector) == 0 && len(src.Vector) > 0 {
		dst.Vector = src.Vector
		changed = true
	}
	if src.Confidence > dst.Confidence {
		dst.Confidence = src.Confidence
		changed = true
	}
	return changed
}

// readEntity reads a threat entity from the transaction.
func readEntity(tx *badger.Txn, key []byte) (*core.ThreatEntity, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entity *core.ThreatEntity
	err = item.Value(func(val []byte) error {
		var err error
		entity, err = storage.UnmarshalEntity(val)
		return err
	})
	return entity, err
}
