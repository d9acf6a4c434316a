package enrich

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

const (
	lookupCacheCounters = 10000
	lookupCacheEntries  = 1000
	lookupCacheTTL      = time.Hour
)

// enrichableTypes lists the entity types that can carry ATT&CK context.
// Indicators, locations and the like have no counterpart in the bundle.
var enrichableTypes = map[core.EntityType]bool{
	core.EntityTypeMitreTechnique: true,
	core.EntityTypeMitreTactic:    true,
	core.EntityTypeThreatActor:    true,
	core.EntityTypeMalware:        true,
	core.EntityTypeTool:           true,
}

// Enricher fills in ATT&CK metadata on extracted threat entities from a
// locally cached STIX bundle. It is safe for concurrent use.
type Enricher struct {
	mu        sync.RWMutex
	bundle    *Bundle
	cachePath string
	lookups   *ristretto.Cache[string, *Object]
	logger    *slog.Logger
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithCachePath sets the local JSON file the bundle is loaded from and
// saved to on refresh.
func WithCachePath(path string) EnricherOption {
	return func(e *Enricher) {
		e.cachePath = path
	}
}

// WithBundle installs an already loaded bundle, bypassing the cache file.
func WithBundle(bundle *Bundle) EnricherOption {
	return func(e *Enricher) {
		e.bundle = bundle
	}
}

// WithLogger sets the logger used for enrichment warnings.
func WithLogger(logger *slog.Logger) EnricherOption {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// NewEnricher creates an Enricher. When a cache path is configured and no
// bundle was supplied directly, the bundle is loaded from that file; a
// missing or unreadable file is logged and leaves the enricher in
// pass-through mode rather than failing construction.
func NewEnricher(opts ...EnricherOption) (*Enricher, error) {
	e := &Enricher{
		logger: slog.Default().With("component", "enrich"),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.bundle == nil && e.cachePath != "" {
		bundle, err := LoadBundle(e.cachePath)
		if err != nil {
			e.logger.Warn("failed to load ATT&CK bundle cache, enrichment disabled",
				"path", e.cachePath, "error", err)
		} else {
			e.bundle = bundle
			e.logger.Info("loaded ATT&CK bundle cache",
				"path", e.cachePath, "objects", len(bundle.Objects))
		}
	}

	lookups, err := ristretto.NewCache(&ristretto.Config[string, *Object]{
		NumCounters: lookupCacheCounters,
		MaxCost:     lookupCacheEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	e.lookups = lookups

	return e, nil
}

// Ready reports whether a bundle is loaded. When false, EnrichEntities
// passes entities through unchanged.
func (e *Enricher) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bundle != nil
}

// Close releases the lookup cache.
func (e *Enricher) Close() error {
	e.lookups.Close()
	return nil
}

// EnrichEntities fills MitreID, Description, Aliases and References on
// entities that match an ATT&CK object. Entities are matched by
// upper-cased name against ATT&CK external IDs first and object names
// second. The input slice is returned to allow chaining.
func (e *Enricher) EnrichEntities(entities []*core.ThreatEntity) []*core.ThreatEntity {
	if !e.Ready() {
		e.logger.Warn("ATT&CK enrichment skipped, no local bundle cache")
		return entities
	}

	enriched := 0
	for _, entity := range entities {
		if entity == nil || !enrichableTypes[entity.Type] {
			continue
		}
		obj := e.lookup(entity.Name)
		if obj == nil {
			continue
		}
		if id := obj.AttackID(); id != "" {
			entity.MitreID = id
		}
		if entity.Description == "" {
			entity.Description = obj.Description
		}
		if len(entity.Aliases) == 0 {
			entity.Aliases = obj.Aliases
		}
		if len(entity.References) == 0 {
			entity.References = obj.ReferenceURLs()
		}
		enriched++
	}

	if enriched > 0 {
		e.logger.Debug("enriched entities with ATT&CK context", "count", enriched, "total", len(entities))
	}
	return entities
}

// Refresh downloads a fresh bundle, persists it to the cache path when
// one is configured, and swaps it in. The lookup cache is cleared so
// stale matches are not served against the new bundle.
func (e *Enricher) Refresh(ctx context.Context, client *http.Client, url string) error {
	bundle, err := FetchBundle(ctx, client, url)
	if err != nil {
		return err
	}

	if e.cachePath != "" {
		if err := SaveBundle(e.cachePath, bundle); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.bundle = bundle
	e.mu.Unlock()
	e.lookups.Clear()

	e.logger.Info("refreshed ATT&CK bundle", "objects", len(bundle.Objects))
	return nil
}

// lookup finds the active ATT&CK object matching name. Results,
// including misses, are cached with a TTL so repeated batches do not
// rescan the bundle.
func (e *Enricher) lookup(name string) *Object {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return nil
	}

	if obj, found := e.lookups.Get(key); found {
		return obj
	}

	e.mu.RLock()
	bundle := e.bundle
	e.mu.RUnlock()
	if bundle == nil {
		return nil
	}

	var nameMatch *Object
	var match *Object
	for i := range bundle.Objects {
		obj := &bundle.Objects[i]
		if !obj.Active() {
			continue
		}
		if strings.ToUpper(obj.AttackID()) == key {
			match = obj
			break
		}
		if nameMatch == nil && strings.ToUpper(obj.Name) == key {
			nameMatch = obj
		}
	}
	if match == nil {
		match = nameMatch
	}

	e.lookups.SetWithTTL(key, match, 1, lookupCacheTTL)
	return match
}
