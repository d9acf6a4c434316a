package threatdash

import (
	"log/slog"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai/openai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/enrich"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/pipeline"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/search"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage/badger"
)

// Dashboard bundles the storage backend, repositories, AI provider and
// ATT&CK enricher behind a single handle. It is the entry point for
// embedding the threat dashboard in a host application.
type Dashboard struct {
	backend        *badger.Backend
	documentRepo   storage.DocumentRepository
	entityRepo     storage.EntityRepository
	relationRepo   storage.RelationRepository
	checkpointRepo storage.CheckpointRepository
	provider       ai.AIProvider
	enricher       *enrich.Enricher
	logger         *slog.Logger
}

// DashboardOption configures a Dashboard.
type DashboardOption func(*dashboardOptions)

type dashboardOptions struct {
	aiConfig        *ai.Config
	provider        ai.AIProvider
	attackCachePath string
}

// WithAIConfig sets the configuration used to build the AI provider.
func WithAIConfig(config *ai.Config) DashboardOption {
	return func(o *dashboardOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider supplies a pre-built AI provider, bypassing the
// OpenAI-compatible default.
func WithAIProvider(provider ai.AIProvider) DashboardOption {
	return func(o *dashboardOptions) {
		o.provider = provider
	}
}

// WithAttackCachePath sets the path of the local MITRE ATT&CK bundle
// cache. When the file is absent enrichment degrades to a pass-through.
func WithAttackCachePath(path string) DashboardOption {
	return func(o *dashboardOptions) {
		o.attackCachePath = path
	}
}

func NewDashboard(filePath string, opts ...DashboardOption) (*Dashboard, error) {
	options := &dashboardOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	entityRepo, err := badger.NewEntityRepository(backend)
	if err != nil {
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	relationRepo, err := badger.NewRelationRepository(backend)
	if err != nil {
		entityRepo.Close()
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	checkpointRepo := badger.NewCheckpointRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			relationRepo.Close()
			entityRepo.Close()
			documentRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	enricher, err := enrich.NewEnricher(enrich.WithCachePath(options.attackCachePath))
	if err != nil {
		provider.Close()
		relationRepo.Close()
		entityRepo.Close()
		documentRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Dashboard{
		backend:        backend,
		documentRepo:   documentRepo,
		entityRepo:     entityRepo,
		relationRepo:   relationRepo,
		checkpointRepo: checkpointRepo,
		provider:       provider,
		enricher:       enricher,
		logger:         slog.Default(),
	}, nil
}

func (d *Dashboard) Close() error {
	if err := d.enricher.Close(); err != nil {
		d.logger.Error("error closing enricher", "err", err)
	}
	if err := d.provider.Close(); err != nil {
		d.logger.Error("error closing AI provider", "err", err)
	}

	if err := d.relationRepo.Close(); err != nil {
		d.logger.Error("error closing relation repository", "err", err)
		return err
	}
	if err := d.entityRepo.Close(); err != nil {
		d.logger.Error("error closing entity repository", "err", err)
		return err
	}
	if err := d.documentRepo.Close(); err != nil {
		d.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := d.backend.Close(); err != nil {
		d.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (d *Dashboard) DocumentRepository() storage.DocumentRepository {
	return d.documentRepo
}

func (d *Dashboard) EntityRepository() storage.EntityRepository {
	return d.entityRepo
}

func (d *Dashboard) RelationRepository() storage.RelationRepository {
	return d.relationRepo
}

func (d *Dashboard) CheckpointRepository() storage.CheckpointRepository {
	return d.checkpointRepo
}

// Enricher returns the ATT&CK enricher, which may be in pass-through
// mode when no bundle cache has been fetched yet.
func (d *Dashboard) Enricher() *enrich.Enricher {
	return d.enricher
}

// NewPipeline creates a processing pipeline wired to the dashboard's
// repositories, checkpoints and enricher.
func (d *Dashboard) NewPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	wired := append([]pipeline.Option{
		pipeline.WithCheckpoints(d.checkpointRepo),
		pipeline.WithEnricher(d.enricher),
	}, opts...)
	return pipeline.NewPipeline(d.documentRepo, d.entityRepo, d.relationRepo, d.provider, wired...)
}

func (d *Dashboard) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(d.documentRepo, d.entityRepo, d.provider, opts...)
}
