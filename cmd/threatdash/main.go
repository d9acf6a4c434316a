package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	threatdash "github.com/Ankur-krGarg/Cyber-Threat-dashboard"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ai/openai"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/enrich"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/feeds"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/ingest"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/reembed"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "threatdash",
		Usage: "Threat intelligence store with hybrid search and a knowledge graph",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./threat_db",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "attack-cache",
				Usage: "Path to the local MITRE ATT&CK bundle cache",
				Value: "./attack/enterprise-attack.json",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Load a chunked JSON export and process it through the pipeline",
				ArgsUsage: "<chunkfile>",
				Action:    ingestCommand,
			},
			{
				Name:   "fetch",
				Usage:  "Fetch documents from configured threat feeds and ingest them",
				Action: fetchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the feeds YAML configuration",
						Value:   "feeds.yaml",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Fetch only the named source instead of all of them",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search stored threat documents",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 5,
					},
				},
			},
			{
				Name:      "graph",
				Usage:     "Show the knowledge-graph neighborhood of an entity",
				ArgsUsage: "<entity name>",
				Action:    graphCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Entity type (e.g. threat_actor, malware); all types are tried when omitted",
					},
				},
			},
			{
				Name:   "attack-refresh",
				Usage:  "Download the MITRE ATT&CK bundle into the local cache",
				Action: attackRefreshCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Bundle URL",
						Value: enrich.DefaultBundleURL,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for all stored documents",
				Action: reembedCommand,
				Flags:  reembedFlags(),
			},
			{
				Name:   "reembed-entities",
				Usage:  "Regenerate embeddings for all stored entities",
				Action: reembedEntitiesCommand,
				Flags:  reembedFlags(),
			},
			{
				Name:   "stats",
				Usage:  "Print document, entity and relationship counts",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiConfigFromEnv builds the provider config from the environment, which
// setup has already populated from a .env file when one is present.
func aiConfigFromEnv() *ai.Config {
	var opts []ai.ConfigOption
	if host := os.Getenv("EMBEDDING_HOST"); host != "" {
		opts = append(opts, ai.WithEmbeddingHost(host))
	}
	if model := os.Getenv("EMBEDDING_MODEL"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if host := os.Getenv("EXTRACTOR_HOST"); host != "" {
		opts = append(opts, ai.WithExtractorHost(host))
	}
	if model := os.Getenv("EXTRACTOR_MODEL"); model != "" {
		opts = append(opts, ai.WithExtractorModel(model))
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		opts = append(opts, ai.WithAPIKey(key))
	}
	return ai.NewConfig(opts...)
}

func openDashboard(c *cli.Context) (*threatdash.Dashboard, error) {
	return threatdash.NewDashboard(c.String("db"),
		threatdash.WithAIConfig(aiConfigFromEnv()),
		threatdash.WithAttackCachePath(c.String("attack-cache")),
	)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one chunk file argument")
	}
	chunkFile := c.Args().First()

	docs, stats, err := ingest.LoadFile(chunkFile)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", chunkFile, err)
	}
	fmt.Fprintf(os.Stderr, "Loaded %d documents from %d chunks (%d skipped)\n",
		stats.Documents, stats.TotalChunks, stats.SkippedChunks)

	dash, err := openDashboard(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dash.Close()

	pipe, err := dash.NewPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipe.Release()

	if err := pipe.Ingest(c.Context, docs...); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	pipe.Wait()

	fmt.Fprintf(os.Stderr, "Ingested %d documents\n", len(docs))
	return nil
}

func fetchCommand(c *cli.Context) error {
	cfg, err := feeds.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	if name := c.String("source"); name != "" {
		sourceCfg, err := cfg.FindSource(name)
		if err != nil {
			return err
		}
		cfg = &feeds.Config{Sources: []feeds.SourceConfig{sourceCfg}}
	}

	sources, err := feeds.BuildSources(cfg, nil)
	if err != nil {
		return err
	}

	dash, err := openDashboard(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dash.Close()

	pipe, err := dash.NewPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipe.Release()

	total := 0
	for _, source := range sources {
		docs, err := source.Fetch(c.Context)
		if err != nil {
			slog.Error("feed fetch failed", "source", source.Name(), "err", err)
			continue
		}
		if len(docs) == 0 {
			fmt.Fprintf(os.Stderr, "%s: no new documents\n", source.Name())
			continue
		}
		if err := pipe.Ingest(c.Context, docs...); err != nil {
			slog.Error("feed ingestion failed", "source", source.Name(), "err", err)
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: ingested %d documents\n", source.Name(), len(docs))
		total += len(docs)
	}
	pipe.Wait()

	fmt.Fprintf(os.Stderr, "Fetched %d documents from %d sources\n", total, len(sources))
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected a search query argument")
	}
	query := strings.Join(c.Args().Slice(), " ")

	dash, err := openDashboard(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dash.Close()

	searcher, err := dash.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.FindSimilar(c.Context, query, c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: [%0.3f] %s (%s) %s\n", i+1, hit.Score,
			hit.Document.Source, hit.Document.IndicatorType, firstLine(hit.Document.Text))
	}
	return nil
}

func graphCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected an entity name argument")
	}
	name := strings.Join(c.Args().Slice(), " ")

	dash, err := openDashboard(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dash.Close()

	entity, err := resolveEntity(c.Context, dash, name, c.String("type"))
	if err != nil {
		return err
	}

	neighbors, err := dash.RelationRepository().Neighbors(c.Context, entity.Id)
	if err != nil {
		return fmt.Errorf("failed to load neighbors: %w", err)
	}

	fmt.Printf("%s (%s)", entity.Name, entity.Type)
	if entity.MitreID != "" {
		fmt.Printf(" [%s]", entity.MitreID)
	}
	fmt.Printf(": %d edges\n", len(neighbors))

	for _, n := range neighbors {
		other, err := dash.EntityRepository().GetEntity(c.Context, n.EntityId)
		if err != nil {
			slog.Warn("dangling graph edge", "entity_id", n.EntityId, "err", err)
			continue
		}
		if n.Outgoing {
			fmt.Printf("  -[%s]-> %s (%s)\n", n.Relationship.Type, other.Name, other.Type)
		} else {
			fmt.Printf("  <-[%s]- %s (%s)\n", n.Relationship.Type, other.Name, other.Type)
		}
	}
	return nil
}

// resolveEntity finds an entity by name, trying every known type when no
// explicit type was given. Name matching is case-insensitive.
func resolveEntity(ctx context.Context, dash *threatdash.Dashboard, name, typeStr string) (*core.ThreatEntity, error) {
	if typeStr != "" {
		entityType := core.EntityType(typeStr)
		if err := core.ValidateEntityType(entityType); err != nil {
			return nil, err
		}
		entity, err := dash.EntityRepository().FindEntityByNameAndType(ctx, name, entityType)
		if err != nil {
			return nil, fmt.Errorf("entity %q (%s): %w", name, entityType, err)
		}
		return entity, nil
	}

	for _, entityType := range core.EntityTypes {
		entity, err := dash.EntityRepository().FindEntityByNameAndType(ctx, name, entityType)
		if err == nil {
			return entity, nil
		}
	}
	return nil, fmt.Errorf("entity %q: not found under any type", name)
}

func attackRefreshCommand(c *cli.Context) error {
	cachePath := c.String("attack-cache")

	enricher, err := enrich.NewEnricher(enrich.WithCachePath(cachePath))
	if err != nil {
		return err
	}
	defer enricher.Close()

	fmt.Fprintf(os.Stderr, "Downloading ATT&CK bundle from %s\n", c.String("url"))
	if err := enricher.Refresh(c.Context, http.DefaultClient, c.String("url")); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Saved bundle cache to %s\n", cachePath)
	return nil
}

func reembedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of items to process in each batch",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "report-interval",
			Usage: "Report progress every N items",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum retry attempts for failed operations",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 1 * time.Second,
		},
	}
}

func reembedConfigFromFlags(c *cli.Context) (*reembed.Config, error) {
	cfg := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch-size must be greater than 0")
	}
	if cfg.ReportInterval <= 0 {
		return nil, fmt.Errorf("report-interval must be greater than 0")
	}
	if cfg.MaxRetries <= 0 {
		return nil, fmt.Errorf("max-retries must be greater than 0")
	}
	return cfg, nil
}

func reembedCommand(c *cli.Context) error {
	cfg, err := reembedConfigFromFlags(c)
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	embedder, err := openai.NewEmbedder(aiConfigFromEnv())
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedder := reembed.NewReembedder(repo, embedder, cfg, os.Stderr)
	if err := reembedder.Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func reembedEntitiesCommand(c *cli.Context) error {
	cfg, err := reembedConfigFromFlags(c)
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewEntityRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	embedder, err := openai.NewEmbedder(aiConfigFromEnv())
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedder := reembed.NewEntityReembedder(repo, embedder, cfg, os.Stderr)
	if err := reembedder.Run(c.Context); err != nil {
		return fmt.Errorf("entity reembedding failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	dash, err := openDashboard(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dash.Close()

	docCount, err := dash.DocumentRepository().CountDocuments(c.Context)
	if err != nil {
		return err
	}
	entities, err := dash.EntityRepository().GetAllEntities(c.Context)
	if err != nil {
		return err
	}

	relCount := 0
	byType := make(map[core.EntityType]int)
	for _, entity := range entities {
		byType[entity.Type]++
		outgoing, err := dash.RelationRepository().GetRelationshipsBySource(c.Context, entity.Id)
		if err != nil {
			return err
		}
		relCount += len(outgoing)
	}

	fmt.Printf("Documents:     %d\n", docCount)
	fmt.Printf("Entities:      %d\n", len(entities))
	for _, entityType := range core.EntityTypes {
		if n := byType[entityType]; n > 0 {
			fmt.Printf("  %-18s %d\n", entityType, n)
		}
	}
	fmt.Printf("Relationships: %d\n", relCount)
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 100 {
		s = s[:100] + "..."
	}
	return s
}

func setup(c *cli.Context) error {
	// A missing .env file is fine; the environment may be set directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "err", err)
	}

	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
