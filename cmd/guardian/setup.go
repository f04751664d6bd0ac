package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/guardian/internal/config"
	"github.com/sandevgo/guardian/internal/core"
	"github.com/sandevgo/guardian/internal/index"
	"github.com/sandevgo/guardian/internal/providers/embed"
	"github.com/sandevgo/guardian/internal/providers/llm"
	"github.com/sandevgo/guardian/internal/service/advisor"
	"github.com/sandevgo/guardian/internal/service/ingest"
	"github.com/sandevgo/guardian/internal/storage/sqlite"
	"github.com/sandevgo/guardian/internal/transport/telegram"
	"github.com/sandevgo/guardian/pkg/log"
	"github.com/sandevgo/guardian/pkg/srv"
)

// App holds the wired collaborators every subcommand draws from.
type App struct {
	Cfg      *config.AppConfig
	DB       *sql.DB
	Repo     core.DocumentRepository
	Embedder core.Embedder
	Index    *index.Index
	Advisor  *advisor.Advisor
	Ingestor *ingest.Ingestor

	// Services are the long-running parts, started only by `guardian start`.
	Services []srv.Service
}

func NewApp(ctx context.Context) *App {
	logger := log.FromCtx(ctx)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	retCfg := config.NewRetrievalConfig(ctx)
	genCfg := config.NewGenerationConfig(ctx)
	provCfg := config.NewProvidersConfig(ctx)

	if err := os.MkdirAll(appCfg.GetRuntimePath(), 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create runtime directory")
	}

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	repo := sqlite.NewDocumentRepo(db)

	// 3. Embedder and the in-memory vector index
	embedder, err := embed.NewEmbedder(ctx, appCfg.EmbeddingProvider, provCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}
	idx := index.New(embedder.Dims())
	if err := rebuildIndex(ctx, repo, idx, embedder); err != nil {
		logger.Fatal().Err(err).Msg("failed to rebuild vector index")
	}

	// 4. Generation provider
	provider, err := llm.NewProvider(ctx, appCfg.LLMProvider, provCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 5. Pipeline
	adv := advisor.New(repo, embedder, idx, provider, retCfg, genCfg)
	ingestor := ingest.NewIngestor(repo, embedder, idx)

	app := &App{
		Cfg:      appCfg,
		DB:       db,
		Repo:     repo,
		Embedder: embedder,
		Index:    idx,
		Advisor:  adv,
		Ingestor: ingestor,
	}

	// 6. Background services
	app.Services = append(app.Services, ingest.NewReindexer(repo, embedder, idx, appCfg))
	if appCfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, adv)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		app.Services = append(app.Services, bot)
	}
	app.Services = append(app.Services, srv.NewCleanup(db.Close))

	return app
}

func (a *App) Close(ctx context.Context) {
	if err := a.DB.Close(); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to close database")
	}
}

// rebuildIndex loads every persisted vector back into memory. Vectors from
// another embedding model version still load; the reindexer replaces them.
// Vectors of a different width cannot be ranked at all and are skipped.
func rebuildIndex(ctx context.Context, repo core.DocumentRepository, idx *index.Index, embedder core.Embedder) error {
	logger := log.FromCtx(ctx)

	embeddings, err := repo.LoadEmbeddings(ctx)
	if err != nil {
		return err
	}

	var loaded, skipped int
	for _, emb := range embeddings {
		if len(emb.Vector) != embedder.Dims() {
			skipped++
			continue
		}
		if err := idx.Upsert(index.Entry{
			ID:          emb.DocID,
			Vector:      emb.Vector,
			VersionTag:  emb.VersionTag,
			Category:    emb.Category,
			RetrievedAt: emb.RetrievedAt,
		}); err != nil {
			return err
		}
		loaded++
	}

	logger.Info().
		Int("vectors", loaded).
		Int("skipped", skipped).
		Int("stale", len(idx.Mismatched(embedder.VersionTag()))).
		Msg("vector index rebuilt")
	return nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
