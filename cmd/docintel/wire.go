package main

import (
	"fmt"
	"time"

	"github.com/custodia-labs/docintel/internal/adapters/driven/ai"
	"github.com/custodia-labs/docintel/internal/adapters/driven/config/file"
	embedcache "github.com/custodia-labs/docintel/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/docintel/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docintel/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docintel/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docintel/internal/adapters/driven/watch"
	"github.com/custodia-labs/docintel/internal/adapters/driving/cli"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/core/services"
	"github.com/custodia-labs/docintel/internal/extractors"
	"github.com/custodia-labs/docintel/internal/logger"
	"github.com/custodia-labs/docintel/internal/postprocessors/chunker"
)

// buildServices resolves settings once and constructs every component from them.
// Settings stay available when the embedding provider cannot be created, so
// the configuration can still be fixed from the CLI.
func buildServices(opts cli.Options) (*cli.Services, func(), error) {
	store, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: loading configuration: %w", domain.ErrInvalidInput, err)
	}

	settingsService := services.NewSettingsService(store, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, err
	}

	if err := logger.SetFile(settings.Paths.Log); err != nil {
		logger.Warn("log file disabled: %v", err)
	}

	var closers []func() error
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("closing: %v", err)
			}
		}
	}

	out := &cli.Services{
		Settings: settingsService,
		TopK:     settings.Retrieval.TopK,
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		out.PipelineErr = err
		return out, release, nil
	}
	closers = append(closers, embedder.Close)

	registry := extractors.NewDefaultRegistry()
	chunks, err := chunker.New(
		chunker.WithChunkSize(settings.Chunking.ChunkSize),
		chunker.WithOverlap(settings.Chunking.ChunkOverlap),
	)
	if err != nil {
		release()
		return nil, nil, err
	}

	audit := openAuditLog(settings.Paths.Database, &closers)

	generator, err := ai.CreateGenerator(&settings.LLM)
	if err != nil {
		logger.Debug("generation disabled: %v", err)
		generator = nil
	} else {
		closers = append(closers, generator.Close)
	}

	index := flat.New(settings.Paths.Index)

	corpus := services.NewCorpusService(registry, chunks)
	indexService := services.NewIndexService(corpus, embedder, index, settings.Paths.Documents, settings.Embedding.BatchSize)
	indexService.SetAuditLog(audit)

	// Only queries are cached; index builds embed every chunk exactly once.
	retrievalService := services.NewRetrievalService(embedcache.New(embedder, settings.Retrieval.QueryCacheTTL), index)
	retrievalService.SetAuditLog(audit)

	answerService := services.NewAnswerService(retrievalService, generator, settings.Retrieval.TopK)
	answerService.SetAuditLog(audit)

	out.Index = indexService
	out.Retrieval = retrievalService
	out.Answer = answerService
	out.History = services.NewHistoryService(audit, answerService)
	out.Watch = func(debounce time.Duration, onResult func(domain.BuildReport, error)) (driving.Watcher, func(), error) {
		notifier, err := watch.New(settings.Paths.Documents, registry.Supports)
		if err != nil {
			return nil, nil, err
		}
		closeNotifier := func() {
			if err := notifier.Close(); err != nil {
				logger.Warn("closing watcher: %v", err)
			}
		}
		return services.NewRebuildScheduler(indexService, notifier, debounce, onResult), closeNotifier, nil
	}

	return out, release, nil
}

// openAuditLog opens the SQLite audit log, falling back to an in-memory log
// so questions can still be answered when the database is unusable.
func openAuditLog(path string, closers *[]func() error) driven.AuditLog {
	store, err := sqlite.NewStore(path)
	if err != nil {
		logger.Warn("audit database unavailable, history will not persist: %v", err)
		return memory.NewAuditLog()
	}
	*closers = append(*closers, store.Close)
	return store
}
