package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/dataset"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/embedding"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/index/flat"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/index/lsh"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/storage"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/wikipedia"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/cli"
	"github.com/custodia-labs/wikirec/internal/adapters/driving/watcher"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
	"github.com/custodia-labs/wikirec/internal/core/services"
	"github.com/custodia-labs/wikirec/internal/logger"
)

// Environment fallbacks for secrets missing from the config file.
const (
	openAIKeyEnv     = "OPENAI_API_KEY"
	redisPasswordEnv = "WIKIREC_REDIS_PASSWORD"
)

// newBootstrap returns the function the CLI calls before any command that
// needs the catalog.
func newBootstrap(settings driving.SettingsService) cli.Bootstrap {
	return func(ctx context.Context) (*cli.Services, error) {
		s, err := settings.Get()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		return buildServices(ctx, s)
	}
}

// newHistoryBootstrap returns the function history commands call instead
// of the full bootstrap.
func newHistoryBootstrap(settings driving.SettingsService) cli.HistoryBootstrap {
	return func(ctx context.Context) (driving.HistoryService, func() error, error) {
		s, err := settings.Get()
		if err != nil {
			return nil, nil, fmt.Errorf("load settings: %w", err)
		}
		history, closeHistory, err := buildHistory(ctx, s)
		if err != nil {
			return nil, nil, err
		}
		return history, closeHistory, nil
	}
}

// buildHistory opens the key-value store and nothing else.
func buildHistory(ctx context.Context, settings *domain.AppSettings) (*services.HistoryService, func() error, error) {
	store, err := storage.Open(ctx, storageSettings(settings))
	if err != nil {
		return nil, nil, err
	}
	return services.NewHistoryService(store, settings.History.Capacity, settings.History.EscalateAfter),
		store.Close, nil
}

// buildServices wires adapters into the core services. Anything opened
// before a failure is closed again.
func buildServices(ctx context.Context, settings *domain.AppSettings) (_ *cli.Services, err error) {
	if !settings.Dataset.IsConfigured() {
		return nil, fmt.Errorf("%w: dataset files are not set. Run 'wikirec settings wizard' to fix",
			domain.ErrDataset)
	}

	var closers closeList
	defer func() {
		if err != nil {
			closers.Close() //nolint:errcheck
		}
	}()

	embedSettings := settings.Embedding
	if embedSettings.Provider.RequiresAPIKey() && embedSettings.APIKey == "" {
		embedSettings.APIKey = os.Getenv(openAIKeyEnv)
	}
	embedder, err := embedding.NewAndValidate(ctx, &embedSettings)
	if err != nil {
		return nil, err
	}
	closers = append(closers, embedder.Close)

	store, err := storage.Open(ctx, storageSettings(settings))
	if err != nil {
		return nil, err
	}
	closers = append(closers, store.Close)

	build, err := indexBuilder(settings.Index.Backend)
	if err != nil {
		return nil, err
	}

	paths := []string{settings.Dataset.MetadataPath, settings.Dataset.VectorsPath}
	catalog := services.NewCatalog(services.CatalogOptions{
		Load: func(context.Context) (driven.VectorStore, error) {
			s, err := dataset.Load(paths[0], paths[1])
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Build:     build,
		Backend:   settings.Index.Backend,
		Config:    settings.Index.Config,
		Dimension: embedder.Dimensions(),
	})
	if err := catalog.Reload(ctx); err != nil {
		return nil, err
	}

	wiki := wikipedia.NewClient(wikipedia.Config{Language: settings.Wiki.Language})
	recommender := services.NewRecommendationService(catalog, embedder)
	history := services.NewHistoryService(store, settings.History.Capacity, settings.History.EscalateAfter)
	explorer := services.NewExplorerService(wiki, recommender, history, domain.DefaultRecommendOptions())

	logger.Debug("services ready: embedder=%s storage=%s index=%s",
		embedder.ModelName(), settings.Storage.Backend, settings.Index.Backend)

	return &cli.Services{
		Recommend: recommender,
		Explorer:  explorer,
		History:   history,
		Catalog:   catalog,
		Watch: func(ctx context.Context) error {
			w, err := watcher.New(catalog, paths, watcher.DefaultDebounce)
			if err != nil {
				return err
			}
			return w.Run(ctx)
		},
		Close: closers.Close,
	}, nil
}

func storageSettings(settings *domain.AppSettings) domain.StorageSettings {
	s := settings.Storage
	if s.Backend == domain.StorageBackendRedis && s.RedisPassword == "" {
		s.RedisPassword = os.Getenv(redisPasswordEnv)
	}
	return s
}

// indexBuilder maps the configured backend to its constructor.
func indexBuilder(backend domain.IndexBackend) (driven.IndexBuilder, error) {
	switch backend {
	case domain.IndexBackendLSH, "":
		return lsh.BuildIndex, nil
	case domain.IndexBackendFlat:
		return flat.BuildIndex, nil
	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, backend)
	}
}

// closeList closes resources in reverse order of opening.
type closeList []func() error

func (c closeList) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
