package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docsift/internal/adapters/driven/ai"
	"github.com/custodia-labs/docsift/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsift/internal/adapters/driven/search/meilisearch"
	"github.com/custodia-labs/docsift/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docsift/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docsift/internal/adapters/driving/cli"
	"github.com/custodia-labs/docsift/internal/assistant"
	"github.com/custodia-labs/docsift/internal/classifier"
	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/core/services"
	"github.com/custodia-labs/docsift/internal/logger"
	"github.com/custodia-labs/docsift/internal/parsers"
)

// bootstrap opens the stores under dataDir and assembles the services.
func bootstrap(_ context.Context, dataDir string) (*cli.Services, func() error, error) {
	if dataDir == "" {
		dir, err := file.HomeDir()
		if err != nil {
			return nil, nil, err
		}
		dataDir = dir
	}

	configStore, err := file.NewConfigStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	settings := services.NewSettingsService(configStore)

	prompts, err := file.NewPromptStore(filepath.Join(dataDir, "prompts"), assistant.DefaultPrompts)
	if err != nil {
		return nil, nil, fmt.Errorf("open prompts: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(dataDir, "data"))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	vectors, err := flat.New(filepath.Join(dataDir, "vectors"), flat.DefaultDimension)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open vector store: %w", err)
	}

	index := meilisearch.New(meilisearch.Config{
		Host:   settings.Value(domain.SettingMeilisearchHost),
		APIKey: settings.Value(domain.SettingMeilisearchAPIKey),
	})

	chat, err := ai.CreateChatClient(settings)
	if err != nil {
		logger.Warn("AI features disabled: %v", err)
	}
	var client driven.ChatClient
	if chat != nil {
		client = chat
	}
	asst := assistant.New(client, prompts, assistant.Config{})

	var describer driven.ImageDescriber
	if asst.Available() {
		describer = asst
	}
	registry := parsers.Default(describer)

	catalog := classifier.DefaultCatalog()
	engine := classifier.NewEngine(
		classifier.NewRules(catalog, classifier.DefaultConfig()),
		asst,
		func() bool {
			return asst.Available() && settings.Value(domain.SettingAIClassifier) == domain.ClassifierAI
		},
	)

	docs := store.DocumentStore()
	scanner := services.NewScanOrchestrator(services.ScanDeps{
		Parsers:    registry,
		Documents:  docs,
		Categories: store.CategoryStore(),
		Scans:      store.ScanStore(),
		Classifier: engine,
		Summariser: asst,
		Index:      index,
		Vectors:    vectors,
		Keywords:   asst,
	}, services.DefaultScanConfig())

	settings.SetProbe(services.TestTargetMeilisearch, func(ctx context.Context) error {
		return meilisearch.New(meilisearch.Config{
			Host:   settings.Value(domain.SettingMeilisearchHost),
			APIKey: settings.Value(domain.SettingMeilisearchAPIKey),
		}).Health(ctx)
	})
	settings.SetProbe(services.TestTargetLLM, func(ctx context.Context) error {
		return ai.ValidateChatConfig(ctx, settings)
	})

	svc := &cli.Services{
		Scan:   scanner,
		Search: services.NewSearchService(docs, index, vectors, catalog),
		Document: services.NewDocumentService(services.DocumentDeps{
			Documents:  docs,
			Categories: store.CategoryStore(),
			Scans:      store.ScanStore(),
			Index:      index,
			Vectors:    vectors,
			Answerer:   asst,
		}),
		Settings:    settings,
		Maintenance: services.NewMaintenanceService(docs, index, vectors, 0),
		Accept:      registry.Supported,
	}

	closer := func() error {
		var errs []error
		if chat != nil {
			errs = append(errs, chat.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}
	return svc, closer, nil
}
