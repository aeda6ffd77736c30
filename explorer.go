// Copyright 2025 The caselens Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package caselens assembles the storage, encoding and search layers into a
// single explorer over a seeded case database.
package caselens

import (
	"context"
	"log/slog"

	"github.com/caselens/caselens/ai"
	"github.com/caselens/caselens/ai/openai"
	"github.com/caselens/caselens/feature"
	"github.com/caselens/caselens/ingest"
	"github.com/caselens/caselens/search"
	"github.com/caselens/caselens/storage"
	"github.com/caselens/caselens/storage/badger"
)

// Explorer owns the storage backend, repositories and AI provider, and
// hands out searchers and ingest pipelines built on them.
type Explorer struct {
	backend     *badger.Backend
	caseRepo    storage.CaseRepository
	featureRepo storage.FeatureRepository
	provider    ai.Provider
	logger      *slog.Logger
}

// ExplorerOption configures an Explorer.
type ExplorerOption func(*explorerOptions)

type explorerOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) ExplorerOption {
	return func(o *explorerOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider, bypassing the OpenAI
// provider construction. Intended for tests.
func WithProvider(provider ai.Provider) ExplorerOption {
	return func(o *explorerOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps the badger store in memory. Intended for tests.
func WithInMemoryStorage() ExplorerOption {
	return func(o *explorerOptions) {
		o.inMemory = true
	}
}

// NewExplorer opens the database at filePath and wires the repositories and
// the AI provider.
func NewExplorer(filePath string, opts ...ExplorerOption) (*Explorer, error) {
	options := &explorerOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	caseRepo, err := badger.NewCaseRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	featureRepo, err := badger.NewFeatureRepository(backend)
	if err != nil {
		caseRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			featureRepo.Close()
			caseRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Explorer{
		backend:     backend,
		caseRepo:    caseRepo,
		featureRepo: featureRepo,
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

// Close releases the AI provider, repositories and backend.
func (e *Explorer) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.featureRepo.Close(); err != nil {
		e.logger.Error("error closing feature repository", "err", err)
		return err
	}
	if err := e.caseRepo.Close(); err != nil {
		e.logger.Error("error closing case repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (e *Explorer) CaseRepository() storage.CaseRepository {
	return e.caseRepo
}

func (e *Explorer) FeatureRepository() storage.FeatureRepository {
	return e.featureRepo
}

func (e *Explorer) Provider() ai.Provider {
	return e.provider
}

// LoadStore loads the embedding spaces into memory. It fails when the
// database has not been seeded or a required space is corrupt.
func (e *Explorer) LoadStore(ctx context.Context) (*feature.Store, error) {
	return feature.Load(ctx, e.caseRepo, e.featureRepo, e.logger)
}

// NewSearcher loads the store and builds a searcher over it.
func (e *Explorer) NewSearcher(ctx context.Context, opts ...search.Option) (*search.Searcher, error) {
	store, err := e.LoadStore(ctx)
	if err != nil {
		return nil, err
	}
	return search.NewSearcher(store, e.provider, opts...)
}

// NewIngestPipeline builds a seeding pipeline over the repositories.
// The explorer's embedder is attached for dense-row backfill.
func (e *Explorer) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	withEmbedder := append([]ingest.Option{ingest.WithEmbedder(e.provider.Embedder())}, opts...)
	return ingest.NewPipeline(e.caseRepo, e.featureRepo, withEmbedder...)
}
