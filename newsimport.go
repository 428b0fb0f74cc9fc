// Copyright 2025 Poiesic Systems
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

package newsimport

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/newsimport/config"
	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/ingestion"
	"github.com/poiesic/newsimport/provider"
	"github.com/poiesic/newsimport/provider/mock"
	"github.com/poiesic/newsimport/provider/newsapi"
	"github.com/poiesic/newsimport/storage/badger"
	"github.com/poiesic/newsimport/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultErrorBuffer = 256

var (
	// ErrConfigRequired is returned when NewService is called without a config.
	ErrConfigRequired = errors.New("config required")

	// ErrSourcesUnsupported is returned when the provider cannot list sources.
	ErrSourcesUnsupported = errors.New("provider does not list sources")
)

// Service wires configuration, provider, importer and telemetry together.
type Service struct {
	config     *config.Config
	provider   provider.Provider
	importer   *ingestion.Importer
	registry   *prometheus.Registry
	collectors *telemetry.Collectors
	errors     *ingestion.ErrorChannel
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger       *slog.Logger
	provider     provider.Provider
	registry     *prometheus.Registry
	errorBuffer  int
	importerOpts []ingestion.Option
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithProvider replaces the NewsAPI client, e.g. with a test double.
func WithProvider(p provider.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = p
	}
}

// WithRegistry registers collectors with reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) ServiceOption {
	return func(o *serviceOptions) {
		o.registry = reg
	}
}

// WithErrorBuffer sets how many unread failures are buffered before new
// ones are dropped.
func WithErrorBuffer(n int) ServiceOption {
	return func(o *serviceOptions) {
		o.errorBuffer = n
	}
}

// WithImporterOptions appends options applied after the config-derived ones.
func WithImporterOptions(opts ...ingestion.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.importerOpts = append(o.importerOpts, opts...)
	}
}

// NewService builds a ready-to-use Service from cfg.
func NewService(cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	options := &serviceOptions{
		logger:      slog.Default(),
		errorBuffer: defaultErrorBuffer,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.registry == nil {
		options.registry = prometheus.NewRegistry()
	}

	p := options.provider
	if p == nil && !cfg.Disabled {
		client, err := newsapi.NewClient(cfg.ProviderConfig(), newsapi.WithLogger(options.logger))
		if err != nil {
			return nil, err
		}
		p = client
	}

	collectors := telemetry.NewCollectors(options.registry)
	errs := ingestion.NewErrorChannel(options.errorBuffer)

	importerOpts := []ingestion.Option{
		ingestion.WithLogger(options.logger),
		ingestion.WithDisabled(cfg.Disabled),
		ingestion.WithMockImport(cfg.ImportMockData),
		ingestion.WithMockGenerator(mock.BuildMockResponse),
		ingestion.WithInstruments(collectors),
		ingestion.WithErrorObserver(collectors.CountingObserver(errs)),
	}
	if cfg.PoolSize > 0 {
		importerOpts = append(importerOpts, ingestion.WithPoolSize(cfg.PoolSize))
	}
	if cfg.SpillDir != "" {
		importerOpts = append(importerOpts, ingestion.WithRecordSetFactory(badger.Factory(cfg.SpillDir, options.logger)))
	}
	importerOpts = append(importerOpts, options.importerOpts...)

	importer, err := ingestion.NewImporter(p, importerOpts...)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:     cfg,
		provider:   p,
		importer:   importer,
		registry:   options.registry,
		collectors: collectors,
		errors:     errs,
		logger:     options.logger,
	}, nil
}

// Close releases the importer and closes the error channel.
func (s *Service) Close() error {
	s.importer.Release()
	s.errors.Close()
	return nil
}

// Import runs one batch.
func (s *Service) Import(ctx context.Context, queries []*core.QueryDefinition) *core.ImportResult {
	return s.importer.ImportBatch(ctx, queries)
}

// ImportOne imports a single query without the worker pool.
func (s *Service) ImportOne(ctx context.Context, q *core.QueryDefinition) ([]*core.ContentRecord, int, int) {
	return s.importer.ImportOne(ctx, q)
}

// Errors returns the channel receiving every query failure.
func (s *Service) Errors() <-chan error {
	return s.errors.C()
}

// DroppedErrors returns the number of failures dropped because nobody
// was reading Errors.
func (s *Service) DroppedErrors() int64 {
	return s.errors.Dropped()
}

// Registry returns the Prometheus registry holding the service collectors.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

// Importer returns the underlying importer.
func (s *Service) Importer() *ingestion.Importer {
	return s.importer
}

// Sources lists the provider's sources, blocking until the call completes.
func (s *Service) Sources(ctx context.Context, req *provider.SourcesRequest) (*provider.SourcesResponse, error) {
	lister, ok := s.provider.(provider.SourceLister)
	if !ok {
		return nil, ErrSourcesUnsupported
	}
	if req == nil {
		req = &provider.SourcesRequest{}
	}

	type outcome struct {
		resp *provider.SourcesResponse
		err  error
	}
	done := make(chan outcome, 2)
	lister.FetchSources(ctx, req,
		func(resp *provider.SourcesResponse) { done <- outcome{resp: resp} },
		func(err error) { done <- outcome{err: err} })

	select {
	case o := <-done:
		return o.resp, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LogSources logs every provider source when source debugging is enabled.
func (s *Service) LogSources(ctx context.Context) {
	if !s.config.DebugSources || s.config.Disabled {
		return
	}

	resp, err := s.Sources(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list sources", "err", err)
		return
	}
	for _, src := range resp.Sources {
		s.logger.InfoContext(ctx, "source",
			"id", src.ID, "name", src.Name, "url", src.URL,
			"category", src.Category, "country", src.Country, "language", src.Language)
	}
}
