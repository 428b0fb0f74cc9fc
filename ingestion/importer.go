package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/provider"
	"github.com/poiesic/newsimport/storage"
)

const defaultProgressInterval = 50

// Importer runs batches of query definitions against a provider and
// collects the deduplicated records and per-query metrics.
// An Importer is safe for concurrent use; batches share its worker pool.
type Importer struct {
	provider         provider.Provider
	pool             *ants.Pool
	logger           *slog.Logger
	observer         ErrorObserver
	newRecordSet     storage.RecordSetFactory
	disabled         bool
	mockImport       bool
	mockGenerator    MockGenerator
	instruments      Instruments
	progressInterval int
	now              func() time.Time
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets the worker pool size.
// Default is runtime.NumCPU() - 1, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(i *Importer) error {
		if size < 1 {
			size = 1
		}

		pool, err := i.newPool(size)
		if err != nil {
			return err
		}

		if i.pool != nil {
			i.pool.Release()
		}
		i.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger.With("component", "importer")
		return nil
	}
}

// WithErrorObserver sets the destination for query failures.
// Default discards them.
func WithErrorObserver(observer ErrorObserver) Option {
	return func(i *Importer) error {
		if observer == nil {
			observer = discardObserver{}
		}
		i.observer = observer
		return nil
	}
}

// WithRecordSetFactory sets how each batch's record set is created.
// Default is MemoryRecordSetFactory.
func WithRecordSetFactory(factory storage.RecordSetFactory) Option {
	return func(i *Importer) error {
		if factory == nil {
			factory = MemoryRecordSetFactory
		}
		i.newRecordSet = factory
		return nil
	}
}

// WithDisabled administratively disables provider access.
func WithDisabled(disabled bool) Option {
	return func(i *Importer) error {
		i.disabled = disabled
		return nil
	}
}

// WithMockImport makes a disabled importer feed generated responses
// through the success path instead of returning empty results.
func WithMockImport(enabled bool) Option {
	return func(i *Importer) error {
		i.mockImport = enabled
		return nil
	}
}

// WithMockGenerator sets the generator used for mock import.
func WithMockGenerator(generate MockGenerator) Option {
	return func(i *Importer) error {
		if generate == nil {
			return ErrMockGeneratorRequired
		}
		i.mockGenerator = generate
		return nil
	}
}

// WithInstruments sets the metrics sink for batch events.
func WithInstruments(instruments Instruments) Option {
	return func(i *Importer) error {
		if instruments == nil {
			instruments = noopInstruments{}
		}
		i.instruments = instruments
		return nil
	}
}

// WithProgressInterval sets how many completions pass between progress logs.
// Default is 50.
func WithProgressInterval(n int) Option {
	return func(i *Importer) error {
		if n < 1 {
			return ErrInvalidProgressInterval
		}
		i.progressInterval = n
		return nil
	}
}

// WithClock overrides the time source used for metric and import timestamps.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) error {
		if now != nil {
			i.now = now
		}
		return nil
	}
}

// NewImporter creates an importer for p.
// p may be nil only when the importer is disabled.
func NewImporter(p provider.Provider, opts ...Option) (*Importer, error) {
	i := &Importer{
		provider:         p,
		logger:           slog.Default().With("component", "importer"),
		observer:         discardObserver{},
		newRecordSet:     MemoryRecordSetFactory,
		instruments:      noopInstruments{},
		progressInterval: defaultProgressInterval,
		now:              func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			i.Release()
			return nil, err
		}
	}

	if i.provider == nil && !i.disabled {
		i.Release()
		return nil, ErrProviderRequired
	}
	if i.disabled && i.mockImport && i.mockGenerator == nil {
		i.Release()
		return nil, ErrMockGeneratorRequired
	}

	if i.pool == nil {
		pool, err := i.newPool(max(runtime.NumCPU()-1, 1))
		if err != nil {
			return nil, err
		}
		i.pool = pool
	}

	return i, nil
}

func (i *Importer) newPool(size int) (*ants.Pool, error) {
	return ants.NewPool(size, ants.WithPanicHandler(func(v any) {
		i.logger.Error("worker panicked outside a task", "panic", v)
	}))
}

// PoolSize returns the worker pool capacity.
func (i *Importer) PoolSize() int {
	return i.pool.Cap()
}

// Release releases the worker pool.
// The importer should not be used after calling Release.
func (i *Importer) Release() {
	if i.pool != nil {
		i.pool.Release()
	}
}

// batch is the per-call state shared by the tasks of one import.
type batch struct {
	logger     *slog.Logger
	records    storage.RecordSet
	metrics    *MetricsAggregator
	progress   *progressReporter
	itemErrors atomic.Int64
	wg         sync.WaitGroup
}

// ImportBatch imports every supported query and blocks until each one has
// reported. It never fails as a whole: failures surface as metrics.
func (i *Importer) ImportBatch(ctx context.Context, queries []*core.QueryDefinition) *core.ImportResult {
	if i.disabled {
		i.logger.WarnContext(ctx, "importer is administratively disabled", "queries", len(queries))
		if !i.mockImport {
			return core.EmptyResult()
		}
		i.logger.WarnContext(ctx, "importing mock records")
		queries = slices.DeleteFunc(slices.Clone(queries), func(q *core.QueryDefinition) bool { return q == nil })
		if len(queries) == 0 {
			return core.EmptyResult()
		}
		b := i.startBatch(ctx, queries)
		return i.run(ctx, b, mockSource{generate: i.mockGenerator}, queries, inline)
	}

	supported := FilterSupported(queries)
	if filtered := len(queries) - len(supported); filtered > 0 {
		i.logger.DebugContext(ctx, "skipping unsupported queries", "count", filtered)
	}
	if len(supported) == 0 {
		return core.EmptyResult()
	}

	b := i.startBatch(ctx, supported)
	return i.run(ctx, b, providerSource{provider: i.provider}, supported, i.pool.Submit)
}

// ImportOne imports a single query on the caller's goroutine, waiting for
// its continuation. errorCount counts a failed query once plus every
// article that could not be converted.
func (i *Importer) ImportOne(ctx context.Context, q *core.QueryDefinition) (records []*core.ContentRecord, successCount, errorCount int) {
	if q == nil {
		return []*core.ContentRecord{}, 0, 1
	}

	var source QuerySource = providerSource{provider: i.provider}
	if i.disabled {
		if !i.mockImport {
			i.logger.WarnContext(ctx, "importer is administratively disabled", "queries", 1)
			return []*core.ContentRecord{}, 0, 0
		}
		source = mockSource{generate: i.mockGenerator}
	}

	queries := []*core.QueryDefinition{q}
	b := i.startBatch(ctx, queries)
	result := i.run(ctx, b, source, queries, inline)

	errorCount = int(b.itemErrors.Load())
	for _, m := range result.Metrics {
		successCount += m.SuccessCount
		if m.Failed() {
			errorCount++
		}
	}
	return result.Records, successCount, errorCount
}

func inline(task func()) error {
	task()
	return nil
}

func (i *Importer) startBatch(ctx context.Context, queries []*core.QueryDefinition) *batch {
	logger := i.logger.With("batch", uuid.NewString())

	records, err := i.newRecordSet()
	if err != nil {
		logger.WarnContext(ctx, "record set unavailable, falling back to memory", "err", err)
		records = NewMemoryRecordSet()
	}

	return &batch{
		logger:   logger,
		records:  records,
		metrics:  NewMetricsAggregator(len(queries)),
		progress: newProgressReporter(logger, len(queries), i.progressInterval),
	}
}

// run dispatches one task per query and waits on the barrier.
func (i *Importer) run(ctx context.Context, b *batch, source QuerySource, queries []*core.QueryDefinition, dispatch func(func()) error) *core.ImportResult {
	start := time.Now()
	b.logger.InfoContext(ctx, "import batch started", "queries", len(queries))
	i.instruments.BatchStarted(len(queries))

	b.wg.Add(len(queries))
	for _, q := range queries {
		c := i.newCompletion(b, q)
		if err := dispatch(i.task(ctx, b, source, q, c)); err != nil {
			c.fail(fmt.Errorf("submit query %d: %w", q.ID, err))
		}
	}
	b.wg.Wait()

	result := &core.ImportResult{Metrics: b.metrics.Snapshot()}
	records, err := b.records.Snapshot(ctx)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to read record set", "err", err)
		records = []*core.ContentRecord{}
	}
	result.Records = records
	if err := b.records.Close(); err != nil {
		b.logger.WarnContext(ctx, "failed to close record set", "err", err)
	}

	elapsed := time.Since(start)
	i.instruments.BatchFinished(result, elapsed)
	b.logger.InfoContext(ctx, "import batch finished",
		"queries", len(queries),
		"records", len(result.Records),
		"succeeded", result.SuccessCount(),
		"failed", result.ErrorCount(),
		"duration", elapsed)

	return result
}

// task fetches one query. A panic in the source is converted to a failure.
func (i *Importer) task(ctx context.Context, b *batch, source QuerySource, q *core.QueryDefinition, c *completion) func() {
	return func() {
		defer func() {
			if v := recover(); v != nil {
				c.fail(fmt.Errorf("%w: query %d: %v", ErrTaskPanic, q.ID, v))
			}
		}()

		b.logger.DebugContext(ctx, "importing query",
			"query", q.ID, "feed", q.FeedID, "username", q.Username, "type", q.QueryType)

		source.Fetch(ctx, q,
			func(resp *provider.Response) {
				c.complete(func() *core.QueryMetric { return i.consume(ctx, b, q, resp) })
			},
			func(err error) {
				c.fail(err)
			})
	}
}

// consume builds and offers the records of a successful response.
func (i *Importer) consume(ctx context.Context, b *batch, q *core.QueryDefinition, resp *provider.Response) *core.QueryMetric {
	importedAt := i.now()
	records, err := BuildRecords(q, resp, importedAt)
	if err != nil {
		rejected := len(resp.Articles) - len(records)
		b.itemErrors.Add(int64(rejected))
		i.instruments.RecordsRejected(rejected)
		b.logger.WarnContext(ctx, "skipped malformed articles",
			"query", q.ID, "feed", q.FeedID, "count", rejected, "err", err)
	}

	imported := 0
	for _, record := range records {
		if _, err := b.records.Offer(ctx, record); err != nil {
			b.logger.ErrorContext(ctx, "failed to store record",
				"query", q.ID, "hash", record.ContentHash, "err", err)
			continue
		}
		imported++
	}

	b.logger.InfoContext(ctx, "import success",
		"query", q.ID, "feed", q.FeedID, "username", q.Username,
		"type", q.QueryType, "imported", imported)
	return core.NewSuccessMetric(q.ID, importedAt, imported)
}

// completion signals the barrier for one query exactly once, whichever
// continuation fires first and however often.
type completion struct {
	once     sync.Once
	importer *Importer
	batch    *batch
	query    *core.QueryDefinition
}

func (i *Importer) newCompletion(b *batch, q *core.QueryDefinition) *completion {
	return &completion{importer: i, batch: b, query: q}
}

// complete records the metric produced by fn. A panic in fn is recorded
// as a failure instead.
func (c *completion) complete(fn func() *core.QueryMetric) {
	c.once.Do(func() {
		c.finish(c.safely(fn))
	})
}

// fail records a failure metric and reports err to the observer.
func (c *completion) fail(err error) {
	c.once.Do(func() {
		c.finish(c.failure(err))
	})
}

func (c *completion) safely(fn func() *core.QueryMetric) (m *core.QueryMetric) {
	defer func() {
		if v := recover(); v != nil {
			m = c.failure(fmt.Errorf("%w: query %d: %v", ErrTaskPanic, c.query.ID, v))
		}
	}()
	return fn()
}

func (c *completion) failure(err error) *core.QueryMetric {
	i, q := c.importer, c.query

	var observed error
	switch {
	case errors.Is(err, core.ErrConfiguration), errors.Is(err, ErrTaskPanic):
		observed = fmt.Errorf("query %d (feed %d): %w", q.ID, q.FeedID, err)
	default:
		observed = fmt.Errorf("%w: query %d (feed %d): %w", core.ErrProvider, q.ID, q.FeedID, err)
	}
	i.observer.Observe(observed)

	c.batch.logger.Error("import failure",
		"query", q.ID, "feed", q.FeedID, "username", q.Username,
		"type", q.QueryType, "err", err)
	return core.NewFailureMetric(q.ID, i.now(), err)
}

func (c *completion) finish(m *core.QueryMetric) {
	b := c.batch
	b.metrics.Record(m)
	c.importer.instruments.QueryCompleted(m)
	b.progress.Increment()
	b.wg.Done()
}
