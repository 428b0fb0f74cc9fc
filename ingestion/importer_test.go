package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/provider"
	providermock "github.com/poiesic/newsimport/provider/mock"
	"github.com/poiesic/newsimport/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testProvider is a testify-backed provider.Provider. Continuations run on
// a separate goroutine, as they would for a real client.
type testProvider struct {
	mock.Mock
}

func (p *testProvider) FetchEverything(ctx context.Context, req *provider.Request, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	respond(p.Called(ctx, req), onSuccess, onFailure)
}

func (p *testProvider) FetchTopHeadlines(ctx context.Context, req *provider.Request, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	respond(p.Called(ctx, req), onSuccess, onFailure)
}

func respond(args mock.Arguments, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	resp, _ := args.Get(0).(*provider.Response)
	err := args.Error(1)
	go func() {
		if err != nil {
			onFailure(err)
			return
		}
		onSuccess(resp)
	}()
}

func withQuery(text string) any {
	return mock.MatchedBy(func(req *provider.Request) bool { return req.Q == text })
}

func articleResponse(titles ...string) *provider.Response {
	resp := &provider.Response{Status: "ok", TotalResults: len(titles)}
	for _, title := range titles {
		resp.Articles = append(resp.Articles, provider.Article{
			Source:      &provider.Source{Name: "Wired", Category: "technology"},
			Title:       title,
			URL:         "https://example.com/" + title,
			PublishedAt: "2024-04-30T18:15:00Z",
		})
	}
	return resp
}

func newTestImporter(t *testing.T, p provider.Provider, opts ...Option) *Importer {
	t.Helper()
	base := []Option{WithLogger(slog.New(slog.DiscardHandler)), WithPoolSize(4)}
	importer, err := NewImporter(p, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(importer.Release)
	return importer
}

func everything(id, feed int64, text string) *core.QueryDefinition {
	return &core.QueryDefinition{ID: id, FeedID: feed, Username: "alice", QueryType: core.QueryTypeEverything, QueryText: text}
}

func metricFor(t *testing.T, result *core.ImportResult, queryID int64) *core.QueryMetric {
	t.Helper()
	for _, m := range result.Metrics {
		if m.QueryID == queryID {
			return m
		}
	}
	t.Fatalf("no metric for query %d", queryID)
	return nil
}

func TestNewImporter(t *testing.T) {
	_, err := NewImporter(nil)
	assert.ErrorIs(t, err, ErrProviderRequired)

	_, err = NewImporter(nil, WithDisabled(true), WithMockImport(true))
	assert.ErrorIs(t, err, ErrMockGeneratorRequired)

	_, err = NewImporter(&testProvider{}, WithProgressInterval(0))
	assert.ErrorIs(t, err, ErrInvalidProgressInterval)

	importer, err := NewImporter(nil, WithDisabled(true))
	require.NoError(t, err)
	defer importer.Release()
	assert.GreaterOrEqual(t, importer.PoolSize(), 1)

	sized := newTestImporter(t, &testProvider{}, WithPoolSize(0))
	assert.Equal(t, 1, sized.PoolSize())
}

func TestImportBatch_TwoQueriesOneFeed(t *testing.T) {
	p := &testProvider{}
	p.On("FetchEverything", mock.Anything, withQuery("rust")).Return(articleResponse("rust-article"), nil)
	p.On("FetchTopHeadlines", mock.Anything, mock.MatchedBy(func(req *provider.Request) bool {
		return req.Country == "us" && req.Category == "technology"
	})).Return(articleResponse("tech-headline"), nil)

	importer := newTestImporter(t, p)
	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{
		everything(1, 1, "rust"),
		{ID: 2, FeedID: 1, QueryType: core.QueryTypeHeadlines,
			QueryConfig: json.RawMessage(`{"country":"us","category":"technology"}`)},
	})

	require.Len(t, result.Records, 2)
	assert.NotEqual(t, result.Records[0].ContentHash, result.Records[1].ContentHash)
	for _, r := range result.Records {
		assert.Equal(t, int64(1), r.FeedID)
	}

	require.Len(t, result.Metrics, 2)
	for _, m := range result.Metrics {
		assert.Equal(t, 1, m.SuccessCount)
		assert.Equal(t, core.ErrorKindNone, m.ErrorKind)
	}
	p.AssertExpectations(t)
}

func TestImportBatch_ProviderFailure(t *testing.T) {
	p := &testProvider{}
	p.On("FetchEverything", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	observed := NewErrorChannel(10)
	importer := newTestImporter(t, p, WithErrorObserver(observed))

	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{everything(5, 1, "rust")})

	assert.Empty(t, result.Records)
	require.Len(t, result.Metrics, 1)
	m := result.Metrics[0]
	assert.Equal(t, int64(5), m.QueryID)
	assert.Equal(t, 0, m.SuccessCount)
	assert.Equal(t, core.ErrorKindOther, m.ErrorKind)
	assert.Equal(t, "timeout", m.ErrorDetail)

	select {
	case err := <-observed.C():
		assert.ErrorIs(t, err, core.ErrProvider)
		assert.Contains(t, err.Error(), "timeout")
	default:
		t.Fatal("failure was not forwarded to the observer")
	}
}

func TestImportBatch_PartialFailureIsolation(t *testing.T) {
	p := &testProvider{}
	p.On("FetchEverything", mock.Anything, withQuery("one")).Return(articleResponse("a1", "a2"), nil)
	p.On("FetchEverything", mock.Anything, withQuery("two")).Return(nil, errors.New("rate limited"))
	p.On("FetchEverything", mock.Anything, withQuery("three")).Return(articleResponse("c1"), nil)

	importer := newTestImporter(t, p)
	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{
		everything(1, 1, "one"),
		everything(2, 1, "two"),
		everything(3, 1, "three"),
	})

	require.Len(t, result.Metrics, 3)
	assert.Equal(t, 2, result.SuccessCount())
	assert.Equal(t, 1, result.ErrorCount())
	assert.Equal(t, 2, metricFor(t, result, 1).SuccessCount)
	assert.True(t, metricFor(t, result, 2).Failed())
	assert.Equal(t, 1, metricFor(t, result, 3).SuccessCount)

	require.Len(t, result.Records, 3)
	for _, r := range result.Records {
		assert.NotEqual(t, int64(2), r.QueryID)
	}
}

func TestImportBatch_MetricCompleteness(t *testing.T) {
	p := &testProvider{}
	p.On("FetchEverything", mock.Anything, mock.MatchedBy(func(req *provider.Request) bool {
		return req.Q[len(req.Q)-1] == '0'
	})).Return(nil, errors.New("unavailable"))
	p.On("FetchEverything", mock.Anything, mock.Anything).Return(articleResponse("shared"), nil)

	importer := newTestImporter(t, p, WithProgressInterval(7))

	const n = 120
	queries := make([]*core.QueryDefinition, 0, n)
	for i := 1; i <= n; i++ {
		queries = append(queries, everything(int64(i), int64(i%3), fmt.Sprintf("q%d", i)))
	}

	result := importer.ImportBatch(context.Background(), queries)

	require.Len(t, result.Metrics, n)
	assert.Equal(t, n/10, result.ErrorCount())
	// One shared article per feed.
	assert.Len(t, result.Records, 3)

	seen := make(map[int64]bool)
	for _, m := range result.Metrics {
		assert.False(t, seen[m.QueryID], "duplicate metric for query %d", m.QueryID)
		seen[m.QueryID] = true
	}
}

func TestImportBatch_CapabilityFiltering(t *testing.T) {
	p := &testProvider{}
	p.On("FetchEverything", mock.Anything, mock.Anything).Return(articleResponse("x"), nil)

	importer := newTestImporter(t, p)
	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{
		everything(1, 1, "rust"),
		{ID: 2, FeedID: 1, QueryType: "RSS"},
		{ID: 3, FeedID: 1, QueryType: "ATOM"},
	})

	require.Len(t, result.Metrics, 1)
	assert.Equal(t, int64(1), result.Metrics[0].QueryID)
	p.AssertNumberOfCalls(t, "FetchEverything", 1)
}

func TestImportBatch_OnlyUnsupported(t *testing.T) {
	p := &testProvider{}
	importer := newTestImporter(t, p)

	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{{ID: 1, QueryType: "RSS"}})

	assert.Empty(t, result.Records)
	assert.Empty(t, result.Metrics)
	p.AssertNotCalled(t, "FetchEverything", mock.Anything, mock.Anything)
}

func TestImportBatch_DedupAcrossQueries(t *testing.T) {
	p := &testProvider{}
	p.On("FetchEverything", mock.Anything, mock.Anything).Return(articleResponse("same"), nil)

	importer := newTestImporter(t, p)
	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{
		everything(1, 9, "a"),
		everything(2, 9, "b"),
		everything(3, 10, "c"),
	})

	assert.Len(t, result.Records, 2, "one record per feed")
	for _, m := range result.Metrics {
		assert.Equal(t, 1, m.SuccessCount)
	}
}

func TestImportBatch_MappingFailure(t *testing.T) {
	p := &testProvider{}
	var mu sync.Mutex
	var observed []error
	importer := newTestImporter(t, p, WithErrorObserver(ErrorObserverFunc(func(err error) {
		mu.Lock()
		observed = append(observed, err)
		mu.Unlock()
	})))

	q := everything(4, 1, "rust")
	q.QueryConfig = json.RawMessage(`{"language":"klingon"}`)

	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{q})

	require.Len(t, result.Metrics, 1)
	assert.True(t, result.Metrics[0].Failed())
	assert.Contains(t, result.Metrics[0].ErrorDetail, "klingon")
	p.AssertNotCalled(t, "FetchEverything", mock.Anything, mock.Anything)

	require.Len(t, observed, 1)
	assert.ErrorIs(t, observed[0], core.ErrConfiguration)
	assert.NotErrorIs(t, observed[0], core.ErrProvider)
}

func TestImportBatch_MalformedItemsSkipped(t *testing.T) {
	resp := articleResponse("good", "bad")
	resp.Articles[1].PublishedAt = "not-a-time"

	p := &testProvider{}
	p.On("FetchEverything", mock.Anything, mock.Anything).Return(resp, nil)

	importer := newTestImporter(t, p)
	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{everything(1, 1, "x")})

	require.Len(t, result.Metrics, 1)
	assert.False(t, result.Metrics[0].Failed())
	assert.Equal(t, 1, result.Metrics[0].SuccessCount)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "good", result.Records[0].Title)
}

// doubleProvider violates the provider contract by invoking both
// continuations, twice each.
type doubleProvider struct{}

func (doubleProvider) FetchEverything(_ context.Context, _ *provider.Request, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	go func() {
		onSuccess(articleResponse("x"))
		onFailure(errors.New("late failure"))
		onSuccess(articleResponse("y"))
	}()
}

func (p doubleProvider) FetchTopHeadlines(ctx context.Context, req *provider.Request, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	p.FetchEverything(ctx, req, onSuccess, onFailure)
}

func TestImportBatch_ContinuationSignalsOnce(t *testing.T) {
	importer := newTestImporter(t, doubleProvider{})

	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{
		everything(1, 1, "a"),
		everything(2, 1, "b"),
	})

	assert.Len(t, result.Metrics, 2)
}

type panicProvider struct{}

func (panicProvider) FetchEverything(context.Context, *provider.Request, provider.SuccessFunc, provider.FailureFunc) {
	panic("provider exploded")
}

func (panicProvider) FetchTopHeadlines(_ context.Context, _ *provider.Request, onSuccess provider.SuccessFunc, _ provider.FailureFunc) {
	go onSuccess(nil)
}

func TestImportBatch_PanicBecomesFailure(t *testing.T) {
	observed := NewErrorChannel(10)
	importer := newTestImporter(t, panicProvider{}, WithErrorObserver(observed))

	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{
		everything(1, 1, "boom"),
		{ID: 2, FeedID: 1, QueryType: core.QueryTypeHeadlines},
	})

	require.Len(t, result.Metrics, 2)
	assert.True(t, metricFor(t, result, 1).Failed())
	assert.Contains(t, metricFor(t, result, 1).ErrorDetail, "provider exploded")
	assert.False(t, metricFor(t, result, 2).Failed())
	assert.Equal(t, 0, metricFor(t, result, 2).SuccessCount)

	err := <-observed.C()
	assert.ErrorIs(t, err, ErrTaskPanic)
}

func TestImportBatch_MockMode(t *testing.T) {
	importer := newTestImporter(t, nil,
		WithDisabled(true),
		WithMockImport(true),
		WithMockGenerator(providermock.BuildMockResponse))

	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{{ID: 9, FeedID: 9}})

	require.Len(t, result.Records, 1)
	r := result.Records[0]
	assert.Equal(t, int64(9), r.FeedID)
	assert.Equal(t, "test-title9", r.Title)
	assert.Equal(t, "test-source-name-9", r.SourceName)
	assert.NotNil(t, r.PublishedAt)

	require.Len(t, result.Metrics, 1)
	assert.Equal(t, 1, result.Metrics[0].SuccessCount)
	assert.False(t, result.Metrics[0].Failed())

	again := importer.ImportBatch(context.Background(), []*core.QueryDefinition{{ID: 9, FeedID: 9}})
	require.Len(t, again.Records, 1)
	assert.Equal(t, r.ContentHash, again.Records[0].ContentHash)
}

func TestImportBatch_DisabledWithoutMock(t *testing.T) {
	p := &testProvider{}
	importer := newTestImporter(t, p, WithDisabled(true))

	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{everything(1, 1, "rust")})

	assert.Empty(t, result.Records)
	assert.Empty(t, result.Metrics)
	p.AssertNotCalled(t, "FetchEverything", mock.Anything, mock.Anything)
}

func TestImportBatch_BadgerRecordSet(t *testing.T) {
	p := &testProvider{}
	p.On("FetchEverything", mock.Anything, mock.Anything).Return(articleResponse("a", "b"), nil)

	importer := newTestImporter(t, p, WithRecordSetFactory(badger.Factory(t.TempDir(), nil)))
	result := importer.ImportBatch(context.Background(), []*core.QueryDefinition{
		everything(1, 1, "x"),
		everything(2, 1, "y"),
	})

	assert.Len(t, result.Records, 2)
	require.Len(t, result.Metrics, 2)
	for _, m := range result.Metrics {
		assert.Equal(t, 2, m.SuccessCount)
	}
}

func TestImportOne(t *testing.T) {
	resp := articleResponse("good", "bad")
	resp.Articles[1].PublishedAt = "not-a-time"

	p := &testProvider{}
	p.On("FetchEverything", mock.Anything, withQuery("ok")).Return(resp, nil)
	p.On("FetchEverything", mock.Anything, withQuery("fail")).Return(nil, errors.New("timeout"))

	importer := newTestImporter(t, p)

	records, successCount, errorCount := importer.ImportOne(context.Background(), everything(1, 1, "ok"))
	assert.Len(t, records, 1)
	assert.Equal(t, 1, successCount)
	assert.Equal(t, 1, errorCount)

	records, successCount, errorCount = importer.ImportOne(context.Background(), everything(2, 1, "fail"))
	assert.Empty(t, records)
	assert.Equal(t, 0, successCount)
	assert.Equal(t, 1, errorCount)

	records, successCount, errorCount = importer.ImportOne(context.Background(), &core.QueryDefinition{ID: 3, QueryType: "RSS"})
	assert.Empty(t, records)
	assert.Equal(t, 0, successCount)
	assert.Equal(t, 1, errorCount)
}
