package ingestion

import (
	"context"

	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/provider"
)

// QuerySource produces the provider response for one query.
// Fetch invokes exactly one of onSuccess or onFailure, possibly on
// another goroutine.
type QuerySource interface {
	Fetch(ctx context.Context, q *core.QueryDefinition, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc)
}

// MockGenerator synthesizes a response for a query without a provider.
type MockGenerator func(q *core.QueryDefinition) *provider.Response

// providerSource maps each query and routes it to the matching endpoint.
type providerSource struct {
	provider provider.Provider
}

func (s providerSource) Fetch(ctx context.Context, q *core.QueryDefinition, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	req, err := MapQuery(q)
	if err != nil {
		onFailure(err)
		return
	}

	switch req.Kind {
	case provider.KindHeadlines:
		s.provider.FetchTopHeadlines(ctx, req, onSuccess, onFailure)
	default:
		s.provider.FetchEverything(ctx, req, onSuccess, onFailure)
	}
}

// mockSource answers synchronously with a generated response.
type mockSource struct {
	generate MockGenerator
}

func (s mockSource) Fetch(_ context.Context, q *core.QueryDefinition, onSuccess provider.SuccessFunc, _ provider.FailureFunc) {
	onSuccess(s.generate(q))
}
