package provider

import "context"

// SuccessFunc receives a provider response.
type SuccessFunc func(resp *Response)

// FailureFunc receives a provider failure.
type FailureFunc func(err error)

// Provider fetches articles from the external service.
// Implementations must be safe for concurrent use. Each call returns
// promptly and later invokes exactly one of onSuccess or onFailure, exactly once.
type Provider interface {
	// FetchEverything searches the full article archive.
	FetchEverything(ctx context.Context, req *Request, onSuccess SuccessFunc, onFailure FailureFunc)

	// FetchTopHeadlines queries current top headlines.
	FetchTopHeadlines(ctx context.Context, req *Request, onSuccess SuccessFunc, onFailure FailureFunc)
}

// SourceLister enumerates the sources a provider knows about.
// It is optional and only used for diagnostics.
type SourceLister interface {
	// FetchSources lists sources matching the request filters.
	FetchSources(ctx context.Context, req *SourcesRequest, onSuccess func(*SourcesResponse), onFailure FailureFunc)
}
