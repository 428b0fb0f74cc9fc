// Package mock provides offline stand-ins for the news provider.
//
// BuildMockResponse synthesizes the deterministic response the importer
// feeds through its success path when it is administratively disabled with
// mock import enabled.
//
// MockProvider is a test double for provider.Provider:
//
//	p := mock.NewMockProvider().
//	    WithEverythingFunc(func(ctx context.Context, req *provider.Request) (*provider.Response, error) {
//	        return &provider.Response{Articles: articles}, nil
//	    })
//
//	count := p.CallCount()
//
// # Default Behavior
//
//   - MockProvider: answers every call with an empty response
//   - Continuations always run on a separate goroutine
package mock
