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

package mock

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/newsimport/provider"
)

// FetchFunc answers a provider request synchronously.
type FetchFunc func(ctx context.Context, req *provider.Request) (*provider.Response, error)

// MockProvider is a test double for provider.Provider.
// It allows custom behavior injection via function fields and completes
// every call on a fresh goroutine, like a real asynchronous client.
type MockProvider struct {
	// EverythingFunc is called by FetchEverything if set.
	// If nil, an empty response is returned.
	EverythingFunc FetchFunc

	// HeadlinesFunc is called by FetchTopHeadlines if set.
	// If nil, an empty response is returned.
	HeadlinesFunc FetchFunc

	everythingCalls atomic.Int64
	headlinesCalls  atomic.Int64
}

var _ provider.Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock provider that returns empty responses.
// Note: Returns concrete type to allow behavior injection and call counting.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// WithEverythingFunc sets the archive search behavior.
func (m *MockProvider) WithEverythingFunc(fn FetchFunc) *MockProvider {
	m.EverythingFunc = fn
	return m
}

// WithHeadlinesFunc sets the headlines behavior.
func (m *MockProvider) WithHeadlinesFunc(fn FetchFunc) *MockProvider {
	m.HeadlinesFunc = fn
	return m
}

// FetchEverything answers with EverythingFunc.
func (m *MockProvider) FetchEverything(ctx context.Context, req *provider.Request, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	m.everythingCalls.Add(1)
	go complete(ctx, m.EverythingFunc, req, onSuccess, onFailure)
}

// FetchTopHeadlines answers with HeadlinesFunc.
func (m *MockProvider) FetchTopHeadlines(ctx context.Context, req *provider.Request, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	m.headlinesCalls.Add(1)
	go complete(ctx, m.HeadlinesFunc, req, onSuccess, onFailure)
}

// CallCount returns the number of times any fetch method was called.
func (m *MockProvider) CallCount() int {
	return int(m.everythingCalls.Load() + m.headlinesCalls.Load())
}

// EverythingCalls returns the number of FetchEverything calls.
func (m *MockProvider) EverythingCalls() int {
	return int(m.everythingCalls.Load())
}

// HeadlinesCalls returns the number of FetchTopHeadlines calls.
func (m *MockProvider) HeadlinesCalls() int {
	return int(m.headlinesCalls.Load())
}

// Reset clears call counts and injected behavior.
func (m *MockProvider) Reset() {
	m.everythingCalls.Store(0)
	m.headlinesCalls.Store(0)
	m.EverythingFunc = nil
	m.HeadlinesFunc = nil
}

func complete(ctx context.Context, fn FetchFunc, req *provider.Request, onSuccess provider.SuccessFunc, onFailure provider.FailureFunc) {
	if fn == nil {
		onSuccess(&provider.Response{Status: "ok", Articles: []provider.Article{}})
		return
	}
	resp, err := fn(ctx, req)
	if err != nil {
		onFailure(err)
		return
	}
	onSuccess(resp)
}
