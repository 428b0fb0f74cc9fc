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


// Package provider defines the boundary to the external news search and
// headlines service.
//
// The importer never talks HTTP directly. It builds a Request per query and
// hands it to a Provider together with two continuations. Exactly one of the
// continuations is invoked, exactly once, possibly on a goroutine other than
// the caller's.
//
// # Implementation Packages
//
//   - provider/newsapi: HTTP client for the NewsAPI v2 service
//   - provider/mock: deterministic mock responses and a programmable test double
//
// # Lookup Tables
//
// The provider accepts a fixed set of language codes, country codes and
// category names. LookupLanguage, LookupCountry and LookupCategory validate a
// key against those tables and return an error matching core.ErrConfiguration
// on a miss.
//
// # Usage Example
//
//	cfg := provider.NewConfig(provider.WithAPIKey(key))
//	client, err := newsapi.NewClient(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client.FetchEverything(ctx, &provider.Request{Kind: provider.KindEverything, Q: "rust"},
//	    func(resp *provider.Response) { ... },
//	    func(err error) { ... })
package provider
