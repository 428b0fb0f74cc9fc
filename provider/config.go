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


package provider

import (
	"strings"
	"time"
)

// DefaultBaseURL is the public NewsAPI v2 endpoint.
const DefaultBaseURL = "https://newsapi.org/v2"

// Config holds configuration for a provider client.
type Config struct {
	// APIKey authenticates requests against the provider.
	APIKey string

	// BaseURL is the provider API root.
	// Example: "https://newsapi.org/v2"
	BaseURL string

	// MaxInFlight bounds the number of concurrent provider requests.
	// Default: 4
	MaxInFlight int

	// Timeout bounds a single provider request.
	// Default: 30s
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL sets the provider API root.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithMaxInFlight sets the concurrent request bound.
func WithMaxInFlight(n int) ConfigOption {
	return func(c *Config) {
		c.MaxInFlight = n
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ConfigOption {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// DefaultConfig returns a Config pointing at the public NewsAPI endpoint.
// The API key must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		MaxInFlight: 4,
		Timeout:     30 * time.Second,
		UserAgent:   "newsimport/1.0",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithAPIKey(os.Getenv("NEWSAPI_KEY")),
//       WithMaxInFlight(8),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It trims whitespace from the key and any trailing slash from the base URL.
func (c *Config) Normalize() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.APIKey == "" {
		return ErrAPIKeyRequired
	}
	if c.BaseURL == "" {
		return ErrBaseURLRequired
	}
	if c.MaxInFlight < 1 {
		return ErrInvalidMaxInFlight
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
