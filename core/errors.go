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


package core

import (
	"errors"
	"fmt"
)

// Import errors
var (
	// ErrConfiguration indicates a query definition cannot be mapped to a
	// provider request. It is fatal to that query only.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedQueryType indicates a query type this importer cannot service.
	ErrUnsupportedQueryType = errors.New("unsupported query type")

	// ErrUnknownLanguage indicates a language code missing from the lookup table.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrUnknownCountry indicates a country code missing from the lookup table.
	ErrUnknownCountry = errors.New("unknown country")

	// ErrUnknownCategory indicates a category name missing from the lookup table.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrProvider indicates the provider's failure continuation fired.
	ErrProvider = errors.New("provider failure")

	// ErrItemParse indicates a raw item could not be converted to a record.
	ErrItemParse = errors.New("item parse failure")

	// ErrInvalidQueryDefinition indicates a QueryDefinition failed validation.
	ErrInvalidQueryDefinition = errors.New("invalid query definition")
)

// ConfigError wraps cause so that it matches both ErrConfiguration and cause.
func ConfigError(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrConfiguration, cause, fmt.Sprintf(format, args...))
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
