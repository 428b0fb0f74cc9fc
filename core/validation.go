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
	"encoding/json"
	"fmt"
)

// ValidateQueryDefinition validates a QueryDefinition loaded from outside
// the importer.
//
// Validation rules:
//   - definition must not be nil
//   - QueryType must not be empty
//   - QueryConfig, when present, must be valid JSON
//
// NOT validated (the importer reports these per query):
//   - whether QueryType is supported
//   - enumeration values inside QueryConfig
func ValidateQueryDefinition(q *QueryDefinition) error {
	if q == nil {
		return fmt.Errorf("%w: definition is nil", ErrInvalidQueryDefinition)
	}

	if q.QueryType == "" {
		return fmt.Errorf("%w: query %d has no query type", ErrInvalidQueryDefinition, q.ID)
	}

	if len(q.QueryConfig) > 0 && !json.Valid(q.QueryConfig) {
		return fmt.Errorf("%w: query %d has malformed query config", ErrInvalidQueryDefinition, q.ID)
	}

	return nil
}

// ValidateQueryDefinitions validates every definition and returns the first failure.
func ValidateQueryDefinitions(queries []*QueryDefinition) error {
	for i, q := range queries {
		if err := ValidateQueryDefinition(q); err != nil {
			return fmt.Errorf("definition %d: %w", i, err)
		}
	}
	return nil
}
