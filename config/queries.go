package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/newsimport/core"
	"gopkg.in/yaml.v3"
)

// queryFile is the on-disk layout of a query definition file.
//
//	queries:
//	  - id: 1
//	    feedId: 10
//	    username: alice
//	    queryType: NEWSAPIV2_EVERYTHING
//	    queryText: rust
//	    queryConfig:
//	      language: en
//	      sources: [bbc-news, {name: wired}]
type queryFile struct {
	Queries []queryEntry `yaml:"queries"`
}

// queryEntry carries queryConfig as a YAML value so it can be re-encoded
// to the JSON form core.QueryDefinition expects.
type queryEntry struct {
	core.QueryDefinition `yaml:",inline"`
	Config               any `yaml:"queryConfig"`
}

// LoadQueries reads query definitions from a YAML or JSON file.
// Files ending in .json are decoded as JSON; everything else as YAML.
func LoadQueries(path string) ([]*core.QueryDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var queries []*core.QueryDefinition
	if strings.EqualFold(filepath.Ext(path), ".json") {
		queries, err = parseJSONQueries(data)
	} else {
		queries, err = ParseQueries(data)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}

	if err := core.ValidateQueryDefinitions(queries); err != nil {
		return nil, fmt.Errorf("invalid queries %s: %w", path, err)
	}
	return queries, nil
}

// ParseQueries decodes a YAML query file.
func ParseQueries(data []byte) ([]*core.QueryDefinition, error) {
	var file queryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	queries := make([]*core.QueryDefinition, 0, len(file.Queries))
	for idx, entry := range file.Queries {
		q := entry.QueryDefinition
		if entry.Config != nil {
			raw, err := json.Marshal(entry.Config)
			if err != nil {
				return nil, fmt.Errorf("query %d: queryConfig: %w", idx, err)
			}
			q.QueryConfig = raw
		}
		queries = append(queries, &q)
	}
	return queries, nil
}

func parseJSONQueries(data []byte) ([]*core.QueryDefinition, error) {
	var file struct {
		Queries []*core.QueryDefinition `json:"queries"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return file.Queries, nil
}
