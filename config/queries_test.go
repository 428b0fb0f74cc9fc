package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/newsimport/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQueries = `
queries:
  - id: 1
    feedId: 10
    username: alice
    queryType: NEWSAPIV2_EVERYTHING
    queryText: rust
    queryConfig:
      language: en
      sources:
        - bbc-news
        - name: wired
  - id: 2
    feedId: 10
    username: alice
    queryType: NEWSAPIV2_HEADLINES
`

func TestParseQueries(t *testing.T) {
	queries, err := ParseQueries([]byte(sampleQueries))
	require.NoError(t, err)
	require.Len(t, queries, 2)

	q := queries[0]
	assert.Equal(t, int64(1), q.ID)
	assert.Equal(t, int64(10), q.FeedID)
	assert.Equal(t, "alice", q.Username)
	assert.Equal(t, core.QueryTypeEverything, q.QueryType)
	assert.Equal(t, "rust", q.QueryText)

	cfg, err := q.ParseConfig()
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, []string{"bbc-news", "wired"}, cfg.Sources)

	assert.Empty(t, queries[1].QueryConfig)
}

func TestLoadQueries(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "queries.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleQueries), 0644))
	queries, err := LoadQueries(yamlPath)
	require.NoError(t, err)
	assert.Len(t, queries, 2)

	jsonPath := filepath.Join(dir, "queries.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"queries":[
		{"id":3,"feedId":1,"queryType":"NEWSAPIV2_HEADLINES","queryConfig":{"country":"us"}}
	]}`), 0644))
	queries, err = LoadQueries(jsonPath)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.JSONEq(t, `{"country":"us"}`, string(queries[0].QueryConfig))
}

func TestLoadQueries_Invalid(t *testing.T) {
	dir := t.TempDir()

	noType := filepath.Join(dir, "notype.yaml")
	require.NoError(t, os.WriteFile(noType, []byte("queries:\n  - id: 1\n"), 0644))
	_, err := LoadQueries(noType)
	assert.ErrorIs(t, err, core.ErrInvalidQueryDefinition)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("queries: [\n"), 0644))
	_, err = LoadQueries(broken)
	assert.Error(t, err)

	_, err = LoadQueries(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
