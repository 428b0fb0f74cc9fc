package ingestion

import (
	"testing"
	"time"

	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testImportTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func testArticle() *provider.Article {
	return &provider.Article{
		Source:      &provider.Source{ID: "wired", Name: "Wired", URL: "https://wired.com", Category: "technology"},
		Author:      "Jane Doe",
		Title:       "Rust 2.0",
		Description: "A new edition",
		URL:         "https://wired.com/rust",
		URLToImage:  "https://wired.com/rust.png",
		PublishedAt: "2024-04-30T18:15:00Z",
		Content:     "Body",
	}
}

func TestBuildRecord(t *testing.T) {
	record, err := BuildRecord(7, 3, "  rust  ", "alice", testArticle(), testImportTime)
	require.NoError(t, err)

	assert.Equal(t, ImporterID, record.ImporterID)
	assert.Equal(t, int64(7), record.FeedID)
	assert.Equal(t, int64(3), record.QueryID)
	assert.Equal(t, "rust", record.ImporterDesc)
	assert.Equal(t, "Wired", record.SourceName)
	assert.Equal(t, "https://wired.com", record.SourceURL)
	assert.Equal(t, "Rust 2.0", record.Title)
	assert.Equal(t, "A new edition", record.Description)
	assert.Equal(t, "Body", record.BodyContent)
	assert.Equal(t, "https://wired.com/rust", record.CanonicalURL)
	assert.Equal(t, "https://wired.com/rust.png", record.ImageURL)
	assert.Equal(t, testImportTime, record.ImportTimestamp)
	assert.Equal(t, []string{"Jane Doe"}, record.Authors)
	assert.Equal(t, []string{"technology"}, record.Categories)
	assert.Equal(t, "alice", record.Username)
	require.NotNil(t, record.PublishedAt)
	assert.Equal(t, time.Date(2024, 4, 30, 18, 15, 0, 0, time.UTC), *record.PublishedAt)

	assert.Equal(t, core.ContentHash(7, record.ObjectSource), record.ContentHash)
	assert.Contains(t, record.ObjectSource, `"title":"Rust 2.0"`)
}

func TestBuildRecord_Deterministic(t *testing.T) {
	a, err := BuildRecord(7, 1, "x", "alice", testArticle(), testImportTime)
	require.NoError(t, err)
	b, err := BuildRecord(7, 2, "y", "bob", testArticle(), testImportTime.Add(time.Hour))
	require.NoError(t, err)
	c, err := BuildRecord(8, 1, "x", "alice", testArticle(), testImportTime)
	require.NoError(t, err)

	assert.Equal(t, a.ContentHash, b.ContentHash, "hash depends only on feed and payload")
	assert.NotEqual(t, a.ContentHash, c.ContentHash, "feeds partition the hash space")
}

func TestBuildRecord_OptionalFields(t *testing.T) {
	article := &provider.Article{Title: "Bare", Content: "   "}

	record, err := BuildRecord(1, 1, "", "", article, testImportTime)
	require.NoError(t, err)

	assert.Empty(t, record.BodyContent)
	assert.Empty(t, record.SourceName)
	assert.Empty(t, record.Authors)
	assert.NotNil(t, record.Authors)
	assert.Empty(t, record.Categories)
	assert.Nil(t, record.PublishedAt)
}

func TestBuildRecord_FractionalTimestamp(t *testing.T) {
	article := testArticle()
	article.PublishedAt = "2024-04-30T18:15:00.123+02:00"

	record, err := BuildRecord(1, 1, "", "", article, testImportTime)
	require.NoError(t, err)
	require.NotNil(t, record.PublishedAt)
	assert.Equal(t, time.UTC, record.PublishedAt.Location())
	assert.Equal(t, 16, record.PublishedAt.Hour())
}

func TestBuildRecord_MalformedTimestamp(t *testing.T) {
	article := testArticle()
	article.PublishedAt = "yesterday"

	record, err := BuildRecord(1, 1, "", "", article, testImportTime)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, core.ErrItemParse)
}

func TestBuildRecords_SkipsMalformed(t *testing.T) {
	bad := *testArticle()
	bad.PublishedAt = "not-a-time"
	other := *testArticle()
	other.Title = "Another"

	resp := &provider.Response{Articles: []provider.Article{*testArticle(), bad, other}}
	q := &core.QueryDefinition{ID: 4, FeedID: 2, Username: "alice"}

	records, err := BuildRecords(q, resp, testImportTime)
	assert.ErrorIs(t, err, core.ErrItemParse)
	require.Len(t, records, 2)
	assert.Equal(t, "Rust 2.0", records[0].Title)
	assert.Equal(t, "Another", records[1].Title)
}

func TestBuildRecords_NilResponse(t *testing.T) {
	records, err := BuildRecords(&core.QueryDefinition{}, nil, testImportTime)
	assert.NoError(t, err)
	assert.Empty(t, records)
}
