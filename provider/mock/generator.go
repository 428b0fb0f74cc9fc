package mock

import (
	"strconv"
	"time"

	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/provider"
)

// mockEpoch anchors the published timestamps of mock articles.
var mockEpoch = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// BuildMockResponse synthesizes a single-article response for a query.
// Every field is derived from the query's feed identifier, so the same feed
// always yields the same article and therefore the same content hash.
func BuildMockResponse(q *core.QueryDefinition) *provider.Response {
	feed := strconv.FormatInt(q.FeedID, 10)
	return &provider.Response{
		Status:       "test-status-" + feed,
		TotalResults: 1,
		Articles:     []provider.Article{buildMockArticle(q.FeedID, feed)},
	}
}

func buildMockArticle(feedID int64, feed string) provider.Article {
	return provider.Article{
		Source:      buildMockSource(feed),
		Author:      "test-author" + feed,
		Title:       "test-title" + feed,
		Description: "test-description" + feed,
		URL:         "test-url" + feed,
		URLToImage:  "test-url-to-image" + feed,
		PublishedAt: mockEpoch.Add(time.Duration(feedID) * time.Minute).Format(time.RFC3339),
		Content:     "test-content" + feed,
	}
}

func buildMockSource(feed string) *provider.Source {
	return &provider.Source{
		ID:          "test-source-id-" + feed,
		Name:        "test-source-name-" + feed,
		Description: "test-source-description-" + feed,
		URL:         "test-source-url-" + feed,
		Category:    "test-source-category-" + feed,
		Language:    "test-source-language-" + feed,
		Country:     "test-source-country-" + feed,
	}
}
