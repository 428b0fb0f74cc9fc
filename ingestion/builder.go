package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/provider"
)

// ImporterID tags every record produced by this importer.
const ImporterID = "NewsApiV2"

// BuildRecord converts one raw article into a content record.
// The record's hash covers the feed id and the article's canonical JSON
// form, so equal articles imported for one feed collapse to one record.
// A malformed published timestamp yields an error matching core.ErrItemParse.
func BuildRecord(feedID, queryID int64, queryText, username string, article *provider.Article, importedAt time.Time) (*core.ContentRecord, error) {
	if article == nil {
		return nil, fmt.Errorf("%w: nil article", core.ErrItemParse)
	}

	canonical, err := json.Marshal(article)
	if err != nil {
		return nil, fmt.Errorf("%w: canonicalize: %w", core.ErrItemParse, err)
	}

	publishedAt, err := parsePublishedAt(article.PublishedAt)
	if err != nil {
		return nil, err
	}

	record := &core.ContentRecord{
		ImporterID:      ImporterID,
		FeedID:          feedID,
		QueryID:         queryID,
		ImporterDesc:    strings.TrimSpace(queryText),
		ObjectSource:    string(canonical),
		Title:           article.Title,
		Description:     article.Description,
		CanonicalURL:    article.URL,
		ImageURL:        article.URLToImage,
		ImportTimestamp: importedAt,
		ContentHash:     core.ContentHash(feedID, string(canonical)),
		Authors:         []string{},
		Categories:      []string{},
		PublishedAt:     publishedAt,
		Username:        username,
	}
	if strings.TrimSpace(article.Content) != "" {
		record.BodyContent = article.Content
	}
	if article.Author != "" {
		record.Authors = append(record.Authors, article.Author)
	}
	if src := article.Source; src != nil {
		record.SourceName = src.Name
		record.SourceURL = src.URL
		if src.Category != "" {
			record.Categories = append(record.Categories, src.Category)
		}
	}

	return record, nil
}

// BuildRecords converts every article of a response.
// Articles that fail to convert are skipped; their errors are joined.
func BuildRecords(q *core.QueryDefinition, resp *provider.Response, importedAt time.Time) ([]*core.ContentRecord, error) {
	if resp == nil {
		return nil, nil
	}

	records := make([]*core.ContentRecord, 0, len(resp.Articles))
	var errs []error
	for idx := range resp.Articles {
		record, err := BuildRecord(q.FeedID, q.ID, q.QueryText, q.Username, &resp.Articles[idx], importedAt)
		if err != nil {
			errs = append(errs, fmt.Errorf("article %d: %w", idx, err))
			continue
		}
		records = append(records, record)
	}

	return records, errors.Join(errs...)
}

func parsePublishedAt(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("%w: published timestamp %q: %w", core.ErrItemParse, s, err)
	}
	t = t.UTC()
	return &t, nil
}
