package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// QueryType identifies which provider endpoint a query definition targets.
type QueryType string

const (
	// QueryTypeEverything searches the provider's full article archive.
	QueryTypeEverything QueryType = "NEWSAPIV2_EVERYTHING"
	// QueryTypeHeadlines queries the provider's top headlines.
	QueryTypeHeadlines QueryType = "NEWSAPIV2_HEADLINES"
)

// Normalize returns the canonical upper-case form of the query type.
// Query types arrive from subscription storage with inconsistent casing.
func (t QueryType) Normalize() QueryType {
	return QueryType(strings.ToUpper(strings.TrimSpace(string(t))))
}

// ErrorKind classifies a failed query.
type ErrorKind int

const (
	// ErrorKindNone marks a successful query.
	ErrorKindNone ErrorKind = iota
	// ErrorKindOther covers every failure the importer can observe.
	ErrorKindOther
)

// String returns the wire name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return ""
	case ErrorKindOther:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the kind by name so metrics serialize readably.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *ErrorKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*k = ErrorKindNone
	case "OTHER":
		*k = ErrorKindOther
	default:
		return fmt.Errorf("unknown error kind %q", text)
	}
	return nil
}

// QueryDefinition is a subscription's request for content.
// It is owned by the caller and never modified by the importer.
type QueryDefinition struct {
	ID          int64           `json:"id" yaml:"id"`
	FeedID      int64           `json:"feedId" yaml:"feedId"`
	Username    string          `json:"username" yaml:"username"`
	QueryText   string          `json:"queryText" yaml:"queryText"`
	QueryType   QueryType       `json:"queryType" yaml:"queryType"`
	QueryConfig json.RawMessage `json:"queryConfig,omitempty" yaml:"-"`
}

// QueryConfig is the decoded form of QueryDefinition.QueryConfig.
type QueryConfig struct {
	Sources  []string
	Language string
	Country  string
	Category string
}

// rawQueryConfig mirrors the stored JSON. Sources may be plain names or
// objects carrying a name property.
type rawQueryConfig struct {
	Sources  []json.RawMessage `json:"sources"`
	Language string            `json:"language"`
	Country  string            `json:"country"`
	Category string            `json:"category"`
}

// ParseConfig decodes the opaque query configuration.
// A missing or null configuration yields an empty QueryConfig.
func (q *QueryDefinition) ParseConfig() (*QueryConfig, error) {
	cfg := &QueryConfig{}
	trimmed := strings.TrimSpace(string(q.QueryConfig))
	if trimmed == "" || trimmed == "null" {
		return cfg, nil
	}

	var raw rawQueryConfig
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, configErrorf("query %d: malformed query config: %v", q.ID, err)
	}

	for _, src := range raw.Sources {
		name, err := sourceName(src)
		if err != nil {
			return nil, configErrorf("query %d: malformed source entry: %v", q.ID, err)
		}
		if name != "" {
			cfg.Sources = append(cfg.Sources, name)
		}
	}
	cfg.Language = strings.TrimSpace(raw.Language)
	cfg.Country = strings.TrimSpace(raw.Country)
	cfg.Category = strings.TrimSpace(raw.Category)

	return cfg, nil
}

func sourceName(src json.RawMessage) (string, error) {
	var name string
	if err := json.Unmarshal(src, &name); err == nil {
		return strings.TrimSpace(name), nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(src, &obj); err != nil {
		return "", err
	}
	return strings.TrimSpace(obj.Name), nil
}

// ContentRecord is the canonical unit of imported content.
// Two records with the same ContentHash are the same logical entity.
type ContentRecord struct {
	ImporterID      string
	FeedID          int64
	QueryID         int64
	ImporterDesc    string // trimmed query text the record was imported for
	ObjectSource    string // canonical serialized form of the raw item
	SourceName      string
	SourceURL       string
	Title           string
	Description     string
	BodyContent     string // empty when the provider returned no content
	CanonicalURL    string
	ImageURL        string
	ImportTimestamp time.Time
	ContentHash     string
	Authors         []string
	Categories      []string
	PublishedAt     *time.Time
	Username        string
}

// QueryMetric records the outcome of one dispatched query.
type QueryMetric struct {
	QueryID      int64     `json:"queryId"`
	Timestamp    time.Time `json:"timestamp"`
	SuccessCount int       `json:"successCount"`
	ErrorKind    ErrorKind `json:"errorKind,omitempty"`
	ErrorDetail  string    `json:"errorDetail,omitempty"`
}

// Failed reports whether the metric describes a failed query.
func (m *QueryMetric) Failed() bool {
	return m.ErrorKind != ErrorKindNone
}

// NewSuccessMetric creates a metric for a query that imported count items.
func NewSuccessMetric(queryID int64, ts time.Time, count int) *QueryMetric {
	return &QueryMetric{
		QueryID:      queryID,
		Timestamp:    ts,
		SuccessCount: count,
	}
}

// NewFailureMetric creates a metric for a query that failed with err.
func NewFailureMetric(queryID int64, ts time.Time, err error) *QueryMetric {
	m := &QueryMetric{
		QueryID:   queryID,
		Timestamp: ts,
		ErrorKind: ErrorKindOther,
	}
	if err != nil {
		m.ErrorDetail = err.Error()
	}
	return m
}

// ImportResult is the output of one import batch.
type ImportResult struct {
	Records []*ContentRecord // deduplicated, unordered
	Metrics []*QueryMetric   // completion order, one per dispatched query
}

// EmptyResult returns a result with no records and no metrics.
func EmptyResult() *ImportResult {
	return &ImportResult{
		Records: []*ContentRecord{},
		Metrics: []*QueryMetric{},
	}
}

// SuccessCount returns the number of queries that completed without error.
func (r *ImportResult) SuccessCount() int {
	n := 0
	for _, m := range r.Metrics {
		if !m.Failed() {
			n++
		}
	}
	return n
}

// ErrorCount returns the number of failed queries.
func (r *ImportResult) ErrorCount() int {
	return len(r.Metrics) - r.SuccessCount()
}
