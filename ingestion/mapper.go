package ingestion

import (
	"strings"

	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/provider"
)

// MapQuery translates a query definition into a provider request.
// It never contacts the provider. Unsupported query types, malformed
// configuration and unknown enumeration keys yield an error matching
// core.ErrConfiguration.
func MapQuery(q *core.QueryDefinition) (*provider.Request, error) {
	if q == nil {
		return nil, core.ConfigError(core.ErrInvalidQueryDefinition, "nil query definition")
	}

	var kind provider.Kind
	switch q.QueryType.Normalize() {
	case core.QueryTypeEverything:
		kind = provider.KindEverything
	case core.QueryTypeHeadlines:
		kind = provider.KindHeadlines
	default:
		return nil, core.ConfigError(core.ErrUnsupportedQueryType, "query %d: %q", q.ID, q.QueryType)
	}

	cfg, err := q.ParseConfig()
	if err != nil {
		return nil, err
	}

	req := &provider.Request{Kind: kind}
	if strings.TrimSpace(q.QueryText) != "" {
		req.Q = q.QueryText
	}
	if cfg.Language != "" {
		if req.Language, err = provider.LookupLanguage(cfg.Language); err != nil {
			return nil, err
		}
	}

	if len(cfg.Sources) > 0 {
		req.Sources = strings.Join(cfg.Sources, ",")
		return req, nil
	}

	// Country and category only narrow headlines, and the provider rejects
	// them alongside explicit sources.
	if kind == provider.KindHeadlines {
		if cfg.Country != "" {
			if req.Country, err = provider.LookupCountry(cfg.Country); err != nil {
				return nil, err
			}
		}
		if cfg.Category != "" {
			if req.Category, err = provider.LookupCategory(cfg.Category); err != nil {
				return nil, err
			}
		}
	}

	return req, nil
}
