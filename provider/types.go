package provider

// Kind selects the provider endpoint for a Request.
type Kind int

const (
	// KindEverything targets the archive search endpoint.
	KindEverything Kind = iota + 1
	// KindHeadlines targets the top headlines endpoint.
	KindHeadlines
)

// String returns the endpoint name.
func (k Kind) String() string {
	switch k {
	case KindEverything:
		return "everything"
	case KindHeadlines:
		return "top-headlines"
	default:
		return "unknown"
	}
}

// Request holds the parameters of one provider call.
// Empty fields are omitted from the call.
type Request struct {
	Kind     Kind
	Q        string
	Language string
	Sources  string // comma-joined source ids
	Country  string // headlines only
	Category string // headlines only
	PageSize int
	Page     int
}

// Response is the raw result of one provider call.
type Response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// Article is one raw item returned by the provider.
// Field order is significant: it fixes the canonical JSON form used for hashing.
type Article struct {
	Source      *Source `json:"source,omitempty"`
	Author      string  `json:"author,omitempty"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url,omitempty"`
	URLToImage  string  `json:"urlToImage,omitempty"`
	PublishedAt string  `json:"publishedAt,omitempty"`
	Content     string  `json:"content,omitempty"`
}

// Source describes the publisher of an article.
type Source struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Category    string `json:"category,omitempty"`
	Language    string `json:"language,omitempty"`
	Country     string `json:"country,omitempty"`
}

// SourcesRequest filters a source listing.
type SourcesRequest struct {
	Category string
	Language string
	Country  string
}

// SourcesResponse is the result of a source listing.
type SourcesResponse struct {
	Status  string   `json:"status"`
	Sources []Source `json:"sources"`
}
