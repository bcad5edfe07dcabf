package domain

// Recommendation defaults.
const (
	// DefaultNeighbours is the number of raw neighbours fetched from the index.
	DefaultNeighbours = 5

	// DefaultMaxRecommendations caps the list returned to the reader.
	DefaultMaxRecommendations = 3
)

// ArticleMeta is the metadata half of one catalog row.
// The vector half lives in the vector store at the same row index.
type ArticleMeta struct {
	// ID is the stable external identifier (the encyclopedia page id).
	ID string `json:"id"`

	// Title is the article title.
	Title string `json:"title"`
}

// Recommendation is a related article offered to the reader.
// It is transient and never persisted.
type Recommendation struct {
	Title string `json:"title"`
	ID    string `json:"id"`
}

// RecommendOptions configures a recommendation request.
type RecommendOptions struct {
	// K is the number of raw neighbours requested from the index.
	K int

	// MaxResults caps the filtered list.
	MaxResults int
}

// DefaultRecommendOptions returns K=5, MaxResults=3.
func DefaultRecommendOptions() RecommendOptions {
	return RecommendOptions{
		K:          DefaultNeighbours,
		MaxResults: DefaultMaxRecommendations,
	}
}

// WithDefaults fills zero or negative fields with defaults.
func (o RecommendOptions) WithDefaults() RecommendOptions {
	if o.K <= 0 {
		o.K = DefaultNeighbours
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxRecommendations
	}
	return o
}

// ArticleRef identifies an article found through the encyclopedia search.
type ArticleRef struct {
	Title  string `json:"title"`
	PageID string `json:"page_id"`
}

// ArticleView is everything shown to the reader for one article:
// where it lives, its lead paragraph, and what to read next.
type ArticleView struct {
	Title           string           `json:"title"`
	PageID          string           `json:"page_id"`
	URL             string           `json:"url"`
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}
