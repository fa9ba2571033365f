package media

// SearchResult is one item of a provider's search response.
//
// ID is unique within a single provider and category. Provider is always set
// by the converter that produced the value.
type SearchResult struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	AltTitles     []string  `json:"altTitles,omitempty"`
	URL           string    `json:"url,omitempty"`
	Image         string    `json:"image,omitempty"`
	Description   string    `json:"description,omitempty"`
	Type          MediaType `json:"type,omitempty"`
	Status        Status    `json:"status,omitempty"`
	ReleaseDate   string    `json:"releaseDate,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	Genres        []string  `json:"genres,omitempty"`
	TotalEpisodes *int      `json:"totalEpisodes,omitempty"`
	TotalChapters *int      `json:"totalChapters,omitempty"`
	Provider      string    `json:"provider"`
}

// Paginated is the envelope for list endpoints.
//
// HasNextPage=false with a non-empty Results is a valid last page.
type Paginated[T any] struct {
	CurrentPage  int  `json:"currentPage"`
	HasNextPage  bool `json:"hasNextPage"`
	TotalPages   *int `json:"totalPages,omitempty"`
	TotalResults *int `json:"totalResults,omitempty"`
	Results      []T  `json:"results"`
}

// EmptyPage returns the canonical empty envelope for a failed or empty lookup.
func EmptyPage[T any](page int) Paginated[T] {
	return Paginated[T]{CurrentPage: page, Results: []T{}}
}
