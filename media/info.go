package media

// MediaInfo is the full detail record for one title.
//
// Episodes and Chapters are mutually exclusive by media kind; their ordering
// is the provider-emitted order and is not guaranteed sorted.
type MediaInfo struct {
	SearchResult

	Studios         []string       `json:"studios,omitempty"`
	Directors       []string       `json:"directors,omitempty"`
	Actors          []string       `json:"actors,omitempty"`
	Episodes        []Episode      `json:"episodes,omitempty"`
	Chapters        []Chapter      `json:"chapters,omitempty"`
	Seasons         []Season       `json:"seasons,omitempty"`
	Similar         []SearchResult `json:"similar,omitempty"`
	Recommendations []SearchResult `json:"recommendations,omitempty"`
}

// Episode is one playable unit of a show.
//
// ID is opaque and provider-specific. Generic code never parses it; only the
// owning converter or extractor may.
type Episode struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	IsFiller    bool   `json:"isFiller,omitempty"`
	Season      int    `json:"season,omitempty"`
}

// Chapter is one readable unit of a manga or comic.
//
// Number is kept as a string because chapter numbering may be fractional
// ("10.5") or otherwise non-integral.
type Chapter struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Title       string `json:"title,omitempty"`
	Volume      string `json:"volume,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Pages       *int   `json:"pages,omitempty"`
}

// Season groups episodes for serial media.
type Season struct {
	ID       string    `json:"id"`
	Number   int       `json:"season"`
	Image    string    `json:"image,omitempty"`
	Episodes []Episode `json:"episodes,omitempty"`
}
