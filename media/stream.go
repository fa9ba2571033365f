package media

import "strings"

// PlayableSource is one resolved stream variant.
//
// IsM3U8 is a hint derived from the URL suffix when the upstream flag is
// absent, not an authoritative statement about the payload.
type PlayableSource struct {
	URL     string `json:"url"`
	Quality string `json:"quality,omitempty"`
	IsM3U8  bool   `json:"isM3U8"`
	IsDASH  bool   `json:"isDASH,omitempty"`
	Size    *int64 `json:"size,omitempty"`
}

// GuessHLS reports whether a URL looks like an HLS playlist.
func GuessHLS(url string) bool {
	return strings.Contains(url, ".m3u8")
}

// Subtitle is one caption track attached to a source result.
type Subtitle struct {
	URL  string `json:"url"`
	Lang string `json:"lang"`
}

// SkipEvent marks an intro/outro interval in seconds from stream start.
type SkipEvent struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SourceResult aggregates sources, subtitles and required headers for one episode.
//
// Headers must include Referer whenever the origin requires it for playback.
// Callers treat an empty Sources slice as failure, never as a valid result.
type SourceResult struct {
	Headers   map[string]string `json:"headers,omitempty"`
	Sources   []PlayableSource  `json:"sources"`
	Subtitles []Subtitle        `json:"subtitles,omitempty"`
	Intro     *SkipEvent        `json:"intro,omitempty"`
	Outro     *SkipEvent        `json:"outro,omitempty"`
}

// EpisodeServer is one hosting server option for an episode.
type EpisodeServer struct {
	Name string   `json:"name"`
	URL  string   `json:"url,omitempty"`
	Type SubOrDub `json:"type,omitempty"`
}
