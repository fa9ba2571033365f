package extractor

import "github.com/Hoodgail/watchlist/media"

// Context carries the caller's request into an extractor.
//
// EpisodeID is provider-specific and opaque to everything but the extractor
// that owns the provider; extractors validate it before use.
type Context struct {
	EpisodeID string
	MediaID   string
	Server    string
	SubOrDub  media.SubOrDub
	Extra     map[string]string
}

// Extractor resolves playable sources for providers it declares support for,
// bypassing the generic scraping engine.
type Extractor interface {
	// Name identifies the extractor in logs and debug output.
	Name() string

	// Providers lists the provider names this extractor claims.
	Providers() []string

	// Priority orders extractors claiming the same provider; higher wins.
	Priority() int

	// CanHandle reports whether the extractor accepts this request.
	CanHandle(ec Context) bool

	// Extract resolves sources. It never panics across this boundary; every
	// failure is captured in the returned Result.
	Extract(ec Context) Result
}
