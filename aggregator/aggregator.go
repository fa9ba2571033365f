// Package aggregator is the single entry point external callers use.
//
// Every operation accepts a provider name or category plus an identifier,
// routes to the right category converter, and folds in the extractor registry
// when a custom extractor claims the provider. All paths converge on the
// unified model; "not found" is an empty or nil result, never an error.
package aggregator

import (
	"net/url"

	"github.com/Hoodgail/watchlist/extractor"
	"github.com/Hoodgail/watchlist/extractor/hianime"
	"github.com/Hoodgail/watchlist/log"
	"github.com/Hoodgail/watchlist/mangaplus"
	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/provider"
	"github.com/Hoodgail/watchlist/relation"
	"github.com/Hoodgail/watchlist/sdk"
)

// Aggregator routes requests across converters, extractors and the chapter
// pipeline. The registry is built once at construction and read-only after.
type Aggregator struct {
	registry   *extractor.Registry
	converters map[media.Category]provider.Converter
	chapters   *mangaplus.Pipeline
	relations  *relation.Store
}

// New wires the production aggregator: the engine-backed converters, the
// custom extractors, the chapter pipeline and the relation registry.
func New() *Aggregator {
	registry := extractor.NewRegistry()
	registry.Register(hianime.New())

	return &Aggregator{
		registry:   registry,
		converters: provider.Converters(sdk.New()),
		chapters:   mangaplus.New(),
		relations:  relation.NewStore(),
	}
}

// NewWithParts assembles an aggregator from injected collaborators, used in
// tests.
func NewWithParts(
	registry *extractor.Registry,
	converters map[media.Category]provider.Converter,
	chapters *mangaplus.Pipeline,
	relations *relation.Store,
) *Aggregator {
	return &Aggregator{
		registry:   registry,
		converters: converters,
		chapters:   chapters,
		relations:  relations,
	}
}

func (a *Aggregator) resolve(providerName string) (provider.Provider, provider.Converter, bool) {
	p, ok := provider.Get(providerName)
	if !ok {
		log.Warnf("unknown provider %q", providerName)
		return provider.Provider{}, nil, false
	}

	converter, ok := a.converters[p.Category]
	if !ok {
		log.Warnf("no converter wired for category %s", p.Category)
		return provider.Provider{}, nil, false
	}

	return p, converter, true
}

// Search queries one provider and returns a normalized page. Failures and
// unknown providers collapse to an empty page.
func (a *Aggregator) Search(providerName, query string, page int) media.Paginated[media.SearchResult] {
	p, converter, ok := a.resolve(providerName)
	if !ok {
		return media.EmptyPage[media.SearchResult](page)
	}

	return converter.Search(p.Name, query, page)
}

// GetInfo returns the full detail record for one title, or nil when the
// provider cannot resolve it. Successful resolutions are bound to the
// relation registry best effort.
func (a *Aggregator) GetInfo(providerName, id string) *media.MediaInfo {
	p, converter, ok := a.resolve(providerName)
	if !ok {
		return nil
	}

	info := converter.Info(p.Name, id)
	if info != nil && info.Title != "" {
		a.relations.Bind(info.Title, p.Name, info.ID)
	}
	return info
}

// GetEpisodeSources resolves playable sources for one episode.
//
// When a registered extractor claims the provider, the registry runs first;
// the engine converter is the fallback for both uncovered providers and
// extractor results that signal fallback. A terminal extractor failure ends
// the attempt without consulting the engine.
func (a *Aggregator) GetEpisodeSources(providerName, episodeID string, audio media.SubOrDub, server string) *media.SourceResult {
	p, converter, ok := a.resolve(providerName)
	if !ok {
		return nil
	}

	video := p.Category == media.CategoryAnime || p.Category == media.CategoryMovie || p.Category == media.CategoryMeta
	if video && a.registry.Covers(p.Name) {
		result := a.registry.Extract(p.Name, extractor.Context{
			EpisodeID: episodeID,
			Server:    server,
			SubOrDub:  audio,
		})

		if sources, done := result.Sources(); done {
			return sources
		}
		if !result.ShouldFallback() {
			log.Errorf("extraction for %s failed terminally: %s", p.Name, result.Err())
			return nil
		}
		log.Warnf("extraction for %s failed, falling back to engine: %s", p.Name, result.Err())
	}

	params := url.Values{}
	if audio != "" {
		params.Set("subOrDub", string(audio))
	}
	if server != "" {
		params.Set("server", server)
	}
	return converter.EpisodeSources(p.Name, episodeID, params)
}

// GetEpisodeServers lists the hosting server options for one episode.
func (a *Aggregator) GetEpisodeServers(providerName, episodeID string) []media.EpisodeServer {
	p, converter, ok := a.resolve(providerName)
	if !ok {
		return nil
	}

	return converter.EpisodeServers(p.Name, episodeID)
}

// GetChapterPages resolves the decrypted page list for one chapter. The
// chapter pipeline owns its provider; every other manga provider goes through
// the engine.
func (a *Aggregator) GetChapterPages(providerName, chapterID string) *media.ChapterPages {
	p, converter, ok := a.resolve(providerName)
	if !ok {
		return nil
	}

	if p.Name == mangaplus.ProviderName {
		pages, err := a.chapters.ChapterPages(chapterID)
		if err != nil {
			log.Errorf("chapter extraction for %s failed: %s", chapterID, err)
			return nil
		}
		return pages
	}

	return converter.ChapterPages(p.Name, chapterID)
}

// Trending returns the curated trending feed for a category using its
// default provider.
func (a *Aggregator) Trending(category media.Category, page int) media.Paginated[media.SearchResult] {
	converter, ok := a.converters[category]
	if !ok {
		return media.EmptyPage[media.SearchResult](page)
	}

	p := provider.DefaultFor(category)
	if p.Name == "" {
		return media.EmptyPage[media.SearchResult](page)
	}
	return converter.Trending(p.Name, page)
}

// Recent returns the recent-releases feed for a category using its default
// provider.
func (a *Aggregator) Recent(category media.Category, page int) media.Paginated[media.SearchResult] {
	converter, ok := a.converters[category]
	if !ok {
		return media.EmptyPage[media.SearchResult](page)
	}

	p := provider.DefaultFor(category)
	if p.Name == "" {
		return media.EmptyPage[media.SearchResult](page)
	}
	return converter.Recent(p.Name, page)
}

// FindClosest resolves a title against one provider's search results. A
// previously bound relation takes precedence over fuzzy matching when it
// still appears in the results.
func (a *Aggregator) FindClosest(providerName, title string) *media.SearchResult {
	p, converter, ok := a.resolve(providerName)
	if !ok {
		return nil
	}

	page := converter.Search(p.Name, title, 1)

	if bound, has := a.relations.Get(title, p.Name).Get(); has {
		for _, candidate := range page.Results {
			if candidate.ID == bound {
				return &candidate
			}
		}
	}

	closest, found := relation.FindClosest(title, page.Results).Get()
	if !found {
		return nil
	}

	a.relations.Bind(title, p.Name, closest.ID)
	return &closest
}
