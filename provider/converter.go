package provider

import (
	"net/url"
	"strconv"

	"github.com/Hoodgail/watchlist/internal/cache"
	"github.com/Hoodgail/watchlist/log"
	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/sdk"
)

// Converter adapts one category of the scraping engine onto the unified
// model. Engine failures are soft: a converter logs and returns an empty or
// nil result instead of propagating, so callers never see a thrown error for
// a broken upstream.
type Converter interface {
	Category() media.Category

	Search(provider, query string, page int) media.Paginated[media.SearchResult]
	Info(provider, id string) *media.MediaInfo
	EpisodeSources(provider, episodeID string, params url.Values) *media.SourceResult
	EpisodeServers(provider, episodeID string) []media.EpisodeServer
	ChapterPages(provider, chapterID string) *media.ChapterPages
	Trending(provider string, page int) media.Paginated[media.SearchResult]
	Recent(provider string, page int) media.Paginated[media.SearchResult]
}

type converter struct {
	client   *sdk.Client
	category media.Category

	// Engine route names for the curated discovery shortcuts. Empty means
	// the category has no such feed.
	trendingPath string
	recentPath   string

	// Serial video categories resolve watch/servers; page-based categories
	// resolve chapter reads.
	supportsWatch bool
	supportsRead  bool
}

// NewAnime returns the converter for anime providers.
func NewAnime(client *sdk.Client) Converter {
	return &converter{client: client, category: media.CategoryAnime, trendingPath: "top-airing", recentPath: "recent-episodes", supportsWatch: true}
}

// NewMovies returns the converter for movie and TV providers.
func NewMovies(client *sdk.Client) Converter {
	return &converter{client: client, category: media.CategoryMovie, trendingPath: "trending", recentPath: "recent-shows", supportsWatch: true}
}

// NewManga returns the converter for manga providers.
func NewManga(client *sdk.Client) Converter {
	return &converter{client: client, category: media.CategoryManga, recentPath: "latest-updates", supportsRead: true}
}

// NewMeta returns the converter for metadata providers.
func NewMeta(client *sdk.Client) Converter {
	return &converter{client: client, category: media.CategoryMeta, trendingPath: "trending", recentPath: "recent-episodes", supportsWatch: true}
}

// NewBooks returns the converter for book providers.
func NewBooks(client *sdk.Client) Converter {
	return &converter{client: client, category: media.CategoryBook}
}

// NewNovels returns the converter for light novel providers.
func NewNovels(client *sdk.Client) Converter {
	return &converter{client: client, category: media.CategoryNovel, supportsRead: true}
}

// NewComics returns the converter for comic providers.
func NewComics(client *sdk.Client) Converter {
	return &converter{client: client, category: media.CategoryComic}
}

// NewNews returns the converter for news providers.
func NewNews(client *sdk.Client) Converter {
	return &converter{client: client, category: media.CategoryNews, recentPath: "recent-feeds"}
}

// Converters builds the full per-category converter set over one engine client.
func Converters(client *sdk.Client) map[media.Category]Converter {
	all := []Converter{
		NewAnime(client),
		NewMovies(client),
		NewManga(client),
		NewMeta(client),
		NewBooks(client),
		NewNovels(client),
		NewComics(client),
		NewNews(client),
	}

	out := make(map[media.Category]Converter, len(all))
	for _, c := range all {
		out[c.Category()] = c
	}
	return out
}

func (c *converter) Category() media.Category {
	return c.category
}

func (c *converter) route(provider string, parts ...string) string {
	path := c.category.String() + "/" + provider
	for _, part := range parts {
		path += "/" + part
	}
	return path
}

func (c *converter) Search(provider, query string, page int) media.Paginated[media.SearchResult] {
	if page < 1 {
		page = 1
	}

	cacheKey := cache.GenerateKey(query+"#"+strconv.Itoa(page), provider)
	var cached media.Paginated[media.SearchResult]
	if cache.Read(cacheKey, &cached) {
		return cached
	}

	params := url.Values{"page": {strconv.Itoa(page)}}
	body, err := c.client.Get(c.route(provider, url.PathEscape(query)), params)
	if err != nil {
		log.Warnf("search via %s failed: %s", provider, err)
		return media.EmptyPage[media.SearchResult](page)
	}

	result := paginatedFrom(body, page, provider)
	if len(result.Results) > 0 {
		if err := cache.Write(cacheKey, result); err != nil {
			log.Warnf("search cache write failed: %s", err)
		}
	}
	return result
}

func (c *converter) Info(provider, id string) *media.MediaInfo {
	body, err := c.client.Get(c.route(provider, "info"), url.Values{"id": {id}})
	if err != nil {
		log.Warnf("info via %s failed: %s", provider, err)
		return nil
	}

	return infoFrom(body, provider)
}

func (c *converter) EpisodeSources(provider, episodeID string, params url.Values) *media.SourceResult {
	if !c.supportsWatch {
		return nil
	}

	merged := url.Values{"episodeId": {episodeID}}
	for name, values := range params {
		merged[name] = values
	}

	body, err := c.client.Get(c.route(provider, "watch"), merged)
	if err != nil {
		log.Warnf("sources via %s failed: %s", provider, err)
		return nil
	}

	return sourceResultFrom(body)
}

func (c *converter) EpisodeServers(provider, episodeID string) []media.EpisodeServer {
	if !c.supportsWatch {
		return nil
	}

	body, err := c.client.Get(c.route(provider, "servers"), url.Values{"episodeId": {episodeID}})
	if err != nil {
		log.Warnf("servers via %s failed: %s", provider, err)
		return nil
	}

	return serversFrom(body)
}

func (c *converter) ChapterPages(provider, chapterID string) *media.ChapterPages {
	if !c.supportsRead {
		return nil
	}

	body, err := c.client.Get(c.route(provider, "read"), url.Values{"chapterId": {chapterID}})
	if err != nil {
		log.Warnf("pages via %s failed: %s", provider, err)
		return nil
	}

	pages := chapterPagesFrom(body, chapterID)
	if len(pages.Pages) == 0 {
		return nil
	}
	return &pages
}

func (c *converter) Trending(provider string, page int) media.Paginated[media.SearchResult] {
	return c.feed(provider, c.trendingPath, page)
}

func (c *converter) Recent(provider string, page int) media.Paginated[media.SearchResult] {
	return c.feed(provider, c.recentPath, page)
}

func (c *converter) feed(provider, path string, page int) media.Paginated[media.SearchResult] {
	if page < 1 {
		page = 1
	}
	if path == "" {
		return media.EmptyPage[media.SearchResult](page)
	}

	body, err := c.client.Get(c.route(provider, path), url.Values{"page": {strconv.Itoa(page)}})
	if err != nil {
		log.Warnf("%s feed via %s failed: %s", path, provider, err)
		return media.EmptyPage[media.SearchResult](page)
	}

	return paginatedFrom(body, page, provider)
}
