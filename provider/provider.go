// Package provider enumerates the supported content providers and adapts the
// scraping engine's payloads into the unified model.
package provider

import (
	"strings"

	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/media"
	"github.com/spf13/viper"
)

// Provider is one named external content source, grouped into a category.
type Provider struct {
	Name     string
	Title    string
	Category media.Category
}

func (p Provider) String() string {
	return p.Title
}

// All returns the fixed set of supported providers. The set is enumerable on
// purpose; arbitrary sites are not supported.
func All() []Provider {
	return []Provider{
		{Name: "zoro", Title: "HiAnime", Category: media.CategoryAnime},
		{Name: "gogoanime", Title: "Gogoanime", Category: media.CategoryAnime},
		{Name: "animepahe", Title: "AnimePahe", Category: media.CategoryAnime},
		{Name: "flixhq", Title: "FlixHQ", Category: media.CategoryMovie},
		{Name: "dramacool", Title: "DramaCool", Category: media.CategoryMovie},
		{Name: "sflix", Title: "SFlix", Category: media.CategoryMovie},
		{Name: "mangadex", Title: "MangaDex", Category: media.CategoryManga},
		{Name: "mangaplus", Title: "MANGA Plus", Category: media.CategoryManga},
		{Name: "mangakakalot", Title: "Mangakakalot", Category: media.CategoryManga},
		{Name: "anilist", Title: "AniList", Category: media.CategoryMeta},
		{Name: "tmdb", Title: "TMDB", Category: media.CategoryMeta},
		{Name: "libgen", Title: "Library Genesis", Category: media.CategoryBook},
		{Name: "readlightnovels", Title: "ReadLightNovels", Category: media.CategoryNovel},
		{Name: "getcomics", Title: "GetComics", Category: media.CategoryComic},
		{Name: "ann", Title: "Anime News Network", Category: media.CategoryNews},
	}
}

// Get finds a provider by name, case-insensitively.
func Get(name string) (Provider, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range All() {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// ByCategory returns the providers serving one category.
func ByCategory(category media.Category) []Provider {
	var out []Provider
	for _, p := range All() {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// DefaultFor returns the configured default provider for a category, falling
// back to the first registered one.
func DefaultFor(category media.Category) Provider {
	var name string
	switch category {
	case media.CategoryAnime:
		name = viper.GetString(key.ProvidersDefaultAnime)
	case media.CategoryManga:
		name = viper.GetString(key.ProvidersDefaultManga)
	case media.CategoryMovie:
		name = viper.GetString(key.ProvidersDefaultMovie)
	}

	if p, ok := Get(name); ok && p.Category == category {
		return p
	}

	candidates := ByCategory(category)
	if len(candidates) == 0 {
		return Provider{}
	}
	return candidates[0]
}
