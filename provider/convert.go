package provider

import (
	"strconv"
	"strings"

	"github.com/Hoodgail/watchlist/media"
	"github.com/buger/jsonparser"
)

// The engine's payloads are duck-typed: the same field can be a string, a
// number, an object or absent depending on the provider. Every accessor here
// checks presence and type before use and returns the zero value otherwise.

func stringAt(data []byte, keys ...string) string {
	value, err := jsonparser.GetString(data, keys...)
	if err != nil {
		return ""
	}
	return value
}

// looseStringAt tolerates numeric values where a string is expected, which
// several providers emit for ids and years.
func looseStringAt(data []byte, keys ...string) string {
	value, dataType, _, err := jsonparser.Get(data, keys...)
	if err != nil {
		return ""
	}
	switch dataType {
	case jsonparser.String:
		s, _ := jsonparser.ParseString(value)
		return s
	case jsonparser.Number:
		return string(value)
	default:
		return ""
	}
}

func intAt(data []byte, keys ...string) *int {
	value, err := jsonparser.GetInt(data, keys...)
	if err != nil {
		return nil
	}
	n := int(value)
	return &n
}

func floatAt(data []byte, keys ...string) *float64 {
	value, err := jsonparser.GetFloat(data, keys...)
	if err != nil {
		return nil
	}
	return &value
}

func boolAt(data []byte, keys ...string) bool {
	value, err := jsonparser.GetBoolean(data, keys...)
	if err != nil {
		return false
	}
	return value
}

func stringsAt(data []byte, keys ...string) []string {
	var out []string
	_, _ = jsonparser.ArrayEach(data, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.String {
			return
		}
		if s, err := jsonparser.ParseString(item); err == nil && s != "" {
			out = append(out, s)
		}
	}, keys...)
	return out
}

// titleAt resolves a title that is either a plain string or an object of
// language variants, as meta providers emit.
func titleAt(data []byte, keys ...string) (title string, alts []string) {
	value, dataType, _, err := jsonparser.Get(data, keys...)
	if err != nil {
		return "", nil
	}

	switch dataType {
	case jsonparser.String:
		title, _ = jsonparser.ParseString(value)
		return title, nil
	case jsonparser.Object:
		for _, lang := range []string{"english", "userPreferred", "romaji", "native"} {
			variant := stringAt(value, lang)
			if variant == "" {
				continue
			}
			if title == "" {
				title = variant
			} else if variant != title {
				alts = append(alts, variant)
			}
		}
		return title, alts
	default:
		return "", nil
	}
}

func searchResultFrom(item []byte, providerName string) (media.SearchResult, bool) {
	id := looseStringAt(item, "id")
	if id == "" {
		return media.SearchResult{}, false
	}

	title, alts := titleAt(item, "title")
	result := media.SearchResult{
		ID:            id,
		Title:         title,
		AltTitles:     append(alts, stringsAt(item, "altTitles")...),
		URL:           stringAt(item, "url"),
		Image:         stringAt(item, "image"),
		Description:   stringAt(item, "description"),
		Type:          media.MediaType(stringAt(item, "type")),
		Status:        media.Status(stringAt(item, "status")),
		ReleaseDate:   looseStringAt(item, "releaseDate"),
		Rating:        floatAt(item, "rating"),
		Genres:        stringsAt(item, "genres"),
		TotalEpisodes: intAt(item, "totalEpisodes"),
		TotalChapters: intAt(item, "totalChapters"),
		Provider:      providerName,
	}
	if result.ReleaseDate == "" {
		result.ReleaseDate = looseStringAt(item, "year")
	}
	return result, true
}

func paginatedFrom(body []byte, requestedPage int, providerName string) media.Paginated[media.SearchResult] {
	page := media.EmptyPage[media.SearchResult](requestedPage)
	if current := intAt(body, "currentPage"); current != nil {
		page.CurrentPage = *current
	}
	page.HasNextPage = boolAt(body, "hasNextPage")
	page.TotalPages = intAt(body, "totalPages")
	page.TotalResults = intAt(body, "totalResults")

	_, _ = jsonparser.ArrayEach(body, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		if result, ok := searchResultFrom(item, providerName); ok {
			page.Results = append(page.Results, result)
		}
	}, "results")

	return page
}

func episodeFrom(item []byte) (media.Episode, bool) {
	id := looseStringAt(item, "id")
	if id == "" {
		return media.Episode{}, false
	}

	episode := media.Episode{
		ID:          id,
		Title:       stringAt(item, "title"),
		URL:         stringAt(item, "url"),
		ReleaseDate: looseStringAt(item, "releaseDate"),
		IsFiller:    boolAt(item, "isFiller"),
	}
	if number := intAt(item, "number"); number != nil {
		episode.Number = *number
	} else if raw := looseStringAt(item, "number"); raw != "" {
		if n, err := strconv.Atoi(strings.SplitN(raw, ".", 2)[0]); err == nil {
			episode.Number = n
		}
	}
	if season := intAt(item, "season"); season != nil {
		episode.Season = *season
	}
	return episode, true
}

func chapterFrom(item []byte) (media.Chapter, bool) {
	id := looseStringAt(item, "id")
	if id == "" {
		return media.Chapter{}, false
	}
	return media.Chapter{
		ID:          id,
		Number:      looseStringAt(item, "chapterNumber"),
		Title:       stringAt(item, "title"),
		Volume:      looseStringAt(item, "volumeNumber"),
		ReleaseDate: looseStringAt(item, "releaseDate"),
		Pages:       intAt(item, "pages"),
	}, true
}

func infoFrom(body []byte, providerName string) *media.MediaInfo {
	result, ok := searchResultFrom(body, providerName)
	if !ok {
		return nil
	}

	info := &media.MediaInfo{SearchResult: result}
	info.Studios = stringsAt(body, "studios")
	info.Directors = stringsAt(body, "directors")
	info.Actors = stringsAt(body, "actors")

	_, _ = jsonparser.ArrayEach(body, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		if episode, ok := episodeFrom(item); ok {
			info.Episodes = append(info.Episodes, episode)
		}
	}, "episodes")

	_, _ = jsonparser.ArrayEach(body, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		if chapter, ok := chapterFrom(item); ok {
			info.Chapters = append(info.Chapters, chapter)
		}
	}, "chapters")

	_, _ = jsonparser.ArrayEach(body, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		season := media.Season{ID: looseStringAt(item, "id"), Image: stringAt(item, "image")}
		if number := intAt(item, "season"); number != nil {
			season.Number = *number
		}
		_, _ = jsonparser.ArrayEach(item, func(ep []byte, epType jsonparser.ValueType, _ int, _ error) {
			if epType != jsonparser.Object {
				return
			}
			if episode, ok := episodeFrom(ep); ok {
				season.Episodes = append(season.Episodes, episode)
			}
		}, "episodes")
		info.Seasons = append(info.Seasons, season)
	}, "seasons")

	for field, target := range map[string]*[]media.SearchResult{
		"similar":         &info.Similar,
		"recommendations": &info.Recommendations,
	} {
		_, _ = jsonparser.ArrayEach(body, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
			if dataType != jsonparser.Object {
				return
			}
			if related, ok := searchResultFrom(item, providerName); ok {
				*target = append(*target, related)
			}
		}, field)
	}

	return info
}

func sourceResultFrom(body []byte) *media.SourceResult {
	result := &media.SourceResult{}

	_, _ = jsonparser.ArrayEach(body, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		url := stringAt(item, "url")
		if url == "" {
			return
		}
		source := media.PlayableSource{
			URL:     url,
			Quality: looseStringAt(item, "quality"),
			IsM3U8:  boolAt(item, "isM3U8") || media.GuessHLS(url),
			IsDASH:  boolAt(item, "isDASH"),
		}
		if size, err := jsonparser.GetInt(item, "size"); err == nil {
			source.Size = &size
		}
		result.Sources = append(result.Sources, source)
	}, "sources")

	if len(result.Sources) == 0 {
		return nil
	}

	_ = jsonparser.ObjectEach(body, func(name []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.String {
			return nil
		}
		if result.Headers == nil {
			result.Headers = map[string]string{}
		}
		header, _ := jsonparser.ParseString(value)
		result.Headers[string(name)] = header
		return nil
	}, "headers")

	_, _ = jsonparser.ArrayEach(body, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		url := stringAt(item, "url")
		if url == "" {
			return
		}
		result.Subtitles = append(result.Subtitles, media.Subtitle{URL: url, Lang: stringAt(item, "lang")})
	}, "subtitles")

	for field, target := range map[string]**media.SkipEvent{"intro": &result.Intro, "outro": &result.Outro} {
		start := intAt(body, field, "start")
		end := intAt(body, field, "end")
		if end != nil && *end > 0 {
			event := &media.SkipEvent{End: *end}
			if start != nil {
				event.Start = *start
			}
			*target = event
		}
	}

	return result
}

func serversFrom(body []byte) []media.EpisodeServer {
	var servers []media.EpisodeServer
	_, _ = jsonparser.ArrayEach(body, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		name := stringAt(item, "name")
		if name == "" {
			return
		}
		servers = append(servers, media.EpisodeServer{
			Name: name,
			URL:  stringAt(item, "url"),
			Type: media.SubOrDub(stringAt(item, "type")),
		})
	})
	return servers
}

func chapterPagesFrom(body []byte, chapterID string) media.ChapterPages {
	pages := media.ChapterPages{ChapterID: chapterID}
	_, _ = jsonparser.ArrayEach(body, func(item []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		img := stringAt(item, "img")
		if img == "" {
			img = stringAt(item, "url")
		}
		if img == "" {
			return
		}
		page := media.ChapterPage{Img: img}
		if number := intAt(item, "page"); number != nil {
			page.Page = *number
		} else {
			page.Page = len(pages.Pages) + 1
		}
		_ = jsonparser.ObjectEach(item, func(name []byte, value []byte, headerType jsonparser.ValueType, _ int) error {
			if headerType != jsonparser.String {
				return nil
			}
			if page.Headers == nil {
				page.Headers = map[string]string{}
			}
			header, _ := jsonparser.ParseString(value)
			page.Headers[string(name)] = header
			return nil
		}, "headers")
		pages.Pages = append(pages.Pages, page)
	})
	return pages
}
