package aggregator

import (
	"net/url"
	"testing"

	"github.com/Hoodgail/watchlist/extractor"
	"github.com/Hoodgail/watchlist/filesystem"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/mangaplus"
	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/provider"
	"github.com/Hoodgail/watchlist/relation"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

type fakeConverter struct {
	category media.Category

	searchCalls  int
	watchCalls   int
	serverCalls  int
	readCalls    int
	feedCalls    int
	lastQuery    string
	lastEpisode  string
	lastParams   url.Values
	sources      *media.SourceResult
	info         *media.MediaInfo
	results      []media.SearchResult
	servers      []media.EpisodeServer
	chapterPages *media.ChapterPages
}

func (f *fakeConverter) Category() media.Category { return f.category }

func (f *fakeConverter) Search(_, query string, page int) media.Paginated[media.SearchResult] {
	f.searchCalls++
	f.lastQuery = query
	out := media.EmptyPage[media.SearchResult](page)
	out.Results = f.results
	return out
}

func (f *fakeConverter) Info(string, string) *media.MediaInfo { return f.info }

func (f *fakeConverter) EpisodeSources(_, episodeID string, params url.Values) *media.SourceResult {
	f.watchCalls++
	f.lastEpisode = episodeID
	f.lastParams = params
	return f.sources
}

func (f *fakeConverter) EpisodeServers(string, string) []media.EpisodeServer {
	f.serverCalls++
	return f.servers
}

func (f *fakeConverter) ChapterPages(string, string) *media.ChapterPages {
	f.readCalls++
	return f.chapterPages
}

func (f *fakeConverter) Trending(string, int) media.Paginated[media.SearchResult] {
	f.feedCalls++
	out := media.EmptyPage[media.SearchResult](1)
	out.Results = f.results
	return out
}

func (f *fakeConverter) Recent(string, int) media.Paginated[media.SearchResult] {
	f.feedCalls++
	out := media.EmptyPage[media.SearchResult](1)
	out.Results = f.results
	return out
}

type fakeExtractor struct {
	providers []string
	result    extractor.Result
	calls     int
}

func (f *fakeExtractor) Name() string                     { return "fake" }
func (f *fakeExtractor) Providers() []string              { return f.providers }
func (f *fakeExtractor) Priority() int                    { return 1 }
func (f *fakeExtractor) CanHandle(extractor.Context) bool { return true }
func (f *fakeExtractor) Extract(extractor.Context) extractor.Result {
	f.calls++
	return f.result
}

func deadPipeline() *mangaplus.Pipeline {
	return mangaplus.NewWithFetcher(func(string, map[string]string) ([]byte, int, error) {
		return []byte("gone"), 404, nil
	})
}

func build(registry *extractor.Registry, converters map[media.Category]provider.Converter) *Aggregator {
	return NewWithParts(registry, converters, deadPipeline(), relation.NewStore())
}

func TestRouting(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	Convey("Facade routing", t, func() {
		anime := &fakeConverter{category: media.CategoryAnime}
		manga := &fakeConverter{category: media.CategoryManga}
		converters := map[media.Category]provider.Converter{
			media.CategoryAnime: anime,
			media.CategoryManga: manga,
		}

		Convey("Search routes by the provider's category", func() {
			anime.results = []media.SearchResult{{ID: "x", Title: "X", Provider: "zoro"}}
			agg := build(extractor.NewRegistry(), converters)

			page := agg.Search("zoro", "x", 1)
			So(anime.searchCalls, ShouldEqual, 1)
			So(manga.searchCalls, ShouldEqual, 0)
			So(page.Results, ShouldHaveLength, 1)
		})

		Convey("An unknown provider yields an empty page without a call", func() {
			agg := build(extractor.NewRegistry(), converters)

			page := agg.Search("nonsense", "x", 4)
			So(page.CurrentPage, ShouldEqual, 4)
			So(page.Results, ShouldBeEmpty)
			So(anime.searchCalls, ShouldEqual, 0)
		})

		Convey("A category without a wired converter is a soft failure", func() {
			agg := build(extractor.NewRegistry(), converters)

			So(agg.GetInfo("flixhq", "some-movie"), ShouldBeNil)
		})

		Convey("Servers go straight to the converter", func() {
			anime.servers = []media.EpisodeServer{{Name: "HD-1"}}
			agg := build(extractor.NewRegistry(), converters)

			servers := agg.GetEpisodeServers("zoro", "ep")
			So(servers, ShouldHaveLength, 1)
			So(anime.serverCalls, ShouldEqual, 1)
		})
	})
}

func TestSourceRouting(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	engineSources := &media.SourceResult{Sources: []media.PlayableSource{{URL: "https://engine.example/master.m3u8", IsM3U8: true}}}
	customSources := &media.SourceResult{Sources: []media.PlayableSource{{URL: "https://custom.example/master.m3u8", IsM3U8: true}}}

	Convey("Episode source routing", t, func() {
		anime := &fakeConverter{category: media.CategoryAnime, sources: engineSources}
		converters := map[media.Category]provider.Converter{media.CategoryAnime: anime}

		Convey("An uncovered provider routes directly to the engine", func() {
			registry := extractor.NewRegistry()
			agg := build(registry, converters)

			sources := agg.GetEpisodeSources("gogoanime", "ep-1", media.Sub, "")
			So(sources, ShouldEqual, engineSources)
			So(anime.watchCalls, ShouldEqual, 1)
			So(anime.lastParams.Get("subOrDub"), ShouldEqual, "sub")
		})

		Convey("A covered provider tries the extractor first", func() {
			ext := &fakeExtractor{providers: []string{"zoro"}, result: extractor.Ok(customSources)}
			registry := extractor.NewRegistry()
			registry.Register(ext)
			agg := build(registry, converters)

			sources := agg.GetEpisodeSources("zoro", "sg$episode$3", media.Sub, "hd-1")
			So(sources, ShouldEqual, customSources)
			So(ext.calls, ShouldEqual, 1)
			So(anime.watchCalls, ShouldEqual, 0)
		})

		Convey("A fallback failure hands off to the engine", func() {
			ext := &fakeExtractor{
				providers: []string{"zoro"},
				result:    extractor.Fail(extractor.NewError(extractor.KindNetwork, "upstream down", nil), true),
			}
			registry := extractor.NewRegistry()
			registry.Register(ext)
			agg := build(registry, converters)

			sources := agg.GetEpisodeSources("zoro", "sg$episode$3", media.Sub, "")
			So(sources, ShouldEqual, engineSources)
			So(ext.calls, ShouldEqual, 1)
			So(anime.watchCalls, ShouldEqual, 1)
		})

		Convey("A terminal failure never consults the engine", func() {
			ext := &fakeExtractor{
				providers: []string{"zoro"},
				result:    extractor.Fail(extractor.NewError(extractor.KindFormat, "bad id", nil), false),
			}
			registry := extractor.NewRegistry()
			registry.Register(ext)
			agg := build(registry, converters)

			So(agg.GetEpisodeSources("zoro", "garbage", media.Sub, ""), ShouldBeNil)
			So(anime.watchCalls, ShouldEqual, 0)
		})
	})
}

func TestChapterRouting(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	Convey("Chapter page routing", t, func() {
		manga := &fakeConverter{
			category:     media.CategoryManga,
			chapterPages: &media.ChapterPages{ChapterID: "berserk/1", Pages: []media.ChapterPage{{Page: 1, Img: "https://cdn.example/1.png"}}},
		}
		converters := map[media.Category]provider.Converter{media.CategoryManga: manga}

		Convey("Engine-backed manga providers use the converter", func() {
			agg := build(extractor.NewRegistry(), converters)

			pages := agg.GetChapterPages("mangadex", "berserk/1")
			So(pages, ShouldNotBeNil)
			So(manga.readCalls, ShouldEqual, 1)
		})

		Convey("The dedicated pipeline owns its provider, even when broken", func() {
			agg := build(extractor.NewRegistry(), converters)

			So(agg.GetChapterPages("mangaplus", "100066"), ShouldBeNil)
			So(manga.readCalls, ShouldEqual, 0)
		})
	})
}

func TestDiscovery(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	Convey("Discovery feeds", t, func() {
		anime := &fakeConverter{category: media.CategoryAnime, results: []media.SearchResult{{ID: "t", Title: "Trending"}}}
		agg := build(extractor.NewRegistry(), map[media.Category]provider.Converter{media.CategoryAnime: anime})

		Convey("Feeds use the category's default provider", func() {
			So(agg.Trending(media.CategoryAnime, 1).Results, ShouldHaveLength, 1)
			So(agg.Recent(media.CategoryAnime, 1).Results, ShouldHaveLength, 1)
			So(anime.feedCalls, ShouldEqual, 2)
		})

		Convey("A category without a converter yields an empty page", func() {
			So(agg.Trending(media.CategoryNews, 2).Results, ShouldBeEmpty)
		})
	})
}

func TestFindClosest(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	Convey("Closest-match resolution", t, func() {
		anime := &fakeConverter{category: media.CategoryAnime, results: []media.SearchResult{
			{ID: "one-piece-100", Title: "One Piece", Provider: "zoro"},
			{ID: "one-piece-film", Title: "One Piece Film: Red", Provider: "zoro"},
		}}
		agg := build(extractor.NewRegistry(), map[media.Category]provider.Converter{media.CategoryAnime: anime})

		Convey("The nearest title wins", func() {
			closest := agg.FindClosest("zoro", "one piece")
			So(closest, ShouldNotBeNil)
			So(closest.ID, ShouldEqual, "one-piece-100")
		})

		Convey("A previously bound relation takes precedence", func() {
			viper.Set(key.RelationsWrite, true)
			defer viper.Set(key.RelationsWrite, false)

			store := relation.NewStore()
			store.Bind("one piece", "zoro", "one-piece-film")
			bound := NewWithParts(
				extractor.NewRegistry(),
				map[media.Category]provider.Converter{media.CategoryAnime: anime},
				deadPipeline(),
				store,
			)

			closest := bound.FindClosest("zoro", "one piece")
			So(closest, ShouldNotBeNil)
			So(closest.ID, ShouldEqual, "one-piece-film")
		})

		Convey("No candidates means no match", func() {
			anime.results = nil
			So(agg.FindClosest("zoro", "one piece"), ShouldBeNil)
		})
	})
}
