package provider

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/Hoodgail/watchlist/filesystem"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/sdk"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func fakeEngine(routes map[string]string) *sdk.Client {
	return sdk.NewWithTransport("https://engine.example", func(rawURL string, _ map[string]string) ([]byte, int, error) {
		for prefix, body := range routes {
			if strings.HasPrefix(rawURL, "https://engine.example/"+prefix) {
				return []byte(body), 200, nil
			}
		}
		return []byte("not found"), 404, nil
	})
}

func TestCatalog(t *testing.T) {
	Convey("Provider catalog", t, func() {
		Convey("Lookup is case-insensitive", func() {
			p, ok := Get("  MangaPlus ")
			So(ok, ShouldBeTrue)
			So(p.Name, ShouldEqual, "mangaplus")
			So(p.Category, ShouldEqual, media.CategoryManga)
		})

		Convey("Unknown names are rejected", func() {
			_, ok := Get("definitely-not-a-provider")
			So(ok, ShouldBeFalse)
		})

		Convey("Every provider belongs to a valid category", func() {
			for _, p := range All() {
				So(p.Category.Valid(), ShouldBeTrue)
				So(ByCategory(p.Category), ShouldContain, p)
			}
		})

		Convey("Configured default wins for its category", func() {
			viper.Set(key.ProvidersDefaultAnime, "gogoanime")
			defer viper.Set(key.ProvidersDefaultAnime, "zoro")

			So(DefaultFor(media.CategoryAnime).Name, ShouldEqual, "gogoanime")
		})

		Convey("Default falls back to the first provider of the category", func() {
			viper.Set(key.ProvidersDefaultAnime, "mangadex")
			defer viper.Set(key.ProvidersDefaultAnime, "zoro")

			So(DefaultFor(media.CategoryAnime).Name, ShouldEqual, "zoro")
			So(DefaultFor(media.CategoryNews).Name, ShouldEqual, "ann")
		})
	})
}

func TestSearchConversion(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	Convey("Search normalization", t, func() {
		Convey("Canonical payloads map field for field", func() {
			anime := NewAnime(fakeEngine(map[string]string{
				"anime/zoro/one": `{
					"currentPage": 2,
					"hasNextPage": true,
					"totalPages": 9,
					"results": [
						{"id": "one-piece-100", "title": "One Piece", "image": "https://img.example/op.jpg",
						 "type": "TV", "releaseDate": "1999", "totalEpisodes": 1100},
						{"id": 21, "title": {"english": "One Piece", "romaji": "ONE PIECE"}, "rating": 8.7}
					]
				}`,
			}))

			page := anime.Search("zoro", "one", 2)
			So(page.CurrentPage, ShouldEqual, 2)
			So(page.HasNextPage, ShouldBeTrue)
			So(*page.TotalPages, ShouldEqual, 9)
			So(page.Results, ShouldHaveLength, 2)

			first := page.Results[0]
			So(first.ID, ShouldEqual, "one-piece-100")
			So(first.Provider, ShouldEqual, "zoro")
			So(first.Type, ShouldEqual, media.TypeTV)
			So(*first.TotalEpisodes, ShouldEqual, 1100)

			second := page.Results[1]
			So(second.ID, ShouldEqual, "21")
			So(second.Title, ShouldEqual, "One Piece")
			So(second.AltTitles, ShouldContain, "ONE PIECE")
			So(*second.Rating, ShouldAlmostEqual, 8.7)
		})

		Convey("Items without an id are dropped, not guessed", func() {
			anime := NewAnime(fakeEngine(map[string]string{
				"anime/zoro/naruto": `{"results": [{"title": "Naruto"}, {"id": "naruto", "title": "Naruto"}]}`,
			}))

			page := anime.Search("zoro", "naruto", 1)
			So(page.Results, ShouldHaveLength, 1)
			So(page.Results[0].ID, ShouldEqual, "naruto")
		})

		Convey("An engine failure yields an empty page, never an error", func() {
			anime := NewAnime(fakeEngine(nil))
			page := anime.Search("zoro", "missing", 3)

			So(page.CurrentPage, ShouldEqual, 3)
			So(page.Results, ShouldBeEmpty)
			So(page.HasNextPage, ShouldBeFalse)
		})

		Convey("A successful search is served from cache on repeat", func() {
			calls := 0
			counting := sdk.NewWithTransport("https://engine.example", func(string, map[string]string) ([]byte, int, error) {
				calls++
				return []byte(`{"results": [{"id": "cached", "title": "Cached"}]}`), 200, nil
			})

			anime := NewAnime(counting)
			So(anime.Search("zoro", "frieren", 1).Results, ShouldHaveLength, 1)
			So(anime.Search("zoro", "frieren", 1).Results, ShouldHaveLength, 1)
			So(calls, ShouldEqual, 1)
		})

		Convey("A transport failure is also soft", func() {
			broken := sdk.NewWithTransport("https://engine.example", func(string, map[string]string) ([]byte, int, error) {
				return nil, 0, errors.New("connection refused")
			})

			page := NewManga(broken).Search("mangadex", "berserk", 1)
			So(page.Results, ShouldBeEmpty)
		})
	})
}

func TestInfoConversion(t *testing.T) {
	Convey("Info normalization", t, func() {
		Convey("Serial detail records carry episodes and relations", func() {
			anime := NewAnime(fakeEngine(map[string]string{
				"anime/zoro/info": `{
					"id": "steins-gate-3", "title": "Steins;Gate", "status": "Completed",
					"genres": ["Sci-Fi", "Thriller"],
					"episodes": [
						{"id": "steins-gate-3$episode$1", "number": 1, "title": "Turning Point"},
						{"id": "steins-gate-3$episode$2", "number": "2.0"}
					],
					"recommendations": [{"id": "steins-gate-0", "title": "Steins;Gate 0"}]
				}`,
			}))

			info := anime.Info("zoro", "steins-gate-3")
			So(info, ShouldNotBeNil)
			So(info.Status, ShouldEqual, media.StatusCompleted)
			So(info.Genres, ShouldResemble, []string{"Sci-Fi", "Thriller"})
			So(info.Episodes, ShouldHaveLength, 2)
			So(info.Episodes[1].Number, ShouldEqual, 2)
			So(info.Recommendations, ShouldHaveLength, 1)
			So(info.Recommendations[0].Provider, ShouldEqual, "zoro")
		})

		Convey("Manga detail records carry fractional chapter numbers as strings", func() {
			manga := NewManga(fakeEngine(map[string]string{
				"manga/mangadex/info": `{
					"id": "berserk", "title": "Berserk",
					"chapters": [{"id": "berserk/363-5", "chapterNumber": "363.5", "volumeNumber": 41}]
				}`,
			}))

			info := manga.Info("mangadex", "berserk")
			So(info, ShouldNotBeNil)
			So(info.Chapters, ShouldHaveLength, 1)
			So(info.Chapters[0].Number, ShouldEqual, "363.5")
			So(info.Chapters[0].Volume, ShouldEqual, "41")
		})

		Convey("A payload without an id yields nil", func() {
			anime := NewAnime(fakeEngine(map[string]string{
				"anime/zoro/info": `{"title": "orphaned"}`,
			}))

			So(anime.Info("zoro", "whatever"), ShouldBeNil)
		})
	})
}

func TestSourceConversion(t *testing.T) {
	Convey("Source and server normalization", t, func() {
		Convey("Sources keep headers, subtitles and skip events", func() {
			anime := NewAnime(fakeEngine(map[string]string{
				"anime/zoro/watch": `{
					"headers": {"Referer": "https://megacloud.blog/"},
					"sources": [{"url": "https://cdn.example/master.m3u8", "quality": "auto"}],
					"subtitles": [{"url": "https://cdn.example/en.vtt", "lang": "English"}],
					"intro": {"start": 10, "end": 95}
				}`,
			}))

			sources := anime.EpisodeSources("zoro", "sg$episode$3", url.Values{"server": {"hd-1"}})
			So(sources, ShouldNotBeNil)
			So(sources.Headers["Referer"], ShouldEqual, "https://megacloud.blog/")
			So(sources.Sources[0].IsM3U8, ShouldBeTrue)
			So(sources.Subtitles, ShouldHaveLength, 1)
			So(sources.Intro.End, ShouldEqual, 95)
			So(sources.Outro, ShouldBeNil)
		})

		Convey("A payload without sources is a failure, not an empty success", func() {
			anime := NewAnime(fakeEngine(map[string]string{
				"anime/zoro/watch": `{"sources": []}`,
			}))

			So(anime.EpisodeSources("zoro", "sg$episode$3", nil), ShouldBeNil)
		})

		Convey("Categories without playback refuse watch calls locally", func() {
			books := NewBooks(fakeEngine(nil))
			So(books.EpisodeSources("libgen", "anything", nil), ShouldBeNil)
			So(books.EpisodeServers("libgen", "anything"), ShouldBeNil)
		})

		Convey("Servers map name, url and audio type", func() {
			anime := NewAnime(fakeEngine(map[string]string{
				"anime/zoro/servers": `[
					{"name": "HD-1", "url": "https://megacloud.blog/embed-2/v3/e-1/abc", "type": "sub"},
					{"name": "HD-2", "type": "dub"}
				]`,
			}))

			servers := anime.EpisodeServers("zoro", "sg$episode$3")
			So(servers, ShouldHaveLength, 2)
			So(servers[0].Name, ShouldEqual, "HD-1")
			So(servers[1].Type, ShouldEqual, media.Dub)
		})
	})
}

func TestChapterConversion(t *testing.T) {
	Convey("Chapter page normalization", t, func() {
		Convey("Pages keep their numbering and fetch headers", func() {
			manga := NewManga(fakeEngine(map[string]string{
				"manga/mangadex/read": `[
					{"img": "https://cdn.example/p1.png", "page": 1, "headers": {"Referer": "https://mangadex.org/"}},
					{"img": "https://cdn.example/p2.png", "page": 2}
				]`,
			}))

			pages := manga.ChapterPages("mangadex", "berserk/363-5")
			So(pages, ShouldNotBeNil)
			So(pages.ChapterID, ShouldEqual, "berserk/363-5")
			So(pages.Pages, ShouldHaveLength, 2)
			So(pages.Pages[0].Headers["Referer"], ShouldEqual, "https://mangadex.org/")
			So(pages.Pages[1].Page, ShouldEqual, 2)
		})

		Convey("Empty page lists collapse to nil", func() {
			manga := NewManga(fakeEngine(map[string]string{
				"manga/mangadex/read": `[]`,
			}))

			So(manga.ChapterPages("mangadex", "berserk/1"), ShouldBeNil)
		})

		Convey("Video categories refuse read calls locally", func() {
			So(NewAnime(fakeEngine(nil)).ChapterPages("zoro", "x"), ShouldBeNil)
		})
	})
}

func TestFeeds(t *testing.T) {
	Convey("Discovery feeds", t, func() {
		Convey("Trending and recent route to category-specific engine feeds", func() {
			anime := NewAnime(fakeEngine(map[string]string{
				"anime/zoro/top-airing":      `{"results": [{"id": "a", "title": "Airing"}]}`,
				"anime/zoro/recent-episodes": `{"results": [{"id": "r", "title": "Recent"}]}`,
			}))

			So(anime.Trending("zoro", 1).Results[0].ID, ShouldEqual, "a")
			So(anime.Recent("zoro", 0).Results[0].ID, ShouldEqual, "r")
		})

		Convey("A category without a feed returns an empty page without a call", func() {
			manga := NewManga(fakeEngine(nil))
			So(manga.Trending("mangadex", 1).Results, ShouldBeEmpty)
		})
	})
}
