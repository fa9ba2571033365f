package mangaplus

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/Hoodgail/watchlist/crypt"
	"github.com/Hoodgail/watchlist/extractor"
	"github.com/Hoodgail/watchlist/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

const (
	apiBase = "https://api.mangaplus.example"
	cdnHost = "cdn.mangaplus.example"
)

func setupConfig() {
	viper.Set(key.MangaPlusAPIBaseURL, apiBase)
	viper.Set(key.MangaPlusCDNHost, cdnHost)
	viper.Set(key.MangaPlusQuality, "high")
}

// hexKey renders a deterministic 128-char lowercase hex key.
func hexKey(seed byte) string {
	raw := bytes.Repeat([]byte{seed}, 64)
	return hex.EncodeToString(raw)
}

// viewerPayload builds a binary-ish payload interleaving page URLs, junk
// bytes and keys, in the given order.
func viewerPayload(pages ...[2]string) []byte {
	var b bytes.Buffer
	b.Write([]byte{0x08, 0x96, 0x01, 0xff, 0xfe})
	for _, p := range pages {
		b.WriteString(p[0])
		b.Write([]byte{0x12, 0x80, 0xff, 0x01})
		b.WriteString(p[1])
		b.Write([]byte{0x00, 0xc3})
	}
	return b.Bytes()
}

func pageURL(n int) string {
	return fmt.Sprintf("https://%s/drm/title/100020/chapter/1000421/%d.jpg?q=h", cdnHost, n)
}

type route struct {
	body   []byte
	status int
}

func router(routes map[string]route) func(string, map[string]string) ([]byte, int, error) {
	return func(url string, _ map[string]string) ([]byte, int, error) {
		for prefix, r := range routes {
			if strings.HasPrefix(url, prefix) {
				status := r.status
				if status == 0 {
					status = 200
				}
				return r.body, status, nil
			}
		}
		return nil, 404, nil
	}
}

func TestChapterIDFromURL(t *testing.T) {
	Convey("ChapterIDFromURL", t, func() {
		Convey("Should match the viewer path", func() {
			id, err := ChapterIDFromURL("https://mangaplus.example/viewer/1000421")
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "1000421")
		})

		Convey("Should fail on a non-viewer url", func() {
			_, err := ChapterIDFromURL("https://mangaplus.example/titles/100020")
			So(err, ShouldNotBeNil)
			So(err.Kind, ShouldEqual, extractor.KindFormat)
		})
	})
}

func TestResolvePages(t *testing.T) {
	setupConfig()

	Convey("ResolvePages", t, func() {
		Convey("Should extract and sort pages ascending with no gaps", func() {
			payload := viewerPayload(
				[2]string{pageURL(3), hexKey(0x03)},
				[2]string{pageURL(1), hexKey(0x01)},
				[2]string{pageURL(2), hexKey(0x02)},
			)
			p := NewWithFetcher(router(map[string]route{apiBase: {body: payload}}))

			pages, err := p.ResolvePages("1000421")
			So(err, ShouldBeNil)
			So(pages, ShouldHaveLength, 3)
			for i, page := range pages {
				So(page.Number, ShouldEqual, i+1)
				So(page.Key, ShouldHaveLength, 128)
			}
		})

		Convey("Should drop pages hosted off the expected CDN", func() {
			payload := viewerPayload(
				[2]string{pageURL(1), hexKey(0x01)},
				[2]string{"https://evil.example/steal/2.jpg", hexKey(0x02)},
			)
			p := NewWithFetcher(router(map[string]route{apiBase: {body: payload}}))

			pages, err := p.ResolvePages("1000421")
			So(err, ShouldBeNil)
			So(pages, ShouldHaveLength, 1)
			So(pages[0].URL, ShouldEqual, pageURL(1))
		})

		Convey("Zero matches should be a not-available error, not empty success", func() {
			p := NewWithFetcher(router(map[string]route{apiBase: {body: []byte("region locked, nothing here")}}))

			_, err := p.ResolvePages("1000421")
			So(err, ShouldNotBeNil)
			So(err.Kind, ShouldEqual, extractor.KindNotAvailable)
		})

		Convey("Should map HTTP statuses onto error kinds", func() {
			p := NewWithFetcher(router(map[string]route{apiBase: {status: 429}}))
			_, err := p.ResolvePages("1000421")
			So(err.Kind, ShouldEqual, extractor.KindRateLimited)

			p = NewWithFetcher(router(map[string]route{apiBase: {status: 404}}))
			_, err = p.ResolvePages("1000421")
			So(err.Kind, ShouldEqual, extractor.KindNotAvailable)

			p = NewWithFetcher(router(map[string]route{apiBase: {status: 500}}))
			_, err = p.ResolvePages("1000421")
			So(err.Kind, ShouldEqual, extractor.KindUnknown)
		})
	})
}

func TestFetchPage(t *testing.T) {
	setupConfig()

	// A tiny JPEG header followed by filler, so content sniffing works.
	image := append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte{0x42}, 64)...)
	pageKey := hexKey(0x5a)
	encrypted, _ := crypt.XorDecrypt(image, pageKey)

	Convey("FetchPage", t, func() {
		page := Page{Number: 1, URL: pageURL(1), Key: pageKey}

		Convey("Should fetch and XOR-decrypt page bytes", func() {
			p := NewWithFetcher(router(map[string]route{"https://" + cdnHost: {body: encrypted}}))

			raw, err := p.FetchPage(page)
			So(err, ShouldBeNil)
			So(bytes.Equal(raw, image), ShouldBeTrue)
		})

		Convey("Should render a data URL with a sniffed mime type", func() {
			p := NewWithFetcher(router(map[string]route{"https://" + cdnHost: {body: encrypted}}))

			dataURL, err := p.FetchPageDataURL(page)
			So(err, ShouldBeNil)
			So(dataURL, ShouldStartWith, "data:image/jpeg;base64,")
		})

		Convey("Transport failure maps to a network error", func() {
			p := NewWithFetcher(router(map[string]route{"https://" + cdnHost: {status: 503}}))

			_, err := p.FetchPage(page)
			So(err, ShouldNotBeNil)
			So(err.Kind, ShouldEqual, extractor.KindNetwork)
		})
	})
}

func TestChapterPages(t *testing.T) {
	setupConfig()

	image := append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte{0x24}, 32)...)
	k1, k2 := hexKey(0x01), hexKey(0x02)
	enc1, _ := crypt.XorDecrypt(image, k1)
	enc2, _ := crypt.XorDecrypt(image, k2)

	Convey("ChapterPages", t, func() {
		payload := viewerPayload(
			[2]string{pageURL(2), k2},
			[2]string{pageURL(1), k1},
		)

		p := NewWithFetcher(router(map[string]route{
			apiBase:     {body: payload},
			pageURL(1):  {body: enc1},
			pageURL(2):  {body: enc2},
		}))

		Convey("Should assemble sorted data-URL pages", func() {
			result, err := p.ChapterPages("1000421")
			So(err, ShouldBeNil)
			So(result.ChapterID, ShouldEqual, "1000421")
			So(result.Pages, ShouldHaveLength, 2)
			So(result.Pages[0].Page, ShouldEqual, 1)
			So(result.Pages[1].Page, ShouldEqual, 2)
			So(result.Pages[0].Img, ShouldStartWith, "data:image/jpeg;base64,")
		})

		Convey("Should reduce a viewer url to its chapter id before the api call", func() {
			var viewerCall string
			inner := router(map[string]route{
				apiBase:    {body: payload},
				pageURL(1): {body: enc1},
				pageURL(2): {body: enc2},
			})
			p := NewWithFetcher(func(url string, headers map[string]string) ([]byte, int, error) {
				if strings.HasPrefix(url, apiBase) {
					viewerCall = url
				}
				return inner(url, headers)
			})

			result, err := p.ChapterPages("https://mangaplus.example/viewer/1000421")
			So(err, ShouldBeNil)
			So(result.ChapterID, ShouldEqual, "1000421")
			So(viewerCall, ShouldContainSubstring, "chapter_id=1000421&")
		})

		Convey("A url carrying no chapter id fails before any fetch", func() {
			var called bool
			p := NewWithFetcher(func(string, map[string]string) ([]byte, int, error) {
				called = true
				return nil, 200, nil
			})

			_, err := p.ChapterPages("https://mangaplus.example/titles/100020")
			So(err, ShouldNotBeNil)
			So(err.Kind, ShouldEqual, extractor.KindFormat)
			So(called, ShouldBeFalse)
		})
	})
}
