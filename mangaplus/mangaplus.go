// Package mangaplus implements the chapter image pipeline for the
// distributor's viewer API.
//
// The viewer endpoint answers with a binary payload that interleaves page
// image URLs with per-page XOR keys. The pipeline scans that payload
// leniently, validates every URL and key before any further network call,
// sorts pages into reading order, and decrypts page bytes on demand.
package mangaplus

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Hoodgail/watchlist/crypt"
	"github.com/Hoodgail/watchlist/extractor"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/log"
	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/network"
	"github.com/spf13/viper"
)

// ProviderName is how the facade refers to this pipeline.
const ProviderName = "mangaplus"

// viewerIDRe matches the chapter id inside an external viewer URL.
var viewerIDRe = regexp.MustCompile(`/viewer/(\d+)`)

// pageScanRe matches one (image URL, junk, 128-hex key) run of the binary
// viewer payload. The key length and case are part of the observed protocol.
var pageScanRe = regexp.MustCompile(`(https://[^\x00-\x20"\\]+?\.(?:jpg|jpeg|png|webp)[^\x00-\x20"\\]*)[\s\S]*?\b([0-9a-f]{128})\b`)

// lastDigitsRe pulls the trailing digit run out of a page filename.
var lastDigitsRe = regexp.MustCompile(`(\d+)\.(?:jpg|jpeg|png|webp)`)

// Page is one extracted page record: where the encrypted image lives and
// the key that decrypts it.
type Page struct {
	Number int
	URL    string
	Key    string
}

// Pipeline resolves and decrypts chapter pages.
type Pipeline struct {
	fetch network.Fetcher
}

// New returns a pipeline using the shared plain HTTP client. Page images
// carry their own byte-level encryption, so the spoofed TLS client is not
// needed here.
func New() *Pipeline {
	return &Pipeline{fetch: network.Get}
}

// NewWithFetcher returns a pipeline with a custom transport, used in tests.
func NewWithFetcher(fetch network.Fetcher) *Pipeline {
	return &Pipeline{fetch: fetch}
}

// ChapterIDFromURL extracts the numeric chapter id from a viewer URL.
func ChapterIDFromURL(raw string) (string, *extractor.Error) {
	if m := viewerIDRe.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	return "", extractor.NewError(extractor.KindFormat, fmt.Sprintf("no chapter id in viewer url %q", raw), nil)
}

// ResolvePages fetches the viewer payload for a chapter and extracts its
// page records, sorted ascending by page number.
func (p *Pipeline) ResolvePages(chapterID string) ([]Page, *extractor.Error) {
	endpoint := fmt.Sprintf("%s/api/manga_viewer?chapter_id=%s&split=yes&img_quality=%s&clang=eng",
		viper.GetString(key.MangaPlusAPIBaseURL),
		url.QueryEscape(chapterID),
		url.QueryEscape(viper.GetString(key.MangaPlusQuality)))

	body, status, err := p.fetch(endpoint, nil)
	if err != nil {
		return nil, extractor.NewError(extractor.KindNetwork, "viewer request failed", err)
	}
	switch {
	case status == 429:
		return nil, extractor.NewError(extractor.KindRateLimited, "viewer rate limited", nil)
	case status == 404:
		return nil, extractor.NewError(extractor.KindNotAvailable, "chapter not available", nil)
	case status < 200 || status >= 300:
		return nil, extractor.NewError(extractor.KindUnknown, fmt.Sprintf("viewer returned status %d", status), nil)
	}

	pages := scanPayload(body)
	if len(pages) == 0 {
		// Zero page matches is almost always a region restriction rather
		// than a malformed payload.
		return nil, extractor.NewError(extractor.KindNotAvailable, "no pages in viewer payload (chapter may be region locked)", nil)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })

	return pages, nil
}

// scanPayload decodes the payload leniently and runs the single-pass page
// scan. The payload is binary with embedded text; invalid byte sequences
// between matches are expected and never fatal.
func scanPayload(body []byte) []Page {
	cdnHost := viper.GetString(key.MangaPlusCDNHost)

	// Invalid sequences collapse to replacement runes so the scan regex
	// can treat the payload as text.
	text := strings.ToValidUTF8(string(body), "\uFFFD")

	var pages []Page
	seen := make(map[int]bool)

	for i, m := range pageScanRe.FindAllStringSubmatch(text, -1) {
		pageURL, pageKey := m[1], m[2]

		// Both checks run before any page fetch so attacker-influenced
		// payload fragments cannot steer requests off the expected CDN.
		if !urlOnHost(pageURL, cdnHost) {
			log.Warnf("mangaplus: dropping page url on unexpected host: %s", pageURL)
			continue
		}

		number := pageNumber(pageURL, i+1)
		if seen[number] {
			continue
		}
		seen[number] = true

		pages = append(pages, Page{Number: number, URL: pageURL, Key: pageKey})
	}

	return pages
}

// urlOnHost reports whether a URL's host is the expected CDN host or one of
// its subdomains.
func urlOnHost(raw, host string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Host == host || (len(u.Host) > len(host) && u.Host[len(u.Host)-len(host)-1] == '.' &&
		u.Host[len(u.Host)-len(host):] == host)
}

// pageNumber derives the 1-based page number from the image filename,
// falling back to the extraction position when the name carries no number.
func pageNumber(pageURL string, position int) int {
	if m := lastDigitsRe.FindStringSubmatch(pageURL); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return position
}

// FetchPage downloads and decrypts a single page, returning raw image bytes
// suitable for server-side re-serving. Page failures are independent; a
// failed page never affects its siblings.
func (p *Pipeline) FetchPage(page Page) ([]byte, *extractor.Error) {
	body, status, err := p.fetch(page.URL, nil)
	if err != nil {
		return nil, extractor.NewError(extractor.KindNetwork, fmt.Sprintf("page %d fetch failed", page.Number), err)
	}
	if status < 200 || status >= 300 {
		return nil, extractor.NewError(extractor.KindNetwork, fmt.Sprintf("page %d returned status %d", page.Number, status), nil)
	}

	decrypted, err := crypt.XorDecrypt(body, page.Key)
	if err != nil {
		return nil, extractor.NewError(extractor.KindCrypto, fmt.Sprintf("page %d decryption failed", page.Number), err)
	}

	return decrypted, nil
}

// FetchPageDataURL downloads and decrypts a single page, returning a base64
// data URL for direct client consumption.
func (p *Pipeline) FetchPageDataURL(page Page) (string, *extractor.Error) {
	raw, xerr := p.FetchPage(page)
	if xerr != nil {
		return "", xerr
	}

	mime := http.DetectContentType(raw)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw)), nil
}

// ChapterPages resolves a chapter into the unified page list. The chapter
// may be given as a bare numeric id or as an external viewer URL; the
// latter is reduced to its id first, and a URL without one is a format
// error. Every page is fetched and decrypted into a data URL; the first
// page-level failure aborts the assembled envelope, since callers wanting
// per-page resilience use ResolvePages and FetchPage directly.
func (p *Pipeline) ChapterPages(chapterID string) (*media.ChapterPages, *extractor.Error) {
	if strings.Contains(chapterID, "/") {
		id, xerr := ChapterIDFromURL(chapterID)
		if xerr != nil {
			return nil, xerr
		}
		chapterID = id
	}

	pages, xerr := p.ResolvePages(chapterID)
	if xerr != nil {
		return nil, xerr
	}

	out := &media.ChapterPages{ChapterID: chapterID, Pages: make([]media.ChapterPage, 0, len(pages))}

	for _, page := range pages {
		img, xerr := p.FetchPageDataURL(page)
		if xerr != nil {
			return nil, xerr
		}
		out.Pages = append(out.Pages, media.ChapterPage{Page: page.Number, Img: img})
	}

	return out, nil
}
