// Package hianime implements the custom video source extractor for the
// hianime/zoro provider, bypassing the generic scraping engine which is
// unreliable for this site.
//
// The extraction is a sequential pipeline: episode id → server list →
// server choice → embed link → page nonce → player sources. Each step
// depends on the previous step's output, so there is no parallelism inside
// one attempt; failures short-circuit with fallback eligibility attached.
package hianime

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Hoodgail/watchlist/extractor"
	"github.com/Hoodgail/watchlist/extractor/megacloud"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/log"
	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/network"
	"github.com/Hoodgail/watchlist/util"
	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/viper"
)

// Providers this extractor claims in the registry.
var providerNames = []string{"zoro", "hianime"}

// hdAliases are the canonical high-definition server display names,
// preferred during selection.
var hdAliases = []string{"HD-1", "HD-2"}

// Extractor resolves hianime episodes into playable sources.
type Extractor struct {
	fetch  network.Fetcher
	player *megacloud.Client
}

// New returns an extractor using the shared spoofed HTTP path.
func New() *Extractor {
	return &Extractor{fetch: network.GetSpoofed, player: megacloud.New()}
}

// NewWithTransport returns an extractor with injected transports, used in tests.
func NewWithTransport(fetch network.Fetcher, player *megacloud.Client) *Extractor {
	return &Extractor{fetch: fetch, player: player}
}

func (e *Extractor) Name() string {
	return "hianime"
}

func (e *Extractor) Providers() []string {
	return providerNames
}

func (e *Extractor) Priority() int {
	return 10
}

// CanHandle accepts any request that names an episode.
func (e *Extractor) CanHandle(ec extractor.Context) bool {
	return strings.TrimSpace(ec.EpisodeID) != ""
}

// episodeIDRe matches the canonical "<slug>$episode$<digits>" id shape.
var episodeIDRe = regexp.MustCompile(`\$episode\$(?P<episode>\d+)`)

// trailingDigitsRe finds the last run of digits anywhere in the string,
// the secondary fallback for ids that lost their separator upstream.
var trailingDigitsRe = regexp.MustCompile(`(\d+)\D*$`)

// parseEpisodeID reduces an opaque episode id to the site's numeric id.
func parseEpisodeID(id string) (string, bool) {
	if numeric := util.ReGroups(episodeIDRe, id)["episode"]; numeric != "" {
		return numeric, true
	}
	if m := trailingDigitsRe.FindStringSubmatch(id); m != nil {
		return m[1], true
	}
	return "", false
}

// server is one entry of the episode's server list fragment.
type server struct {
	ID   string
	Name string
	Type media.SubOrDub
}

// Extract runs the full pipeline. It never panics across this boundary.
func (e *Extractor) Extract(ec extractor.Context) (result extractor.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("hianime extraction panicked: %v", rec)
			result = extractor.Fail(extractor.NewError(extractor.KindUnknown, "unexpected extraction failure", fmt.Errorf("%v", rec)), true)
		}
	}()

	// Step 1: an unparseable id is a caller error, never a transient
	// provider issue, so fallback is withheld.
	numericID, ok := parseEpisodeID(ec.EpisodeID)
	if !ok {
		return extractor.Fail(extractor.NewError(extractor.KindFormat, fmt.Sprintf("episode id %q has no numeric component", ec.EpisodeID), nil), false)
	}

	servers, xerr := e.listServers(numericID)
	if xerr != nil {
		return extractor.Fail(xerr, true)
	}
	if len(servers) == 0 {
		return extractor.Fail(extractor.NewError(extractor.KindNotAvailable, "episode has no servers", nil), true)
	}

	chosen, ok := selectServer(servers, ec)
	if !ok {
		return extractor.Fail(extractor.NewError(extractor.KindNotAvailable, "no server matches the requested preference", nil), true)
	}

	embedLink, xerr := e.resolveEmbed(chosen.ID)
	if xerr != nil {
		return extractor.Fail(xerr, true)
	}

	embed, xerr := megacloud.ParseEmbedURL(embedLink)
	if xerr != nil {
		return extractor.Fail(xerr, true)
	}

	page, status, err := e.fetch(embedLink, map[string]string{"Referer": viper.GetString(key.HiAnimeBaseURL) + "/"})
	if err != nil {
		return extractor.Fail(extractor.NewError(extractor.KindNetwork, "embed page fetch failed", err), true)
	}
	if status < 200 || status >= 300 {
		return extractor.Fail(extractor.NewError(extractor.KindNetwork, fmt.Sprintf("embed page returned status %d", status), nil), true)
	}

	// A page without a nonce will not grow one on retry.
	nonce, xerr := megacloud.ExtractNonce(string(page))
	if xerr != nil {
		return extractor.Fail(xerr, false)
	}

	resolved, xerr := e.player.GetSources(embed, nonce)
	if xerr != nil {
		return extractor.Fail(xerr, true)
	}

	converted := convert(resolved, embed.Origin)
	if len(converted.Sources) == 0 {
		return extractor.Fail(extractor.NewError(extractor.KindNotAvailable, "player returned no usable sources", nil), true)
	}

	return extractor.Ok(converted).
		WithDebug("server", chosen.Name).
		WithDebug("embed", embed.Origin)
}

// listServers fetches and parses the AJAX server list for an episode.
func (e *Extractor) listServers(numericID string) ([]server, *extractor.Error) {
	base := viper.GetString(key.HiAnimeBaseURL)
	endpoint := fmt.Sprintf("%s/ajax/v2/episode/servers?episodeId=%s", base, url.QueryEscape(numericID))

	body, status, err := e.fetch(endpoint, ajaxHeaders(base))
	if err != nil {
		return nil, extractor.NewError(extractor.KindNetwork, "server list request failed", err)
	}
	switch {
	case status == 429:
		return nil, extractor.NewError(extractor.KindRateLimited, "server list rate limited", nil)
	case status == 404:
		return nil, extractor.NewError(extractor.KindNotAvailable, "episode not found", nil)
	case status < 200 || status >= 300:
		return nil, extractor.NewError(extractor.KindUnknown, fmt.Sprintf("server list returned status %d", status), nil)
	}

	return parseServerFragment(body)
}

// parseServerFragment extracts server entries from the AJAX response. The
// endpoint wraps an HTML fragment in a JSON envelope; a bare fragment is
// accepted too since the envelope has changed before.
func parseServerFragment(body []byte) ([]server, *extractor.Error) {
	fragment := string(body)

	var envelope struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.HTML != "" {
		fragment = envelope.HTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, extractor.NewError(extractor.KindFormat, "server fragment is not parseable html", err)
	}

	var servers []server
	doc.Find(".server-item").Each(func(_ int, s *goquery.Selection) {
		id, hasID := s.Attr("data-id")
		if !hasID || id == "" {
			return
		}

		entry := server{
			ID:   id,
			Name: strings.TrimSpace(s.Text()),
			Type: media.Sub,
		}
		if t, ok := s.Attr("data-type"); ok {
			switch strings.ToLower(t) {
			case "dub":
				entry.Type = media.Dub
			case "raw":
				entry.Type = media.Raw
			}
		}

		servers = append(servers, entry)
	})

	return servers, nil
}

// selectServer applies the deterministic preference chain: an HD-aliased
// server of the requested type, then any server of the requested type, then
// the first server in list order.
func selectServer(servers []server, ec extractor.Context) (server, bool) {
	want := ec.SubOrDub
	if want == "" || want == media.Both {
		want = media.Sub
	}

	if viper.GetBool(key.ExtractorPreferHD) {
		for _, alias := range hdAliases {
			for _, s := range servers {
				if strings.EqualFold(s.Name, alias) && s.Type == want {
					return s, true
				}
			}
		}
	}

	for _, s := range servers {
		if s.Type == want {
			return s, true
		}
	}

	if len(servers) > 0 {
		return servers[0], true
	}

	return server{}, false
}

// resolveEmbed turns a server id into the player embed link.
func (e *Extractor) resolveEmbed(serverID string) (string, *extractor.Error) {
	base := viper.GetString(key.HiAnimeBaseURL)
	endpoint := fmt.Sprintf("%s/ajax/v2/episode/sources?id=%s", base, url.QueryEscape(serverID))

	body, status, err := e.fetch(endpoint, ajaxHeaders(base))
	if err != nil {
		return "", extractor.NewError(extractor.KindNetwork, "embed link request failed", err)
	}
	if status < 200 || status >= 300 {
		return "", extractor.NewError(extractor.KindUnknown, fmt.Sprintf("embed link returned status %d", status), nil)
	}

	var payload struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", extractor.NewError(extractor.KindFormat, "embed link payload is not json", err)
	}
	if payload.Link == "" {
		return "", extractor.NewError(extractor.KindNotAvailable, "server has no embed link", nil)
	}

	return payload.Link, nil
}

// convert maps the player response onto the unified model. Playback behind
// this origin requires a Referer, so it is always attached.
func convert(resolved *megacloud.Resolved, origin string) *media.SourceResult {
	out := &media.SourceResult{
		Headers: map[string]string{"Referer": origin + "/"},
		Sources: []media.PlayableSource{},
	}

	for _, src := range resolved.Sources {
		if src.File == "" {
			continue
		}
		out.Sources = append(out.Sources, media.PlayableSource{
			URL:    src.File,
			IsM3U8: strings.EqualFold(src.Type, "hls") || media.GuessHLS(src.File),
		})
	}

	for _, track := range resolved.Tracks {
		kind := strings.ToLower(track.Kind)
		if kind != "" && kind != "captions" && kind != "subtitles" {
			continue
		}
		if track.File == "" {
			continue
		}
		lang := track.Label
		if lang == "" {
			lang = "Unknown"
		}
		out.Subtitles = append(out.Subtitles, media.Subtitle{URL: track.File, Lang: lang})
	}

	if resolved.Intro != nil && resolved.Intro.End > 0 {
		out.Intro = &media.SkipEvent{Start: resolved.Intro.Start, End: resolved.Intro.End}
	}
	if resolved.Outro != nil && resolved.Outro.End > 0 {
		out.Outro = &media.SkipEvent{Start: resolved.Outro.Start, End: resolved.Outro.End}
	}

	return out
}

// ajaxHeaders are the headers the site's own frontend sends to its AJAX endpoints.
func ajaxHeaders(base string) map[string]string {
	return map[string]string{
		"Referer":          base + "/",
		"X-Requested-With": "XMLHttpRequest",
		"Accept":           "*/*",
	}
}
