// Package megacloud resolves playable sources from megacloud-style embed
// players by reverse engineering the player's internal API.
//
// The protocol is reconstructed from observed behavior: the embed page
// carries a nonce that authorizes the getSources call, and the response's
// sources field arrives either as a plain list or as an OpenSSL salted
// envelope encrypted with a rotating password published at an external key
// distribution point.
package megacloud

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Hoodgail/watchlist/crypt"
	"github.com/Hoodgail/watchlist/extractor"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/log"
	"github.com/Hoodgail/watchlist/network"
	"github.com/spf13/viper"
)

// Embed locates one video inside a megacloud-style player.
type Embed struct {
	// Origin is the scheme and host of the embed URL.
	Origin string
	// VideoID is the opaque id from the last path segment.
	VideoID string
	// Type is the embed-type path segment, e.g. "e-1".
	Type string
}

// defaultEmbedType is used when no path segment matches the expected shape.
const defaultEmbedType = "e-1"

var embedTypeRe = regexp.MustCompile(`^e-\d+$`)

// ParseEmbedURL splits an embed link into origin, video id and embed type.
func ParseEmbedURL(raw string) (Embed, *extractor.Error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Embed{}, extractor.NewError(extractor.KindFormat, fmt.Sprintf("unparseable embed url %q", raw), err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || segments[len(segments)-1] == "" {
		return Embed{}, extractor.NewError(extractor.KindFormat, "embed url has no video id segment", nil)
	}

	embed := Embed{
		Origin:  u.Scheme + "://" + u.Host,
		VideoID: strings.SplitN(segments[len(segments)-1], "?", 2)[0],
		Type:    defaultEmbedType,
	}

	for _, segment := range segments[:len(segments)-1] {
		if embedTypeRe.MatchString(segment) {
			embed.Type = segment
			break
		}
	}

	return embed, nil
}

// Nonce extraction strategies, tried in order. The first hit wins.
var (
	// A single 48-character alphanumeric token anywhere in the page.
	nonceSingleRe = regexp.MustCompile(`\b[a-zA-Z0-9]{48}\b`)

	// Three 16-character tokens bound to the x/y/z fields of the page's
	// key object, concatenated in field order.
	nonceTripletRe = regexp.MustCompile(`\{\s*x:\s*"([a-zA-Z0-9]{16})"\s*,\s*y:\s*"([a-zA-Z0-9]{16})"\s*,\s*z:\s*"([a-zA-Z0-9]{16})"\s*\}`)

	// The player element's data-id attribute. Only accepted when it is
	// long enough to be a nonce rather than a video id.
	nonceDataIDRe = regexp.MustCompile(`data-id="([a-zA-Z0-9]{48,})"`)
)

// ExtractNonce recovers the getSources nonce from the embed page HTML.
// Failure here is terminal for the attempt: retrying the same page yields
// the same markup.
func ExtractNonce(html string) (string, *extractor.Error) {
	if m := nonceSingleRe.FindString(html); m != "" {
		return m, nil
	}

	if m := nonceTripletRe.FindStringSubmatch(html); m != nil {
		return m[1] + m[2] + m[3], nil
	}

	if m := nonceDataIDRe.FindStringSubmatch(html); m != nil {
		return m[1], nil
	}

	return "", extractor.NewError(extractor.KindFormat, "no nonce found in embed page", nil)
}

// Source is one stream entry of the player response.
type Source struct {
	File string `json:"file"`
	Type string `json:"type"`
}

// Track is one text track of the player response.
type Track struct {
	File    string `json:"file"`
	Kind    string `json:"kind"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

// Skip is an intro or outro interval of the player response.
type Skip struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Resolved is the decoded and, when necessary, decrypted player response.
type Resolved struct {
	Sources []Source
	Tracks  []Track
	Intro   *Skip
	Outro   *Skip
}

// Client talks to the player's internal API.
type Client struct {
	fetch network.Fetcher
}

// New returns a client using the shared spoofed HTTP path.
func New() *Client {
	return &Client{fetch: network.GetSpoofed}
}

// NewWithFetcher returns a client with a custom transport, used in tests.
func NewWithFetcher(fetch network.Fetcher) *Client {
	return &Client{fetch: fetch}
}

// getSourcesResponse mirrors the player API payload. Sources stays raw
// because it is either a list or an encrypted string.
type getSourcesResponse struct {
	Sources   json.RawMessage `json:"sources"`
	Encrypted bool            `json:"encrypted"`
	Tracks    []Track         `json:"tracks"`
	Intro     *Skip           `json:"intro"`
	Outro     *Skip           `json:"outro"`
}

// GetSources fetches the source list for an embed using the page nonce,
// transparently decrypting an encrypted response.
func (c *Client) GetSources(embed Embed, nonce string) (*Resolved, *extractor.Error) {
	api := fmt.Sprintf("%s/embed-2/v3/%s/getSources?id=%s&_k=%s",
		embed.Origin, embed.Type, url.QueryEscape(embed.VideoID), url.QueryEscape(nonce))

	// Player domains rotate; the configured referer lets users keep the
	// expected value without a new release.
	referer := viper.GetString(key.MegacloudReferer)
	if referer == "" {
		referer = embed.Origin + "/"
	}

	headers := map[string]string{
		"Referer":          referer,
		"X-Requested-With": "XMLHttpRequest",
		"Accept":           "application/json",
	}

	body, status, err := c.fetch(api, headers)
	if err != nil {
		return nil, extractor.NewError(extractor.KindNetwork, "getSources request failed", err)
	}
	if status == 429 {
		return nil, extractor.NewError(extractor.KindRateLimited, "getSources rate limited", nil)
	}
	if status == 404 {
		return nil, extractor.NewError(extractor.KindNotAvailable, "video not found", nil)
	}
	if status < 200 || status >= 300 {
		return nil, extractor.NewError(extractor.KindUnknown, fmt.Sprintf("getSources returned status %d", status), nil)
	}

	var payload getSourcesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, extractor.NewError(extractor.KindFormat, "getSources payload is not json", err)
	}

	sources, xerr := c.decodeSources(payload)
	if xerr != nil {
		return nil, xerr
	}

	return &Resolved{
		Sources: sources,
		Tracks:  payload.Tracks,
		Intro:   payload.Intro,
		Outro:   payload.Outro,
	}, nil
}

// decodeSources handles the two observed shapes of the sources field: a
// structured list, or a string carrying an OpenSSL envelope.
func (c *Client) decodeSources(payload getSourcesResponse) ([]Source, *extractor.Error) {
	if len(payload.Sources) == 0 {
		return nil, extractor.NewError(extractor.KindNotAvailable, "player response has no sources field", nil)
	}

	var plain []Source
	if err := json.Unmarshal(payload.Sources, &plain); err == nil {
		return plain, nil
	}

	var encrypted string
	if err := json.Unmarshal(payload.Sources, &encrypted); err != nil {
		return nil, extractor.NewError(extractor.KindFormat, "sources field is neither a list nor a string", err)
	}

	// Keys rotate server-side at any time, so the bundle is fetched fresh
	// for every encrypted response. The latency cost is accepted.
	password, xerr := c.fetchKey()
	if xerr != nil {
		return nil, xerr
	}

	decrypted, err := crypt.DecryptOpenSSL(encrypted, []byte(password))
	if err != nil {
		return nil, extractor.NewError(extractor.KindCrypto, "source decryption failed", err)
	}

	var sources []Source
	if err := json.Unmarshal([]byte(decrypted), &sources); err != nil {
		return nil, extractor.NewError(extractor.KindCrypto, "decrypted sources are not a valid list", err)
	}

	return sources, nil
}

// keyBundle is the external key distribution document.
type keyBundle struct {
	Mega   string `json:"mega"`
	Vidstr string `json:"vidstr"`
}

// fetchKey retrieves the current decryption password. A bundle carrying
// neither expected name is a configuration-level crypto failure; decryption
// is never attempted with an empty password.
func (c *Client) fetchKey() (string, *extractor.Error) {
	keysURL := viper.GetString(key.MegacloudKeysURL)

	body, status, err := c.fetch(keysURL, nil)
	if err != nil {
		return "", extractor.NewError(extractor.KindNetwork, "key distribution fetch failed", err)
	}
	if status < 200 || status >= 300 {
		return "", extractor.NewError(extractor.KindNetwork, fmt.Sprintf("key distribution returned status %d", status), nil)
	}

	var bundle keyBundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		return "", extractor.NewError(extractor.KindCrypto, "key distribution document is not json", err)
	}

	switch {
	case bundle.Mega != "":
		return bundle.Mega, nil
	case bundle.Vidstr != "":
		log.Debug("mega key absent from bundle, using vidstr")
		return bundle.Vidstr, nil
	default:
		return "", extractor.NewError(extractor.KindCrypto, "key bundle has neither mega nor vidstr entries", nil)
	}
}
