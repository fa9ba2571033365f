// Package sdk is the boundary to the generic scraping engine.
//
// The engine's per-provider scraping mechanics are external to this
// codebase; it is consumed through its REST gateway and every payload comes
// back as raw JSON. Shape normalization happens in the provider converters,
// never here.
package sdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hoodgail/watchlist/constant"
	"github.com/Hoodgail/watchlist/extractor"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/network"
	"github.com/spf13/viper"
)

// Client talks to the scraping engine's REST gateway.
type Client struct {
	base  string
	fetch network.Fetcher
}

// New returns a client aimed at the configured gateway.
func New() *Client {
	return &Client{
		base:  strings.TrimRight(viper.GetString(key.SDKBaseURL), "/"),
		fetch: timedFetch,
	}
}

// NewWithTransport returns a client with an injected transport, used in tests.
func NewWithTransport(base string, fetch network.Fetcher) *Client {
	return &Client{base: strings.TrimRight(base, "/"), fetch: fetch}
}

// Timeout returns the configured per-call gateway timeout.
func Timeout() time.Duration {
	return time.Duration(viper.GetInt(key.SDKTimeout)) * time.Second
}

// timedFetch performs one gateway GET over the shared transport, bounded by
// the configured per-call timeout.
func timedFetch(rawURL string, headers map[string]string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := network.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}

// Get performs one gateway call and returns the raw JSON body. HTTP statuses
// map onto the shared error taxonomy; a thrown transport error is a network
// kind, never a panic.
func (c *Client) Get(path string, params url.Values) ([]byte, *extractor.Error) {
	endpoint := c.base + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	body, status, err := c.fetch(endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, extractor.NewError(extractor.KindNetwork, fmt.Sprintf("gateway call %s failed", path), err)
	}

	switch {
	case status == 429:
		return nil, extractor.NewError(extractor.KindRateLimited, "gateway rate limited", nil)
	case status == 404:
		return nil, extractor.NewError(extractor.KindNotAvailable, fmt.Sprintf("gateway has no result for %s", path), nil)
	case status < 200 || status >= 300:
		return nil, extractor.NewError(extractor.KindUnknown, fmt.Sprintf("gateway returned status %d for %s", status, path), nil)
	}

	return body, nil
}
