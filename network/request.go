package network

import (
	"io"
	"net/http"
	"strings"

	"github.com/Hoodgail/watchlist/constant"
	"github.com/Hoodgail/watchlist/key"
	"github.com/spf13/viper"
)

// Fetcher performs a GET and returns the body and HTTP status. Provider code
// depends on this signature so tests can substitute transports.
type Fetcher func(url string, headers map[string]string) ([]byte, int, error)

// Get fetches a URL with the shared plain client, applying the default
// User-Agent and any caller headers.
func Get(url string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := Client.Do(req)
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

// GetSpoofed fetches a URL with the Chrome-fingerprint client when TLS
// spoofing is enabled, falling back to the plain client otherwise. Plain
// http:// origins never need the spoofed path.
func GetSpoofed(url string, headers map[string]string) ([]byte, int, error) {
	if viper.GetBool(key.NetworkSpoofTLS) && strings.HasPrefix(url, "https://") {
		return DoSpoofed(http.MethodGet, url, headers, "")
	}
	return Get(url, headers)
}
