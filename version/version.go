// Package version tracks the running release and checks for newer ones.
package version

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hoodgail/watchlist/filesystem"
	"github.com/Hoodgail/watchlist/network"
	"github.com/Hoodgail/watchlist/util"
	"github.com/Hoodgail/watchlist/where"
	"github.com/metafates/gache"
)

const releasesURL = "https://api.github.com/repos/Hoodgail/watchlist/releases/latest"

// Cached for two days to stay clear of the GitHub API rate limit.
var versionCacher = gache.New[string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "version.json"),
	Lifetime:   time.Hour * 24 * 2,
	FileSystem: &filesystem.GacheFs{},
})

// Latest returns the newest published release, without the "v" prefix.
func Latest() (string, error) {
	cached, expired, err := versionCacher.Get()
	if err != nil {
		return "", err
	}

	if !expired && cached != "" {
		return cached, nil
	}

	resp, err := network.Client.Get(releasesURL)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	_ = versionCacher.Set(latest)
	return latest, nil
}
