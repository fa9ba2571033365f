package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/Hoodgail/watchlist/color"
	"github.com/Hoodgail/watchlist/constant"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.ProvidersDefaultAnime, "zoro", "Anime provider used when a request does not name one.\nType \"watchlist providers\" to show available providers")
	register(key.ProvidersDefaultManga, "mangadex", "Manga provider used when a request does not name one")
	register(key.ProvidersDefaultMovie, "flixhq", "Movie/TV provider used when a request does not name one")
	register(key.SDKBaseURL, "http://localhost:3000", "Base URL of the generic scraping engine's REST gateway")
	register(key.SDKTimeout, 30, "Per-call timeout for scraping engine requests, in seconds")
	register(key.HiAnimeBaseURL, "https://hianime.to", "Site origin used by the custom video source extractor")
	register(key.MegacloudKeysURL, "https://raw.githubusercontent.com/yogesh-hacker/MegacloudKeys/refs/heads/main/keys.json", "Key distribution document consulted when player responses are encrypted.\nFetched fresh on every decryption, never cached")
	register(key.MegacloudReferer, "", "Overrides the Referer sent to the embed player API.\nWhen empty the referer is derived from the embed origin")
	register(key.ExtractorPreferHD, true, "Prefer HD-labelled servers during server selection")
	register(key.MangaPlusAPIBaseURL, "https://jumpg-webapi.tokyo-cdn.com", "Base URL of the manga distributor viewer API")
	register(key.MangaPlusCDNHost, "mangaplus.shueisha.co.jp", "Only chapter page images originating from this host are accepted")
	register(key.MangaPlusQuality, "high", "Image quality requested from the viewer API.\nAvailable options are: low, high, super_high")
	register(key.RelationsWrite, true, "Persist resolved provider id mappings.\nWrites are best effort and never surface failures")
	register(key.NetworkSpoofTLS, true, "Use a Chrome TLS fingerprint for origins behind anti-bot challenges")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
