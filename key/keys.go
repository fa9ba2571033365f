// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Provider Defaults - these keys control how requests are routed when the caller does not name a provider.
const (
	ProvidersDefaultAnime = "providers.default_anime"
	ProvidersDefaultManga = "providers.default_manga"
	ProvidersDefaultMovie = "providers.default_movie"
)

// Scraping Engine Gateway - these keys locate the generic scraping engine's REST surface.
const (
	SDKBaseURL = "sdk.base_url"
	SDKTimeout = "sdk.timeout"
)

// HiAnime Extraction - these keys configure the reverse-engineered video source extractor.
const (
	HiAnimeBaseURL    = "hianime.base_url"
	MegacloudKeysURL  = "megacloud.keys_url"
	MegacloudReferer  = "megacloud.referer"
	ExtractorPreferHD = "extractor.prefer_hd"
)

// MangaPlus Distribution - these keys configure the chapter image pipeline.
const (
	MangaPlusAPIBaseURL = "mangaplus.api_base_url"
	MangaPlusCDNHost    = "mangaplus.cdn_host"
	MangaPlusQuality    = "mangaplus.image_quality"
)

// Relation Persistence - these keys configure the best-effort id mapping sink.
const (
	RelationsWrite = "relations.write"
)

// Network Behavior - these keys tune the shared HTTP clients.
const (
	NetworkSpoofTLS = "network.spoof_tls"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the command-line application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
