// Package relation persists resolved reference-id to provider-id mappings.
//
// Bindings are best effort. Lookups feed future resolutions; a failed write
// is logged and swallowed, never surfaced to the caller.
package relation

import (
	"strings"
	"sync"

	"github.com/Hoodgail/watchlist/filesystem"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/log"
	"github.com/Hoodgail/watchlist/media"
	"github.com/Hoodgail/watchlist/where"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// cacheData is the persisted layout of the mapping registry.
type cacheData struct {
	Relations map[string]map[string]string `json:"relations"`
}

// Store is the thread-safe mapping registry backed by a gache file.
type Store struct {
	internal *gache.Cache[*cacheData]
	mu       sync.RWMutex
}

// NewStore opens the registry at the standard location.
func NewStore() *Store {
	return &Store{
		internal: gache.New[*cacheData](
			&gache.Options{
				Path:       where.Relations(),
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

func normalizedRef(refID string) string {
	return strings.ToLower(strings.TrimSpace(refID))
}

// Get returns the provider-specific id previously bound to a reference id.
func (s *Store) Get(refID, provider string) mo.Option[string] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, expired, err := s.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[string]()
	}

	bound, ok := data.Relations[normalizedRef(refID)][normalizedRef(provider)]
	if !ok {
		return mo.None[string]()
	}
	return mo.Some(bound)
}

// Bind records a resolved mapping. Writes are fire-and-forget: disabled
// registries and persistence failures are absorbed here.
func (s *Store) Bind(refID, provider, providerID string) {
	if !viper.GetBool(key.RelationsWrite) {
		return
	}
	if refID == "" || provider == "" || providerID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, expired, err := s.internal.Get()
	if err != nil || expired || data == nil {
		data = &cacheData{Relations: make(map[string]map[string]string)}
	}
	if data.Relations == nil {
		data.Relations = make(map[string]map[string]string)
	}

	ref := normalizedRef(refID)
	if data.Relations[ref] == nil {
		data.Relations[ref] = make(map[string]string)
	}
	data.Relations[ref][normalizedRef(provider)] = providerID

	if err := s.internal.Set(data); err != nil {
		log.Warnf("relation write for %s/%s failed: %s", ref, provider, err)
	}
}

// FindClosest picks the search result whose title most closely matches the
// given name. Fuzzy matching prefilters the candidates; Levenshtein distance
// breaks the remainder.
func FindClosest(name string, candidates []media.SearchResult) mo.Option[media.SearchResult] {
	name = normalizedRef(name)
	if name == "" || len(candidates) == 0 {
		return mo.None[media.SearchResult]()
	}

	matched := lo.Filter(candidates, func(candidate media.SearchResult, _ int) bool {
		if fuzzy.MatchNormalizedFold(name, candidate.Title) {
			return true
		}
		for _, alt := range candidate.AltTitles {
			if fuzzy.MatchNormalizedFold(name, alt) {
				return true
			}
		}
		return false
	})
	if len(matched) == 0 {
		matched = candidates
	}

	closest := lo.MinBy(matched, func(a, b media.SearchResult) bool {
		return levenshtein.Distance(name, normalizedRef(a.Title)) <
			levenshtein.Distance(name, normalizedRef(b.Title))
	})

	return mo.Some(closest)
}
