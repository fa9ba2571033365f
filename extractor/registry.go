package extractor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Hoodgail/watchlist/log"
)

// Registry is a priority-ordered collection of extractors keyed by the
// provider names they claim.
//
// The table is built once at process start and treated as read-only
// afterwards; concurrent Extract calls need no locking.
type Registry struct {
	entries map[string][]entry
	seq     int
}

type entry struct {
	ext Extractor
	seq int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string][]entry)}
}

// Register adds an extractor for every provider it claims. Extractors
// claiming the same provider are ordered by priority, ties resolved by
// registration order.
func (r *Registry) Register(ext Extractor) {
	r.seq++
	e := entry{ext: ext, seq: r.seq}

	for _, provider := range ext.Providers() {
		name := normalize(provider)
		r.entries[name] = append(r.entries[name], e)

		sort.SliceStable(r.entries[name], func(i, j int) bool {
			a, b := r.entries[name][i], r.entries[name][j]
			if a.ext.Priority() != b.ext.Priority() {
				return a.ext.Priority() > b.ext.Priority()
			}
			return a.seq < b.seq
		})
	}
}

// Covers reports whether any extractor claims the provider.
func (r *Registry) Covers(provider string) bool {
	return len(r.entries[normalize(provider)]) > 0
}

// Extract runs the highest-priority extractor whose CanHandle accepts the
// request. A result with ShouldFallback moves on to the next candidate; when
// no candidate remains the returned result tells the caller to use the
// generic engine instead.
func (r *Registry) Extract(provider string, ec Context) Result {
	candidates := r.entries[normalize(provider)]
	if len(candidates) == 0 {
		return Fail(NewError(KindNotAvailable, fmt.Sprintf("no extractor claims provider %q", provider), nil), true)
	}

	var last Result
	attempted := false

	for _, c := range candidates {
		if !c.ext.CanHandle(ec) {
			continue
		}

		attempted = true
		last = invoke(c.ext, ec)

		if last.Succeeded() || !last.ShouldFallback() {
			return last
		}

		log.Debugf("extractor %s failed for %s, trying next: %v", c.ext.Name(), provider, last.Err())
	}

	if !attempted {
		return Fail(NewError(KindNotAvailable, fmt.Sprintf("no extractor accepted the request for %q", provider), nil), true)
	}

	return last
}

// invoke shields the registry from a panicking extractor; an escaped panic
// is classified as unknown and remains fallback-eligible.
func invoke(ext Extractor, ec Context) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("extractor %s panicked: %v", ext.Name(), rec)
			result = Fail(NewError(KindUnknown, fmt.Sprintf("extractor %s panicked", ext.Name()), fmt.Errorf("%v", rec)), true)
		}
	}()

	return ext.Extract(ec)
}

func normalize(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
