package extractor

import "github.com/Hoodgail/watchlist/media"

// Result is the outcome of one extraction attempt. It is a tagged variant:
// either a success carrying sources, or a failure carrying a classified
// error plus a fallback-eligibility flag.
type Result struct {
	ok       bool
	sources  *media.SourceResult
	err      *Error
	fallback bool
	debug    map[string]string
}

// Ok wraps a successful extraction.
func Ok(sources *media.SourceResult) Result {
	return Result{ok: true, sources: sources}
}

// Fail wraps a failed extraction. fallback signals whether the registry may
// try the next candidate (or the generic engine) instead of surfacing the
// error directly.
func Fail(err *Error, fallback bool) Result {
	if err == nil {
		err = NewError(KindUnknown, "unspecified failure", nil)
	}
	return Result{err: err, fallback: fallback}
}

// Succeeded reports whether the attempt produced sources.
func (r Result) Succeeded() bool {
	return r.ok
}

// Sources returns the extracted sources when the attempt succeeded.
func (r Result) Sources() (*media.SourceResult, bool) {
	return r.sources, r.ok
}

// Err returns the classified failure, or nil on success.
func (r Result) Err() *Error {
	if r.ok {
		return nil
	}
	return r.err
}

// ShouldFallback reports whether the caller should try the next strategy.
func (r Result) ShouldFallback() bool {
	return !r.ok && r.fallback
}

// WithDebug attaches diagnostic annotations to the result.
func (r Result) WithDebug(key, value string) Result {
	if r.debug == nil {
		r.debug = make(map[string]string)
	}
	r.debug[key] = value
	return r
}

// Debug returns the diagnostic annotations attached during extraction.
func (r Result) Debug() map[string]string {
	return r.debug
}
