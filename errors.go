package workerstack

import (
	"fmt"

	"github.com/chr33s/workerstack/config"
)

// ConfigError signals invalid or missing configuration: a missing ROUTES
// key, an empty route list, a malformed route entry, an unresolved
// binding, or an invalid path expression. It is surfaced to the caller
// and never retried. The type is owned by config, which is where
// configuration is actually parsed and validated; workerstack aliases it
// so callers never need to import config directly to use errors.As.
type ConfigError = config.ConfigError

// UpstreamError wraps a failure returned by a binding's Fetch, together
// with the binding's name; Unwrap returns the original error unchanged.
// Handler logs it and answers 502 Bad Gateway; it is not returned to the
// caller of ServeHTTP or Handle.
type UpstreamError struct {
	Binding string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %q: %v", e.Binding, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
