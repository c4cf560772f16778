// Package config implements the §4.7 configuration loader: it validates
// and materializes a per-request route table and the asset-prefix set
// from the environment map, the request-scoped equivalent of skipper's
// config.Config, which likewise turns a set of flags/files into a
// routing.Table and option set once per process instead of once per
// request.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chr33s/workerstack/assets"
	"github.com/chr33s/workerstack/routing"
)

// ConfigError signals invalid or missing configuration: a missing ROUTES
// key, an empty route list, a malformed route entry, an unresolved
// binding, or an invalid path expression.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

func newConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// RouteEntry is the raw, uncompiled route description accepted either
// inside a parsed ROUTES document or constructed directly in Go.
type RouteEntry struct {
	Binding string `json:"binding"`
	Path    string `json:"path"`
	Preload bool   `json:"preload,omitempty"`
}

// RoutesObject is the structured object form of ROUTES.
type RoutesObject struct {
	Routes            []RouteEntry `json:"routes"`
	SmoothTransitions bool         `json:"smoothTransitions,omitempty"`
}

// Result is the materialized per-request configuration.
type Result struct {
	Table             *routing.Table
	AssetPrefixes     *assets.Set
	SmoothTransitions bool
}

type fetchCapable interface {
	Fetch(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Load builds a Result from a per-request environment map. env must
// contain a ROUTES entry and one entry per route's binding name that
// implements Fetch(ctx, *http.Request) (*http.Response, error).
func Load(env map[string]any) (*Result, error) {
	raw, ok := env["ROUTES"]
	if !ok {
		return nil, newConfigError("ROUTES environment variable is required")
	}

	entries, smooth, err := parseRoutes(raw)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, newConfigError("ROUTES must contain at least one route")
	}

	routes := make([]*routing.Route, 0, len(entries))
	for _, e := range entries {
		if e.Binding == "" || e.Path == "" {
			return nil, newConfigError("route entry missing binding or path: %+v", e)
		}

		v, ok := env[e.Binding]
		if !ok {
			return nil, newConfigError("binding %q is not present in the environment", e.Binding)
		}
		fetcher, ok := v.(fetchCapable)
		if !ok {
			return nil, newConfigError("binding %q does not expose a fetch capability", e.Binding)
		}

		route, err := routing.Compile(routing.Entry{Binding: e.Binding, Path: e.Path, Preload: e.Preload}, fetcher)
		if err != nil {
			return nil, newConfigError("invalid path expression %q: %v", e.Path, err)
		}
		routes = append(routes, route)
	}

	table, err := routing.NewTable(routes)
	if err != nil {
		return nil, newConfigError("%v", err)
	}

	prefixes := assets.NewSet(extraPrefixes(env)...)

	return &Result{Table: table, AssetPrefixes: prefixes, SmoothTransitions: smooth}, nil
}

// parseRoutes extracts the route entries and the smoothTransitions flag
// from the raw ROUTES value, in any of the three shapes §4.7 allows.
//
// The bare-array form never admits smoothTransitions, even though the
// object form does — an intentional asymmetry carried over literally
// from the source behavior (see the "Open question" in the design notes).
func parseRoutes(raw any) ([]RouteEntry, bool, error) {
	switch v := raw.(type) {
	case string:
		var generic any
		if err := json.Unmarshal([]byte(v), &generic); err != nil {
			return nil, false, newConfigError("Failed to parse ROUTES: %v", err)
		}
		return extractFromGeneric(generic)

	case []RouteEntry:
		return v, false, nil

	case RoutesObject:
		return v.Routes, v.SmoothTransitions, nil

	case []any, map[string]any:
		return extractFromGeneric(v)

	default:
		return nil, false, newConfigError("ROUTES must be a JSON object or a JSON string")
	}
}

func extractFromGeneric(v any) ([]RouteEntry, bool, error) {
	switch g := v.(type) {
	case []any:
		entries, err := decodeEntries(g)
		return entries, false, err

	case map[string]any:
		rawRoutes, ok := g["routes"]
		if !ok {
			return nil, false, newConfigError("ROUTES must be a JSON object or a JSON string")
		}
		arr, ok := rawRoutes.([]any)
		if !ok {
			return nil, false, newConfigError("ROUTES must be a JSON object or a JSON string")
		}
		entries, err := decodeEntries(arr)
		if err != nil {
			return nil, false, err
		}
		smooth, _ := g["smoothTransitions"].(bool)
		return entries, smooth, nil

	default:
		return nil, false, newConfigError("ROUTES must be a JSON object or a JSON string")
	}
}

func decodeEntries(arr []any) ([]RouteEntry, error) {
	out := make([]RouteEntry, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, newConfigError("invalid route entry: %v", item)
		}

		binding, _ := m["binding"].(string)
		path, _ := m["path"].(string)
		if binding == "" || path == "" {
			return nil, newConfigError("route entry missing binding or path: %v", item)
		}

		preload, _ := m["preload"].(bool)
		out = append(out, RouteEntry{Binding: binding, Path: path, Preload: preload})
	}
	return out, nil
}

// extraPrefixes parses ASSET_PREFIXES, a JSON-string array. Any parse
// error or non-array result silently falls back to the defaults, per §4.7.
func extraPrefixes(env map[string]any) []string {
	raw, ok := env["ASSET_PREFIXES"]
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil
	}

	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return nil
	}

	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if str, ok := v.(string); ok && str != "" {
			out = append(out, str)
		}
	}
	return out
}
