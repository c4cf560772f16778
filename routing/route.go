// Package routing holds the compiled route table: an ordered,
// deterministically sorted set of compiled routes plus the
// longest-specific-prefix selection algorithm used to dispatch an
// incoming request to its upstream binding.
package routing

import (
	"github.com/chr33s/workerstack/pathexpr"
)

// Fetcher holds a bound upstream's fetch capability. It is an empty
// interface so that routing need not import the root package and has no
// dependency cycle; routing itself never checks or calls its methods.
type Fetcher interface{}

// Route is an immutable compiled route entry.
type Route struct {
	Expr            string
	Matcher         *pathexpr.Compiled
	Binding         string
	Fetch           Fetcher
	Preload         bool
	IsStaticMount   bool
	StaticMount     string
	BaseSpecificity int
}

// Entry is the raw, uncompiled route description accepted from the
// configuration loader.
type Entry struct {
	Binding string
	Path    string
	Preload bool
}

// Compile turns a raw entry plus its resolved fetcher into a Route.
func Compile(e Entry, fetch Fetcher) (*Route, error) {
	c, err := pathexpr.Compile(e.Path)
	if err != nil {
		return nil, err
	}
	return &Route{
		Expr:            c.Expr,
		Matcher:         c,
		Binding:         e.Binding,
		Fetch:           fetch,
		Preload:         e.Preload,
		IsStaticMount:   c.IsStaticMount,
		StaticMount:     c.StaticMount,
		BaseSpecificity: c.BaseSpecificity,
	}, nil
}

// IsRoot reports whether this route is the root mount route.
func (r *Route) IsRoot() bool {
	return (r.IsStaticMount && r.StaticMount == "/") || r.Expr == "/"
}
