package routing

import (
	"fmt"
	"sort"
)

// Table is an ordered, immutable set of compiled routes. After
// construction it is sorted descending first by base specificity, then
// by expression length — the invariant from §4.2.
type Table struct {
	routes []*Route
}

// NewTable builds a route table from already-compiled routes. It rejects
// an empty route list, matching the construction-time invariant that a
// route table is never empty.
func NewTable(routes []*Route) (*Table, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("routing: route table must not be empty")
	}

	sorted := make([]*Route, len(routes))
	copy(sorted, routes)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.BaseSpecificity != b.BaseSpecificity {
			return a.BaseSpecificity > b.BaseSpecificity
		}
		return len(a.Expr) > len(b.Expr)
	})

	return &Table{routes: sorted}, nil
}

// Routes returns the sorted route slice. Callers must not mutate it.
func (t *Table) Routes() []*Route { return t.routes }

// PreloadMounts lists every preload-flagged static mount other than
// exclude, in table order.
func (t *Table) PreloadMounts(exclude string) []string {
	var out []string
	for _, r := range t.routes {
		if r.Preload && r.IsStaticMount && r.StaticMount != exclude {
			out = append(out, r.StaticMount)
		}
	}
	return out
}

// Match is the outcome of a successful route selection.
type Match struct {
	Route       *Route
	MountActual string
	Score       int
}

// Select runs the §4.2 longest-specific-prefix algorithm: scan every
// route, score each match, keep the highest score, and fall back to a
// configured root route when nothing else matched.
func (t *Table) Select(path string) (*Match, bool) {
	var best *Match
	var root *Route

	for _, r := range t.routes {
		if r.IsRoot() && root == nil {
			root = r
		}

		m := r.Matcher.Matcher.FindStringSubmatch(path)
		if m == nil {
			continue
		}

		mountActual := m[1]
		score := len(mountActual)*1_000_000 + r.BaseSpecificity*1_000 + len(r.Expr)
		if best == nil || score > best.Score {
			best = &Match{Route: r, MountActual: mountActual, Score: score}
		}
	}

	if best != nil {
		return best, true
	}

	if root != nil {
		return &Match{Route: root, MountActual: "/", Score: 0}, true
	}

	return nil, false
}
