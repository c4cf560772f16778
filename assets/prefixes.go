// Package assets normalizes and merges the default and user-supplied
// asset-root path prefixes used to decide which upstream-origin paths
// should be mount-rewritten in HTML attributes and CSS url()/@import
// targets.
package assets

import "strings"

// Defaults is the fixed default set of asset-root prefixes.
var Defaults = []string{"/assets/", "/static/", "/build/", "/_astro/", "/_next/", "/fonts/"}

// Set is a normalized set of asset prefixes, each of the form "/X/".
type Set struct {
	prefixes map[string]struct{}
	ordered  []string
}

// NewSet builds a Set from the fixed defaults merged with any additional,
// normalized, user-supplied prefixes.
func NewSet(extra ...string) *Set {
	s := &Set{prefixes: make(map[string]struct{})}
	for _, p := range Defaults {
		s.add(p)
	}
	for _, p := range extra {
		if n := Normalize(p); n != "" {
			s.add(n)
		}
	}
	return s
}

func (s *Set) add(p string) {
	if _, ok := s.prefixes[p]; ok {
		return
	}
	s.prefixes[p] = struct{}{}
	s.ordered = append(s.ordered, p)
}

// Normalize adds a leading and trailing '/' to p if missing. An empty
// input normalizes to "".
func Normalize(p string) string {
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p = p + "/"
	}
	return p
}

// HasPrefix reports whether path begins with any known asset prefix.
func (s *Set) HasPrefix(path string) bool {
	for _, p := range s.ordered {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Prefixes returns the set members in insertion order (defaults first).
func (s *Set) Prefixes() []string {
	out := make([]string, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Bodies returns each prefix with its leading and trailing '/' stripped,
// for embedding inside a regexp alternation (e.g. by cssrewrite).
func (s *Set) Bodies() []string {
	out := make([]string, len(s.ordered))
	for i, p := range s.ordered {
		out[i] = strings.Trim(p, "/")
	}
	return out
}
