// Package cssrewrite rewrites CSS url(...) and @import targets that refer
// to a known asset-root prefix, prepending the mount so an upstream's
// stylesheet resolves correctly when served from a sub-path. It operates
// line-agnostically on the full text with two regexp substitutions, the
// same regexp.ReplaceAll approach skipper's modpath filter uses on
// request paths, applied here to a response body instead.
package cssrewrite

import (
	"regexp"
	"strings"

	"github.com/chr33s/workerstack/assets"
)

// Rewrite applies the §4.5 url()/@import substitutions to css, scoping
// any asset-prefixed target to mount. It is a known limitation (per the
// spec's design notes) that this may also rewrite url()/@import text
// appearing inside comments or unrelated quoted content; the regexes are
// not CSS-aware.
func Rewrite(css, mount string, prefixes *assets.Set) string {
	alt := strings.Join(quoteAll(prefixes.Bodies()), "|")
	if alt == "" {
		return css
	}

	scopedMount := mount
	if mount == "/" {
		scopedMount = ""
	}

	urlPattern := regexp.MustCompile(`url\(\s*(['"]?)(/(?:` + alt + `)/)`)
	css = urlPattern.ReplaceAllString(css, `url(${1}`+scopedMount+`${2}`)

	importPattern := regexp.MustCompile(`@import\s+(['"])(/(?:` + alt + `)/)`)
	css = importPattern.ReplaceAllString(css, `@import ${1}`+scopedMount+`${2}`)

	return css
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = regexp.QuoteMeta(s)
	}
	return out
}
