// Package rewrite performs mount-scoped rewrites of the Location and
// Set-Cookie response headers, the way skipper's builtin redirect and
// cookie filters manipulate those same headers for a single route's
// backend, generalized here to an arbitrary mount prefix.
package rewrite

import (
	"net/url"
	"regexp"

	log "github.com/sirupsen/logrus"
)

// Scoped reports whether path is already mount-scoped: mount is "/", or
// path is exactly mount or begins with mount+"/".
func Scoped(path, mount string) bool {
	if mount == "/" {
		return true
	}
	return path == mount || (len(path) > len(mount) && path[:len(mount)] == mount && path[len(mount)] == '/')
}

// Location rewrites a Location header value relative to the incoming
// request's origin. A same-origin, absolute-path redirect gets the mount
// prepended; a cross-origin or unparseable value passes through
// unchanged (the BadRewrite policy from §7).
func Location(location string, reqURL *url.URL, mount string) string {
	u, err := url.Parse(location)
	if err != nil {
		log.WithFields(log.Fields{"location": location}).Warn("rewrite: could not parse Location header, passing through")
		return location
	}

	resolved := reqURL.ResolveReference(u)

	reqOrigin := reqURL.Scheme + "://" + reqURL.Host
	resolvedOrigin := resolved.Scheme + "://" + resolved.Host
	if resolvedOrigin != reqOrigin {
		return location
	}

	if mount != "/" && len(resolved.Path) > 0 && resolved.Path[0] == '/' && !Scoped(resolved.Path, mount) {
		resolved.Path = mount + resolved.Path
	}

	return resolved.String()
}

var pathDirective = regexp.MustCompile(`(?i);(\s*)Path=/(;|$)`)

// SetCookie rewrites the Path scope of a single Set-Cookie header value.
// Only a cookie explicitly scoped to the root path ("; Path=/") is
// touched; every other cookie passes through unchanged.
func SetCookie(cookie, mount string) string {
	if mount == "/" {
		return cookie
	}
	return pathDirective.ReplaceAllString(cookie, `;${1}Path=`+mount+`/$2`)
}

// SetCookieReader describes a host capability to read the Set-Cookie
// header as a list of distinct values. Nothing in this module calls one:
// proxy reads the list directly with http.Header.Values.
type SetCookieReader func() ([]string, bool)

// SetCookies rewrites every cookie in values and returns the results in
// the same order. The caller replaces the header with the returned slice.
func SetCookies(values []string, mount string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = SetCookie(v, mount)
	}
	return out
}
