// Package proxy composes the route match, header rewriter, and body
// rewriters into the mount-aware reverse proxy handler: forward the
// request, branch on status and content-type, rewrite, and emit.
package proxy

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/chr33s/workerstack/assets"
	"github.com/chr33s/workerstack/cssrewrite"
	"github.com/chr33s/workerstack/htmlrewrite"
	"github.com/chr33s/workerstack/rewrite"
)

// Binding is the capability a bound upstream exposes. It is defined
// locally, rather than imported from the root package, so that proxy has
// no dependency on it; anything satisfying this method set (in
// particular workerstack.Binding) works here.
type Binding interface {
	Fetch(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Options carries the per-request behavior flags from the configuration
// loader that the proxy handler needs beyond the match itself.
type Options struct {
	SmoothTransitions bool
	// PreloadMounts lists the other static mounts this page's HTML
	// should hint the browser to prefetch, and what the synthesized
	// /__mf-preload.js endpoint enumerates. Empty disables both.
	PreloadMounts []string
}

var hopByHopHeaders = []string{"Content-Length", "Etag", "Content-Encoding"}

// ForwardURL builds the URL to issue to the upstream binding: the
// incoming URL with the mount prefix stripped.
func ForwardURL(incoming *url.URL, mount string) *url.URL {
	out := *incoming
	if mount == "/" {
		return &out
	}

	if incoming.Path == mount {
		out.Path = "/"
		return &out
	}

	trimmed := strings.TrimPrefix(incoming.Path, mount+"/")
	switch {
	case trimmed == incoming.Path:
		out.Path = "/"
	case trimmed == "":
		out.Path = "/"
	case trimmed[0] != '/':
		out.Path = "/" + trimmed
	default:
		out.Path = trimmed
	}
	return &out
}

// Handle forwards r to binding scoped to mountActual and writes the
// mount-rewritten response to w.
func Handle(ctx context.Context, w http.ResponseWriter, r *http.Request, binding Binding, mountActual string, prefixes *assets.Set, opts Options) error {
	forwardURL := ForwardURL(r.URL, mountActual)

	if len(opts.PreloadMounts) > 0 && forwardURL.Path == "/__mf-preload.js" {
		WritePreloadScript(w, opts.PreloadMounts)
		return nil
	}

	upstreamReq := r.Clone(ctx)
	upstreamReq.URL = forwardURL
	upstreamReq.RequestURI = ""

	resp, err := binding.Fetch(ctx, upstreamReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return handleRedirect(w, r, resp, mountActual)
	case strings.Contains(resp.Header.Get("Content-Type"), "text/html"):
		return handleHTML(w, r, resp, mountActual, prefixes, opts)
	case strings.Contains(resp.Header.Get("Content-Type"), "text/css"):
		return handleCSS(w, resp, mountActual, prefixes)
	default:
		return handlePassthrough(w, resp, mountActual)
	}
}

func handleRedirect(w http.ResponseWriter, r *http.Request, resp *http.Response, mount string) error {
	h := resp.Header.Clone()
	if loc := h.Get("Location"); loc != "" {
		h.Set("Location", rewrite.Location(loc, r.URL, mount))
	}
	rewriteSetCookieHeader(h, mount)
	copyHeader(w.Header(), h)
	w.WriteHeader(resp.StatusCode)
	return nil
}

func handleHTML(w http.ResponseWriter, r *http.Request, resp *http.Response, mount string, prefixes *assets.Set, opts Options) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	h := resp.Header.Clone()
	stripHopByHop(h)
	rewriteSetCookieHeader(h, mount)
	copyHeader(w.Header(), h)
	w.WriteHeader(resp.StatusCode)

	return htmlrewrite.Rewrite(w, bytes.NewReader(body), htmlrewrite.Options{
		Mount:             mount,
		AssetPrefixes:     prefixes,
		SmoothTransitions: opts.SmoothTransitions,
		PreloadMounts:     opts.PreloadMounts,
		UserAgent:         r.Header.Get("User-Agent"),
	})
}

func handleCSS(w http.ResponseWriter, resp *http.Response, mount string, prefixes *assets.Set) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	h := resp.Header.Clone()
	stripHopByHop(h)
	rewriteSetCookieHeader(h, mount)
	copyHeader(w.Header(), h)
	w.WriteHeader(resp.StatusCode)

	_, err = io.WriteString(w, cssrewrite.Rewrite(string(body), mount, prefixes))
	return err
}

func handlePassthrough(w http.ResponseWriter, resp *http.Response, mount string) error {
	h := resp.Header.Clone()
	rewriteSetCookieHeader(h, mount)
	copyHeader(w.Header(), h)
	w.WriteHeader(resp.StatusCode)
	_, err := io.Copy(w, resp.Body)
	return err
}

func stripHopByHop(h http.Header) {
	for _, k := range hopByHopHeaders {
		h.Del(k)
	}
}

func rewriteSetCookieHeader(h http.Header, mount string) {
	vals := h.Values("Set-Cookie")
	if len(vals) == 0 {
		return
	}
	h.Del("Set-Cookie")
	for _, v := range rewrite.SetCookies(vals, mount) {
		h.Add("Set-Cookie", v)
	}
}

func copyHeader(dst, src http.Header) {
	for k, v := range src {
		dst[k] = append([]string(nil), v...)
	}
}
