// Package htmlrewrite streams an HTML response through a token-at-a-time
// rewriter: it scopes a fixed set of URL-bearing attributes to a mount
// prefix, injects a base-path script and <base> element into <head>, and
// conditionally injects speculation rules or a deferred preload script.
//
// Rewriting happens token by token on top of golang.org/x/net/html's
// streaming tokenizer rather than a full DOM parse, so memory use stays
// proportional to the largest single token, not the whole document —
// the §9 design note's streaming-tokenizer option.
package htmlrewrite

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/chr33s/workerstack/assets"
	"github.com/chr33s/workerstack/rewrite"
)

// Options configures a single rewrite pass.
type Options struct {
	Mount             string
	AssetPrefixes     *assets.Set
	SmoothTransitions bool
	PreloadMounts     []string
	UserAgent         string
}

var rewriteAttrNames = map[string]bool{
	"href": true, "src": true, "poster": true, "content": true,
	"action": true, "cite": true, "formaction": true, "manifest": true,
	"ping": true, "archive": true, "code": true, "codebase": true,
	"data": true, "url": true, "srcset": true,
	"data-src": true, "data-href": true, "data-url": true, "data-srcset": true,
	"data-background": true, "data-image": true, "data-link": true,
	"data-poster": true, "data-video": true, "data-audio": true,
	"component-url": true, "astro-component-url": true, "sveltekit-url": true,
	"renderer-url": true, "background": true, "xlink:href": true,
}

// Rewrite reads HTML from r and writes the rewritten document to w.
func Rewrite(w io.Writer, r io.Reader, opts Options) error {
	z := html.NewTokenizer(r)

	headInjected := false
	smoothInjected := false
	specInjected := false
	preloadInjected := false

	wantPreload := len(opts.PreloadMounts) > 0
	chromium := isChromium(opts.UserAgent)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return err
			}
			return nil
		}

		raw := z.Raw()

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if rewriteAttrs(&tok, opts) {
				if _, err := io.WriteString(w, tok.String()); err != nil {
					return err
				}
			} else if _, err := w.Write(raw); err != nil {
				return err
			}

			if tok.Data == "head" && tt == html.StartTagToken && !headInjected {
				headInjected = true
				if _, err := io.WriteString(w, headInjectionHTML(opts.Mount)); err != nil {
					return err
				}
			}

		case html.EndTagToken:
			tok := z.Token()

			if tok.Data == "head" {
				if opts.SmoothTransitions && !smoothInjected {
					smoothInjected = true
					if _, err := io.WriteString(w, smoothTransitionsHTML); err != nil {
						return err
					}
				}
				if wantPreload && chromium && !specInjected {
					specInjected = true
					if _, err := io.WriteString(w, speculationRulesHTML(opts.PreloadMounts)); err != nil {
						return err
					}
				}
			}

			if tok.Data == "body" {
				if wantPreload && !chromium && !preloadInjected {
					preloadInjected = true
					if _, err := io.WriteString(w, preloadScriptTagHTML(opts.Mount)); err != nil {
						return err
					}
				}
			}

			if _, err := w.Write(raw); err != nil {
				return err
			}

		default:
			if _, err := w.Write(raw); err != nil {
				return err
			}
		}
	}
}

// rewriteAttrs applies the all-elements handler's rules to tok in place
// and reports whether anything changed.
func rewriteAttrs(tok *html.Token, opts Options) bool {
	changed := false

	if strings.EqualFold(tok.Data, "link") {
		rel := strings.ToLower(attrValue(tok, "rel"))
		if strings.Contains(rel, "icon") || strings.Contains(rel, "shortcut") {
			for i := range tok.Attr {
				if tok.Attr[i].Key != "href" {
					continue
				}
				v := tok.Attr[i].Val
				if strings.HasPrefix(v, "/") && !rewrite.Scoped(v, opts.Mount) {
					tok.Attr[i].Val = scopePath(opts.Mount, v)
					changed = true
				}
			}
		}
	}

	for i := range tok.Attr {
		name := tok.Attr[i].Key
		if !rewriteAttrNames[name] {
			continue
		}

		if name == "srcset" {
			if newVal, ok := rewriteSrcset(tok.Attr[i].Val, opts); ok {
				tok.Attr[i].Val = newVal
				changed = true
			}
			continue
		}

		v := tok.Attr[i].Val
		if strings.HasPrefix(v, "/") && !rewrite.Scoped(v, opts.Mount) && opts.AssetPrefixes.HasPrefix(v) {
			tok.Attr[i].Val = scopePath(opts.Mount, v)
			changed = true
		}
	}

	return changed
}

func scopePath(mount, path string) string {
	if mount == "/" {
		return path
	}
	return mount + path
}

func attrValue(tok *html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func rewriteSrcset(val string, opts Options) (string, bool) {
	candidates := strings.Split(val, ",")
	changed := false
	out := make([]string, len(candidates))
	for i, c := range candidates {
		c = strings.TrimSpace(c)
		fields := strings.Fields(c)
		if len(fields) == 0 {
			out[i] = c
			continue
		}
		url := fields[0]
		if strings.HasPrefix(url, "/") && !rewrite.Scoped(url, opts.Mount) && opts.AssetPrefixes.HasPrefix(url) {
			fields[0] = scopePath(opts.Mount, url)
			changed = true
		}
		out[i] = strings.Join(fields, " ")
	}
	return strings.Join(out, ", "), changed
}

func isChromium(ua string) bool {
	l := strings.ToLower(ua)
	chromeLike := strings.Contains(l, "chrome") || strings.Contains(l, "edg/") || strings.Contains(l, "opr/") || strings.Contains(l, "brave")
	if !chromeLike {
		return false
	}
	if strings.Contains(l, "firefox") {
		return false
	}
	if strings.Contains(l, "safari") && !strings.Contains(l, "chrome") {
		return false
	}
	return true
}

func basePath(mount string) string {
	if mount == "/" {
		return "/"
	}
	return mount + "/"
}

func headInjectionHTML(mount string) string {
	mountJSON, _ := json.Marshal(mount)
	href := html.EscapeString(basePath(mount))

	return fmt.Sprintf(`<script>
window.__BASE_PATH__ = %s;
(function() {
  var scheme = "workerstack://";
  var mount = %s;
  var origFetch = globalThis.fetch;
  globalThis.fetch = function(input, init) {
    var prefix = mount === "/" ? "/" : mount + "/";
    if (typeof input === "string" && input.indexOf(scheme) === 0) {
      input = prefix + input.slice(scheme.length);
    } else if (input instanceof Request && input.url.indexOf(scheme) === 0) {
      input = new Request(prefix + input.url.slice(scheme.length), input);
    }
    return origFetch(input, init);
  };
})();
</script><base href="%s">`, mountJSON, mountJSON, href)
}

const smoothTransitionsHTML = `<style>
@supports (view-transition-name: none) {
  ::view-transition-old(root),
  ::view-transition-new(root) {
    animation-duration: 0.3s;
    animation-timing-function: ease-in-out;
  }
  main { view-transition-name: main-content; }
  nav { view-transition-name: navigation; }
}
</style>`

func speculationRulesHTML(mounts []string) string {
	payload, _ := json.Marshal(map[string]any{
		"prefetch": []map[string]any{
			{"urls": mounts},
		},
	})
	return fmt.Sprintf(`<script type="speculationrules">%s</script>`, payload)
}

func preloadScriptTagHTML(mount string) string {
	src := basePath(mount) + "__mf-preload.js"
	return fmt.Sprintf(`<script src="%s" defer></script>`, html.EscapeString(src))
}
