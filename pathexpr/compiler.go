// Package pathexpr compiles declarative path expressions — static
// mounts, named parameters, and bounded or unbounded trailing wildcards —
// into a deterministic matcher plus a specificity score, the way eskip
// compiles route predicates for skipper, but for the simpler mount-style
// grammar a microfrontend router needs.
package pathexpr

import (
	"fmt"
	"regexp"
	"strings"
)

// Compiled is the result of compiling a path expression: a matcher whose
// first capture group captures the mount-actual portion of a matched
// path, plus the metadata needed for route-table sorting and selection.
type Compiled struct {
	Expr            string
	Matcher         *regexp.Regexp
	IsStaticMount   bool
	StaticMount     string
	BaseSpecificity int
}

var nameChar = func(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

var trailingWildcard = regexp.MustCompile(`^:([A-Za-z0-9_]+)([*+])$`)

// Compile parses a path expression and builds its matcher.
func Compile(expr string) (*Compiled, error) {
	norm := normalize(expr)
	base := baseSpecificity(norm)

	if !strings.ContainsAny(norm, ":()\\") {
		pattern := fmt.Sprintf(`^(%s)(?:/.*)?$`, regexp.QuoteMeta(norm))
		rx, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("pathexpr: %q: %w", expr, err)
		}
		return &Compiled{
			Expr:            norm,
			Matcher:         rx,
			IsStaticMount:   true,
			StaticMount:     norm,
			BaseSpecificity: base,
		}, nil
	}

	parts := splitNonEmpty(norm)
	if len(parts) == 0 {
		return nil, fmt.Errorf("pathexpr: %q: empty expression", expr)
	}

	last := parts[len(parts)-1]
	wildcardName := ""
	wildcardKind := byte(0)
	mountParts := parts
	if m := trailingWildcard.FindStringSubmatch(last); m != nil {
		wildcardName = m[1]
		wildcardKind = m[2][0]
		mountParts = parts[:len(parts)-1]
	}
	_ = wildcardName

	translated := make([]string, len(mountParts))
	for i, p := range mountParts {
		t, err := translateSegment(p)
		if err != nil {
			return nil, fmt.Errorf("pathexpr: %q: %w", expr, err)
		}
		translated[i] = t
	}
	mountPattern := ""
	if len(translated) > 0 {
		mountPattern = "/" + strings.Join(translated, "/")
	}

	var pattern string
	switch wildcardKind {
	case '+':
		pattern = fmt.Sprintf(`^(%s)/.+$`, mountPattern)
	default: // '*' or no wildcard
		pattern = fmt.Sprintf(`^(%s)(?:/.*)?$`, mountPattern)
	}

	rx, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("pathexpr: %q: %w", expr, err)
	}

	return &Compiled{
		Expr:            norm,
		Matcher:         rx,
		IsStaticMount:   false,
		BaseSpecificity: base,
	}, nil
}

// normalize prepends a leading slash and trims a trailing slash, except
// for the root expression itself.
func normalize(expr string) string {
	if expr == "" {
		return "/"
	}
	if expr[0] != '/' {
		expr = "/" + expr
	}
	if len(expr) > 1 && strings.HasSuffix(expr, "/") {
		expr = strings.TrimRight(expr, "/")
		if expr == "" {
			expr = "/"
		}
	}
	return expr
}

// baseSpecificity is the length of the literal prefix before the first
// unescaped ':' in the normalized expression, or its full length if it
// has no parameter marker.
func baseSpecificity(norm string) int {
	for i := 0; i < len(norm); i++ {
		switch norm[i] {
		case '\\':
			i++
		case ':':
			return i
		}
	}
	return len(norm)
}

func splitNonEmpty(s string) []string {
	raw := strings.Split(s, "/")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// translateSegment turns one '/'-delimited segment of a path expression
// into the corresponding fragment of the compiled regular expression.
func translateSegment(seg string) (string, error) {
	var out strings.Builder
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			out.WriteString(regexp.QuoteMeta(literal.String()))
			literal.Reset()
		}
	}

	i := 0
	for i < len(seg) {
		c := seg[i]
		switch c {
		case '\\':
			if i+1 >= len(seg) {
				return "", fmt.Errorf("unterminated escape in %q", seg)
			}
			literal.WriteByte(seg[i+1])
			i += 2

		case ':':
			flush()
			j := i + 1
			for j < len(seg) && nameChar(seg[j]) {
				j++
			}
			if j == i+1 {
				return "", fmt.Errorf("empty parameter name in %q", seg)
			}

			if j < len(seg) && seg[j] == '(' {
				frag, next, err := consumeBalanced(seg, j)
				if err != nil {
					return "", err
				}
				out.WriteString("(")
				out.WriteString(unescapeOnce(frag))
				out.WriteString(")")
				i = next
			} else {
				out.WriteString(`([^/]+)`)
				i = j
			}

		default:
			literal.WriteByte(c)
			i++
		}
	}
	flush()
	return out.String(), nil
}

// consumeBalanced reads the parenthesized fragment starting at s[open]
// (which must be '('), honoring backslash-escaping of parens inside it,
// and returns the fragment's inner text (excluding the enclosing parens)
// and the index just past the closing paren.
func consumeBalanced(s string, open int) (string, int, error) {
	depth := 1
	var frag strings.Builder
	k := open + 1
	for k < len(s) {
		if s[k] == '\\' && k+1 < len(s) {
			frag.WriteByte(s[k])
			frag.WriteByte(s[k+1])
			k += 2
			continue
		}
		if s[k] == '(' {
			depth++
		} else if s[k] == ')' {
			depth--
			if depth == 0 {
				return frag.String(), k + 1, nil
			}
		}
		frag.WriteByte(s[k])
		k++
	}
	return "", 0, fmt.Errorf("unclosed '(' in %q", s)
}

// unescapeOnce removes a single layer of backslash-escaping, as required
// for a constraint fragment embedded verbatim into the compiled regexp.
func unescapeOnce(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			out.WriteByte(s[i+1])
			i++
			continue
		}
		out.WriteByte(s[i])
	}
	return out.String()
}
