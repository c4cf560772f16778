package pathexpr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustCompile(t *testing.T, expr string) *Compiled {
	t.Helper()
	c, err := Compile(expr)
	if err != nil {
		t.Fatalf("Compile(%q): %v", expr, err)
	}
	return c
}

func TestStaticMount(t *testing.T) {
	c := mustCompile(t, "/app")
	if !c.IsStaticMount {
		t.Fatal("expected static mount")
	}
	if c.BaseSpecificity != len("/app") {
		t.Fatalf("base specificity = %d, want %d", c.BaseSpecificity, len("/app"))
	}

	cases := map[string]string{
		"/app":      "/app",
		"/app/page": "/app",
	}
	for path, wantMount := range cases {
		m := c.Matcher.FindStringSubmatch(path)
		if m == nil {
			t.Fatalf("expected %q to match", path)
		}
		if m[1] != wantMount {
			t.Fatalf("mount actual = %q, want %q", m[1], wantMount)
		}
	}

	if c.Matcher.MatchString("/apple") {
		t.Fatal("must not match a sibling prefix")
	}
}

func TestRootMount(t *testing.T) {
	c := mustCompile(t, "/")
	if !c.IsStaticMount || c.StaticMount != "/" {
		t.Fatalf("expected static root mount, got %+v", c)
	}
	if !c.Matcher.MatchString("/") {
		t.Fatal("root matcher must match the root path")
	}
}

func TestNamedParameter(t *testing.T) {
	c := mustCompile(t, "/users/:id")
	m := c.Matcher.FindStringSubmatch("/users/42")
	if m == nil {
		t.Fatal("expected match")
	}
	if m[1] != "/users/42" {
		t.Fatalf("mount actual = %q", m[1])
	}
	if m := c.Matcher.FindStringSubmatch("/users/42/edit"); m == nil || m[1] != "/users/42" {
		t.Fatalf("default parameter must not span a slash: got %q", m)
	}
	if c.BaseSpecificity != len("/users/") {
		t.Fatalf("base specificity = %d, want %d", c.BaseSpecificity, len("/users/"))
	}
}

func TestConstrainedParameter(t *testing.T) {
	// The constraint is unescaped once, so the digit class is written
	// with a doubled backslash.
	c := mustCompile(t, `/users/:id(\\d+)`)
	if !c.Matcher.MatchString("/users/42") {
		t.Fatal("expected numeric id to match")
	}
	if c.Matcher.MatchString("/users/abc") {
		t.Fatal("expected non-numeric id to be rejected")
	}
}

func TestConstrainedParameterEscaping(t *testing.T) {
	// The constraint fragment's backslash escapes are unescaped once
	// before being embedded: \) inside the fragment lets a literal ')'
	// appear in the character class.
	c := mustCompile(t, `/tag/:name([a-z\)]+)`)
	if !c.Matcher.MatchString("/tag/a)b") {
		t.Fatal("expected literal ')' to be permitted by the unescaped fragment")
	}
}

func TestTrailingStarWildcard(t *testing.T) {
	c := mustCompile(t, "/files/:rest*")
	for _, p := range []string{"/files", "/files/a", "/files/a/b"} {
		if !c.Matcher.MatchString(p) {
			t.Fatalf("expected %q to match", p)
		}
	}
}

func TestTrailingPlusWildcard(t *testing.T) {
	c := mustCompile(t, "/files/:rest+")
	if c.Matcher.MatchString("/files") {
		t.Fatal("+ requires at least one further segment")
	}
	if !c.Matcher.MatchString("/files/a") {
		t.Fatal("expected /files/a to match")
	}
}

func TestEscapedLiteral(t *testing.T) {
	// The expression still contains a literal '\' and ':' character, so
	// per the static-mount test in §4.1 it is not classified as a static
	// mount, even though the escape makes it match a fixed literal path.
	c := mustCompile(t, `/a\:b`)
	if c.IsStaticMount {
		t.Fatal("presence of ':' disqualifies the static-mount fast path regardless of escaping")
	}
	if !c.Matcher.MatchString("/a:b") {
		t.Fatal("expected the escaped colon to match literally")
	}
	if c.Matcher.MatchString("/axb") {
		t.Fatal("escaped colon must not be treated as a parameter marker")
	}
}

func TestInvalidExpressions(t *testing.T) {
	for _, expr := range []string{
		`/users/:id(\d+`,
		`/users/:`,
		`/trailing\`,
	} {
		if _, err := Compile(expr); err == nil {
			t.Fatalf("expected Compile(%q) to fail", expr)
		}
	}
}

func TestIdempotentCompilation(t *testing.T) {
	a := mustCompile(t, "/users/:id")
	b := mustCompile(t, "/users/:id")
	if diff := cmp.Diff(a.Matcher.String(), b.Matcher.String()); diff != "" {
		t.Fatalf("compiling twice produced different matchers (-a +b):\n%s", diff)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	a := normalize("/app/")
	b := normalize(a)
	if a != b {
		t.Fatalf("normalize not idempotent: %q -> %q", a, b)
	}
}
