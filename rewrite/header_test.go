package rewrite

import (
	"net/url"
	"testing"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func TestLocationSameOriginAbsolute(t *testing.T) {
	req := mustURL(t, "https://h/app/page")
	got := Location("/login", req, "/app")
	want := "https://h/app/login"
	if got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func TestLocationRootMountUntouched(t *testing.T) {
	req := mustURL(t, "https://h/page")
	got := Location("/login", req, "/")
	want := "https://h/login"
	if got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func TestLocationCrossOriginPassthrough(t *testing.T) {
	req := mustURL(t, "https://h/app/page")
	got := Location("https://other.example/login", req, "/app")
	if got != "https://other.example/login" {
		t.Fatalf("Location = %q, want unchanged", got)
	}
}

func TestLocationAlreadyScopedIdempotent(t *testing.T) {
	req := mustURL(t, "https://h/app/page")
	got := Location("/app/login", req, "/app")
	want := "https://h/app/login"
	if got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func TestLocationUnparseablePassthrough(t *testing.T) {
	req := mustURL(t, "https://h/app/page")
	bad := "http://[::1"
	if got := Location(bad, req, "/app"); got != bad {
		t.Fatalf("Location = %q, want unchanged %q", got, bad)
	}
}

func TestSetCookieRootPath(t *testing.T) {
	got := SetCookie("session=abc; Path=/; HttpOnly", "/app")
	want := "session=abc; Path=/app/; HttpOnly"
	if got != want {
		t.Fatalf("SetCookie = %q, want %q", got, want)
	}
}

func TestSetCookieNonRootPathUntouched(t *testing.T) {
	cookie := "session=abc; Path=/api; HttpOnly"
	if got := SetCookie(cookie, "/app"); got != cookie {
		t.Fatalf("SetCookie = %q, want unchanged", got)
	}
}

func TestSetCookieRootMountUntouched(t *testing.T) {
	cookie := "session=abc; Path=/; HttpOnly"
	if got := SetCookie(cookie, "/"); got != cookie {
		t.Fatalf("SetCookie = %q, want unchanged at root mount", got)
	}
}

func TestSetCookiesPreservesOrder(t *testing.T) {
	in := []string{"a=1; Path=/", "b=2; Path=/other"}
	got := SetCookies(in, "/app")
	want := []string{"a=1; Path=/app/", "b=2; Path=/other"}
	if got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("SetCookies = %v, want %v", got, want)
	}
}
