package routing

import "testing"

func compileOrFatal(t *testing.T, binding, path string, preload bool) *Route {
	t.Helper()
	r, err := Compile(Entry{Binding: binding, Path: path, Preload: preload}, nil)
	if err != nil {
		t.Fatalf("Compile(%q): %v", path, err)
	}
	return r
}

func TestTableRejectsEmpty(t *testing.T) {
	if _, err := NewTable(nil); err == nil {
		t.Fatal("expected error for empty route table")
	}
}

func TestTableSortOrder(t *testing.T) {
	app := compileOrFatal(t, "APP", "/app", false)
	appAPI := compileOrFatal(t, "API", "/app/api", false)
	root := compileOrFatal(t, "ROOT", "/", false)

	tbl, err := NewTable([]*Route{app, root, appAPI})
	if err != nil {
		t.Fatal(err)
	}

	routes := tbl.Routes()
	if routes[0].Binding != "API" || routes[1].Binding != "APP" || routes[2].Binding != "ROOT" {
		var names []string
		for _, r := range routes {
			names = append(names, r.Binding)
		}
		t.Fatalf("unexpected sort order: %v", names)
	}
}

func TestSelectSpecificity(t *testing.T) {
	app := compileOrFatal(t, "APP", "/app", false)
	api := compileOrFatal(t, "API", "/app/api", false)
	tbl, err := NewTable([]*Route{app, api})
	if err != nil {
		t.Fatal(err)
	}

	m, ok := tbl.Select("/app/api/users")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Route.Binding != "API" {
		t.Fatalf("expected API to win, got %s", m.Route.Binding)
	}
	if m.MountActual != "/app/api" {
		t.Fatalf("mount actual = %q", m.MountActual)
	}
}

func TestSelectFallbackToRoot(t *testing.T) {
	root := compileOrFatal(t, "ROOT", "/", false)
	app := compileOrFatal(t, "APP", "/app", false)
	tbl, err := NewTable([]*Route{root, app})
	if err != nil {
		t.Fatal(err)
	}

	m, ok := tbl.Select("/other")
	if !ok {
		t.Fatal("expected fallback match")
	}
	if m.Route.Binding != "ROOT" {
		t.Fatalf("expected ROOT fallback, got %s", m.Route.Binding)
	}
	if m.MountActual != "/" {
		t.Fatalf("mount actual = %q, want /", m.MountActual)
	}
	if m.Score != 0 {
		t.Fatalf("fallback score = %d, want 0", m.Score)
	}
}

func TestSelectNoMatchNoRoot(t *testing.T) {
	app := compileOrFatal(t, "APP", "/app", false)
	tbl, err := NewTable([]*Route{app})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := tbl.Select("/other"); ok {
		t.Fatal("expected no match")
	}
}

func TestSelectExactMount(t *testing.T) {
	app := compileOrFatal(t, "APP", "/app", false)
	tbl, err := NewTable([]*Route{app})
	if err != nil {
		t.Fatal(err)
	}

	m, ok := tbl.Select("/app")
	if !ok {
		t.Fatal("expected match")
	}
	if m.MountActual != "/app" {
		t.Fatalf("mount actual = %q", m.MountActual)
	}
}
