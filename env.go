package workerstack

import (
	"context"
	"net/http"
)

// Binding is the capability a bound upstream service exposes: fetch a
// request, get a response. Bindings are owned by the host; workerstack
// never closes one, only borrows it for the lifetime of a single request.
type Binding interface {
	Fetch(ctx context.Context, req *http.Request) (*http.Response, error)
}

// BindingFunc adapts a plain function to a Binding.
type BindingFunc func(ctx context.Context, req *http.Request) (*http.Response, error)

func (f BindingFunc) Fetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	return f(ctx, req)
}

// Env is the per-request environment map. It holds the ROUTES and
// ASSET_PREFIXES configuration values plus one entry per route binding
// name. Env is read-only from workerstack's perspective and carries no
// state across requests.
type Env map[string]any
