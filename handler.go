package workerstack

import (
	"context"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/chr33s/workerstack/config"
	"github.com/chr33s/workerstack/metrics"
	"github.com/chr33s/workerstack/proxy"
)

// Handler is the router's entry point: an http.Handler that resolves its
// configuration fresh from Env on every request, matches the request path
// against the route table, and proxies it to the matched binding.
//
// Handler holds an Env factory and a metrics recorder; it caches no route table and
// no binding across requests, mirroring the per-request Env model used by
// edge runtimes such as Cloudflare Workers.
type Handler struct {
	// Env is called once per request to obtain the environment map that
	// config.Load consumes. Most callers can ignore the *http.Request
	// argument; it is passed through for hosts that vary bindings per
	// request (e.g. multi-tenant deployments).
	Env func(r *http.Request) Env

	// Metrics receives per-request outcome counts and upstream latency.
	// A nil Metrics is replaced with a no-op recorder.
	Metrics *metrics.Recorder
}

// NewHandler builds a Handler around a fixed Env, the common case where
// bindings and routes do not vary per request.
func NewHandler(env Env) *Handler {
	return &Handler{
		Env:     func(*http.Request) Env { return env },
		Metrics: metrics.NewRecorder(),
	}
}

func (h *Handler) recorder() *metrics.Recorder {
	if h.Metrics != nil {
		return h.Metrics
	}
	// A nil *metrics.Recorder ignores every call.
	return nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := h.recorder()
	env := h.Env(r)

	cfg, err := config.Load(env)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			log.WithError(err).Error("workerstack: invalid configuration")
		}
		rec.ObserveOutcome("config_error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	match, ok := cfg.Table.Select(r.URL.Path)
	if !ok {
		rec.ObserveOutcome("no_match")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "Not found")
		return
	}

	binding, ok := match.Route.Fetch.(Binding)
	if !ok {
		log.WithField("binding", match.Route.Binding).Error("workerstack: matched binding does not implement Fetch")
		rec.ObserveOutcome("config_error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	preloadMounts := cfg.Table.PreloadMounts(match.MountActual)
	opts := proxy.Options{
		SmoothTransitions: cfg.SmoothTransitions,
		PreloadMounts:     preloadMounts,
	}

	stop := rec.StartUpstream(match.Route.Binding)
	err = proxy.Handle(r.Context(), w, r, binding, match.MountActual, cfg.AssetPrefixes, opts)
	stop()

	if err != nil {
		uerr := &UpstreamError{Binding: match.Route.Binding, Err: err}
		log.WithError(uerr).Warn("workerstack: upstream fetch failed")
		rec.ObserveOutcome("upstream_error")
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}

	rec.ObserveOutcome("ok")
}

// Handle is a functional-style convenience wrapper over Handler, useful
// for hosts that model a request as a single function call rather than
// an http.Handler (e.g. a Cloudflare Worker's fetch export).
func Handle(ctx context.Context, w http.ResponseWriter, r *http.Request, env Env) error {
	h := NewHandler(env)
	h.ServeHTTP(w, r.WithContext(ctx))
	return nil
}
