/*
This command provides a local development harness for workerstack: it
loads a YAML route manifest, wires each entry to a reverse-proxying
Binding pointed at a local upstream URL, and serves the router over
plain HTTP.

For the list of command line flags, run:

	workerstack -help

It exists for manual testing and smoke-checking a route manifest before
deploying it to an edge runtime; the manifest format mirrors the ROUTES
object shape, just written as YAML rather than embedded JSON.
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"bytes"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/chr33s/workerstack"
)

// Manifest is the YAML-native equivalent of the ROUTES object, plus the
// upstream URL each binding should forward to — information the
// production ROUTES document doesn't need, because in production a
// binding is a platform-native service binding rather than a URL.
type Manifest struct {
	Routes []struct {
		Binding  string `yaml:"binding"`
		Path     string `yaml:"path"`
		Preload  bool   `yaml:"preload"`
		Upstream string `yaml:"upstream"`
	} `yaml:"routes"`
	SmoothTransitions bool     `yaml:"smoothTransitions"`
	AssetPrefixes     []string `yaml:"assetPrefixes"`
}

func main() {
	manifestPath := flag.String("manifest", "workerstack.yaml", "path to the route manifest")
	addr := flag.String("addr", ":9090", "address to listen on")
	logLevel := flag.String("log-level", "info", "logrus log level")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("invalid -log-level: %s", err)
	}
	log.SetLevel(level)

	manifest, err := loadManifest(*manifestPath)
	if err != nil {
		log.Fatalf("Error processing manifest: %s", err)
	}

	env, err := manifest.toEnv()
	if err != nil {
		log.Fatalf("Error wiring manifest bindings: %s", err)
	}

	handler := workerstack.NewHandler(env)

	log.WithField("addr", *addr).WithField("manifest", *manifestPath).Info("workerstack dev harness listening")
	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// toEnv builds the per-request Env the harness passes to the Handler: a
// ROUTES document built from the manifest's route list, plus one
// reverse-proxying Binding per upstream.
func (m *Manifest) toEnv() (workerstack.Env, error) {
	env := workerstack.Env{}

	routes := make([]any, 0, len(m.Routes))
	for _, r := range m.Routes {
		target, err := url.Parse(r.Upstream)
		if err != nil {
			return nil, fmt.Errorf("binding %q: invalid upstream %q: %w", r.Binding, r.Upstream, err)
		}

		env[r.Binding] = workerstack.BindingFunc(upstreamBinding(target))
		routes = append(routes, map[string]any{
			"binding": r.Binding,
			"path":    r.Path,
			"preload": r.Preload,
		})
	}

	env["ROUTES"] = map[string]any{
		"routes":            routes,
		"smoothTransitions": m.SmoothTransitions,
	}
	if len(m.AssetPrefixes) > 0 {
		encoded, err := json.Marshal(m.AssetPrefixes)
		if err != nil {
			return nil, fmt.Errorf("encoding assetPrefixes: %w", err)
		}
		env["ASSET_PREFIXES"] = string(encoded)
	}

	return env, nil
}

// upstreamBinding adapts net/http/httputil's reverse proxy machinery to
// the Binding capability, so the harness can forward to any local
// upstream the manifest names without writing its own client.
func upstreamBinding(target *url.URL) func(ctx context.Context, req *http.Request) (*http.Response, error) {
	proxy := httputil.NewSingleHostReverseProxy(target)
	return func(ctx context.Context, req *http.Request) (*http.Response, error) {
		rec := newResponseRecorder()
		proxy.ServeHTTP(rec, req.WithContext(ctx))
		return rec.result(), nil
	}
}

// responseRecorder buffers a ReverseProxy's ServeHTTP call into an
// *http.Response, the shape a Binding must return.
type responseRecorder struct {
	header     http.Header
	body       bytes.Buffer
	statusCode int
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header), statusCode: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) Write(b []byte) (int, error) { return r.body.Write(b) }

func (r *responseRecorder) WriteHeader(statusCode int) { r.statusCode = statusCode }

func (r *responseRecorder) result() *http.Response {
	return &http.Response{
		StatusCode: r.statusCode,
		Header:     r.header,
		Body:       io.NopCloser(&r.body),
	}
}
