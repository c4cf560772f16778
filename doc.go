// Package workerstack implements an edge-side microfrontend router.
//
// A single handler dispatches an incoming request to one of several
// independently deployed upstream services based on the request path,
// strips the mount prefix, proxies the request, and rewrites the response
// so that relative URLs, redirects, cookies, HTML/CSS asset references and
// client-side fetch calls behave as if the upstream were mounted at its
// assigned sub-path.
//
// The route table, asset-prefix set and options are all resolved fresh
// from an Env for every request; nothing is cached across requests unless
// the caller chooses to do so outside this package.
package workerstack
