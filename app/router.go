package app

import (
	"fmt"
	"regexp"

	"github.com/genezys/custody"
	"github.com/genezys/custody/errors"
)

var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router is a registry of message paths to their handlers. Routing a
// path that was never registered returns a handler that fails with
// ErrNotFound.
type Router struct {
	routes map[string]custody.Handler
}

var _ custody.Registry = (*Router)(nil)
var _ custody.Handler = (*Router)(nil)

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]custody.Handler),
	}
}

// Handle implements custody.Registry. It panics on a malformed or
// duplicate path, as both are programmer errors during setup.
func (r *Router) Handle(path string, h custody.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the handler registered for the path, or a handler
// that always fails when the path is unknown.
func (r *Router) Handler(path string) custody.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches the transaction by the message path.
func (r *Router) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	return r.Handler(custody.GetPath(tx)).Check(ctx, store, tx)
}

// Deliver dispatches the transaction by the message path.
func (r *Router) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	return r.Handler(custody.GetPath(tx)).Deliver(ctx, store, tx)
}

// notFoundHandler always fails with ErrNotFound.
type notFoundHandler string

var _ custody.Handler = notFoundHandler("")

func (p notFoundHandler) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(p))
}

func (p notFoundHandler) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(p))
}
