// Package route maps request paths to entry sets through an ordered list of
// regular expression routes. The first matching route wins.
package route

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/flatsite/internal/entry"
	ferrors "git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/index"
	"git.home.luguber.info/inful/flatsite/internal/registry"
)

// View names produced by the builtin routes.
const (
	ViewEntry   = "Entry"
	ViewEntries = "Entries"
	ViewFeed    = "Feed"
)

// Result is what a dispatch produces. It is not modified after creation.
type Result struct {
	ViewName string
	Entries  []*entry.Entry
	ViewData any
}

// FilteredView is the ViewData of listings narrowed by a criterion.
type FilteredView struct {
	FilteredBy string
	Value      string
}

// Source gives handlers read access to the engine state.
type Source interface {
	Entries() []*entry.Entry
	Index(name string) *index.Lookup
}

// Match is a successful route match.
type Match struct {
	Path   string
	Groups []string // Groups[0] is the whole match
}

// Group returns capture group i, or "" if it does not exist.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

// Handler builds the result for a matched path.
type Handler func(m Match, src Source) *Result

// Registry maps route patterns to handlers, in match order.
type Registry = registry.Registry[Handler]

// NewRegistry returns an empty route registry.
func NewRegistry() *Registry {
	return registry.New[Handler]()
}

type compiled struct {
	pattern string
	re      *regexp.Regexp
	handler Handler
}

// Router is the compiled, immutable form of a route registry.
type Router struct {
	routes []compiled
}

// Compile anchors every pattern as ^/(?:pattern)$, case-insensitive. A pattern
// that does not compile is a configuration error.
func Compile(r *Registry) (*Router, error) {
	router := &Router{}
	for pattern, h := range r.All() {
		re, err := regexp.Compile(`(?i)^/(?:` + pattern + `)$`)
		if err != nil {
			return nil, ferrors.ConfigError("route pattern does not compile").
				WithCause(fmt.Errorf("%w: %q: %w", ErrBadPattern, pattern, err)).
				WithContext("pattern", pattern).
				Build()
		}
		router.routes = append(router.routes, compiled{pattern: pattern, re: re, handler: h})
	}
	return router, nil
}

// Dispatch runs the first route matching path. A missing leading slash is added.
// It returns nil when no route matches.
func (r *Router) Dispatch(path string, src Source) *Result {
	res, _ := r.DispatchPattern(path, src)
	return res
}

// DispatchPattern is Dispatch that also reports the pattern that matched.
func (r *Router) DispatchPattern(path string, src Source) (*Result, string) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for _, c := range r.routes {
		groups := c.re.FindStringSubmatch(path)
		if groups == nil {
			continue
		}
		return c.handler(Match{Path: path, Groups: groups}, src), c.pattern
	}
	return nil, ""
}

// Patterns returns the compiled patterns in match order.
func (r *Router) Patterns() []string {
	out := make([]string, len(r.routes))
	for i, c := range r.routes {
		out[i] = c.pattern
	}
	return out
}
