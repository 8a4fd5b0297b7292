// Package site binds a configured site to the engine cache and turns dispatch
// results into paged view models.
package site

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/flatsite/internal/config"
	"git.home.luguber.info/inful/flatsite/internal/engine"
	"git.home.luguber.info/inful/flatsite/internal/enginecache"
	"git.home.luguber.info/inful/flatsite/internal/entry"
	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/index"
	"git.home.luguber.info/inful/flatsite/internal/paging"
	"git.home.luguber.info/inful/flatsite/internal/route"
)

const (
	DefaultName           = "flatsite"
	DefaultTemplates      = "Default"
	DefaultEntriesPerPage = 5
	PageParam             = "page"
)

// Site is the configuration of one site plus its path into the engine cache.
type Site struct {
	Name             string
	Description      string
	SiteRoot         string // URL prefix without trailing '/'
	DataDirectory    string // content root handed to the engine
	Templates        string
	EntriesPerPage   int
	DisableCache     bool
	StaticGeneration bool
	// EntryPoint is the file whose change invalidates the generation, usually the
	// configuration file.
	EntryPoint string
	// EngineCreated runs on every new engine before it is initialized.
	EngineCreated enginecache.Hook

	cache *enginecache.Cache
}

// New creates a site with the defaults for name, template set and page size.
func New(siteRoot, dataDirectory string, cache *enginecache.Cache, hook enginecache.Hook) *Site {
	return &Site{
		Name:           DefaultName,
		SiteRoot:       strings.TrimRight(siteRoot, "/"),
		DataDirectory:  dataDirectory,
		Templates:      DefaultTemplates,
		EntriesPerPage: DefaultEntriesPerPage,
		EngineCreated:  hook,
		cache:          cache,
	}
}

// FromConfig creates a site from a loaded configuration.
func FromConfig(cfg *config.Config, cache *enginecache.Cache, hook enginecache.Hook) *Site {
	s := New(cfg.Site.SiteRoot, cfg.Root(), cache, hook)
	s.Name = cfg.Site.Name
	s.Description = cfg.Site.Description
	s.Templates = cfg.Site.Templates
	s.EntriesPerPage = cfg.Site.EntriesPerPage
	s.DisableCache = cfg.Engine.DisableCache
	s.StaticGeneration = cfg.Site.StaticGeneration
	s.EntryPoint = cfg.Path()
	return s
}

// Engine returns the current generation for the site, building it when needed.
// entryPoint is handed to the invalidator as an extra file to watch.
func (s *Site) Engine(ctx context.Context, entryPoint string) (*engine.Engine, error) {
	if s.DisableCache {
		s.cache.Evict(s.DataDirectory)
	}
	return s.cache.Get(ctx, s.DataDirectory, entryPoint, s.EngineCreated)
}

// Current is Engine for the site's own entry point.
func (s *Site) Current(ctx context.Context) (*engine.Engine, error) {
	return s.Engine(ctx, s.EntryPoint)
}

// Refresh builds the generation if it is missing or expired.
func (s *Site) Refresh(ctx context.Context) error {
	_, err := s.Current(ctx)
	return err
}

// RelativePath strips the site root from a request path.
func (s *Site) RelativePath(path string) string {
	if s.SiteRoot != "" {
		if rest, ok := strings.CutPrefix(path, s.SiteRoot); ok && (rest == "" || strings.HasPrefix(rest, "/")) {
			path = rest
		}
	}
	if path == "" {
		return "/"
	}
	return path
}

// URL returns the absolute site URL for an entry path.
func (s *Site) URL(entryPath string) string {
	return s.SiteRoot + "/" + strings.TrimPrefix(entryPath, "/")
}

// ViewModel is everything a template or JSON host needs to render one page.
type ViewModel struct {
	Site     *Site
	Engine   *engine.Engine
	Result   *route.Result
	Template string
	Title    string
	Entries  []*entry.Entry
	Paging   *paging.Paging[*entry.Entry]
	Data     any
}

// Indexes returns the named index of the generation that produced the page.
func (vm *ViewModel) Indexes(name string) *index.Lookup {
	return vm.Engine.Index(name)
}

// Page dispatches path and pages the result with the page number from query.
// An unmatched path is a not-found error.
func (s *Site) Page(ctx context.Context, path string, query url.Values) (*ViewModel, error) {
	e, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	rel := s.RelativePath(path)
	res := e.Dispatch(rel)
	if res == nil {
		return nil, errors.NotFoundError("no route matches path").WithContext("path", rel).Build()
	}

	perPage := s.EntriesPerPage
	if res.ViewName == route.ViewFeed {
		perPage = max(len(res.Entries), 1)
	}
	return &ViewModel{
		Site:     s,
		Engine:   e,
		Result:   res,
		Template: e.TemplateFor(res),
		Title:    s.title(res),
		Entries:  res.Entries,
		Paging:   paging.FromQuery(res.Entries, perPage, query, PageParam),
		Data:     res.ViewData,
	}, nil
}

func (s *Site) title(res *route.Result) string {
	if res.ViewName == route.ViewEntry && len(res.Entries) == 1 {
		return res.Entries[0].Title()
	}
	if fv, ok := res.ViewData.(route.FilteredView); ok {
		return fmt.Sprintf("%s: %s", fv.FilteredBy, fv.Value)
	}
	return s.Name
}
