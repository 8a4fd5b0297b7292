// Package engine wires the content pipeline together: it owns the registries of
// one content root, runs a generation (crawl, post-process, index) and dispatches
// request paths against the result.
package engine

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/flatsite/internal/crawl"
	"git.home.luguber.info/inful/flatsite/internal/entry"
	"git.home.luguber.info/inful/flatsite/internal/format"
	"git.home.luguber.info/inful/flatsite/internal/index"
	"git.home.luguber.info/inful/flatsite/internal/markdown"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
	"git.home.luguber.info/inful/flatsite/internal/metrics"
	"git.home.luguber.info/inful/flatsite/internal/postprocess"
	"git.home.luguber.info/inful/flatsite/internal/registry"
	"git.home.luguber.info/inful/flatsite/internal/route"
)

// ViewSelector picks a template name for the entries of a dispatch result.
// An empty answer defers to the next selector.
type ViewSelector func(entries []*entry.Entry) string

// Options tune a new engine.
type Options struct {
	// Workers bounds parallel entry construction; defaults to crawl.DefaultWorkers.
	Workers  int
	Markdown markdown.Options
	Recorder metrics.Recorder
}

// Stats describes a finished generation.
type Stats struct {
	Entries  int
	Indexes  map[string]int // index name → key count
	Duration time.Duration
	BuiltAt  time.Time
}

// Engine holds the registries and, once initialized, the read-only generation
// built from them.
type Engine struct {
	root     string
	workers  int
	recorder metrics.Recorder

	converters     *metadata.Converters
	indexers       *index.Registry
	postProcessors *postprocess.Registry
	formatters     *format.Registry
	crawlers       *crawl.Registry
	routes         *route.Registry
	viewSelectors  *registry.Registry[ViewSelector]

	id          string
	initialized atomic.Bool
	router      *route.Router
	entries     []*entry.Entry
	indexes     map[string]*index.Lookup
	stats       Stats
}

// New creates an engine for root with every builtin registered, in the order
// converters, indexers, post-processors, formatters, crawlers, routes.
func New(root string, opts Options) *Engine {
	workers := opts.Workers
	if workers < 1 {
		workers = crawl.DefaultWorkers
	}
	e := &Engine{
		root:           filepath.Clean(root),
		workers:        workers,
		recorder:       metrics.OrNoop(opts.Recorder),
		converters:     metadata.NewConverters(),
		indexers:       index.NewRegistry(),
		postProcessors: postprocess.NewRegistry(),
		formatters:     format.NewRegistry(),
		crawlers:       crawl.NewRegistry(),
		routes:         route.NewRegistry(),
		viewSelectors:  registry.New[ViewSelector](),
		id:             uuid.NewString(),
		indexes:        make(map[string]*index.Lookup),
	}
	metadata.RegisterBuiltins(e.converters)
	index.RegisterBuiltins(e.indexers)
	postprocess.RegisterBuiltins(e.postProcessors)
	format.RegisterBuiltins(e.formatters, opts.Markdown)
	crawl.RegisterBuiltins(e.crawlers)
	route.RegisterBuiltins(e.routes)
	return e
}

// ID identifies this generation.
func (e *Engine) ID() string { return e.id }

// RootDirectory is the content root the engine was created for.
func (e *Engine) RootDirectory() string { return e.root }

// Registries. They accept changes until Initialize freezes them.
func (e *Engine) Converters() *metadata.Converters                   { return e.converters }
func (e *Engine) Indexers() *index.Registry                          { return e.indexers }
func (e *Engine) PostProcessors() *postprocess.Registry              { return e.postProcessors }
func (e *Engine) Formatters() *format.Registry                       { return e.formatters }
func (e *Engine) Crawlers() *crawl.Registry                          { return e.crawlers }
func (e *Engine) Routes() *route.Registry                            { return e.routes }
func (e *Engine) ViewSelectors() *registry.Registry[ViewSelector]    { return e.viewSelectors }

// Workers is the entry construction parallelism.
func (e *Engine) Workers() int { return e.workers }

// Initialized reports whether Initialize completed successfully.
func (e *Engine) Initialized() bool { return e.initialized.Load() }

// CreateEntry reads, parses and formats one entry file.
func (e *Engine) CreateEntry(baseDir, path string) (*entry.Entry, error) {
	en, err := entry.New(baseDir, path)
	if err != nil {
		return nil, err
	}
	if _, err := en.ParseMetadata(e.converters); err != nil {
		return nil, err
	}
	if err := format.Apply(e.formatters, en); err != nil {
		return nil, err
	}
	return en, nil
}

// Entries returns the post-processed collection in canonical order.
func (e *Engine) Entries() []*entry.Entry { return e.entries }

// Index returns the lookup registered under name (case-insensitive). An unknown
// index yields an empty lookup.
func (e *Engine) Index(name string) *index.Lookup {
	if l, ok := e.indexes[registry.Fold(name)]; ok {
		return l
	}
	return index.NewLookup()
}

// IndexNames returns the built index names in registration order.
func (e *Engine) IndexNames() []string {
	return e.indexers.Keys()
}

// Stats describes the generation; zero before Initialize.
func (e *Engine) Stats() Stats { return e.stats }

// Dispatch resolves path to a result, or nil when no route matches or the engine
// is not initialized.
func (e *Engine) Dispatch(path string) *route.Result {
	if !e.Initialized() {
		return nil
	}
	res := e.router.Dispatch(path, e)
	if res != nil {
		e.recorder.IncDispatch(res.ViewName)
	} else {
		e.recorder.IncDispatch("")
	}
	return res
}

// TemplateFor returns the first non-empty view selector answer for the result's
// entries, or the result's view name.
func (e *Engine) TemplateFor(res *route.Result) string {
	if res == nil {
		return ""
	}
	for _, sel := range e.viewSelectors.All() {
		if name := sel(res.Entries); name != "" {
			return name
		}
	}
	return res.ViewName
}

func (e *Engine) String() string {
	return fmt.Sprintf("engine(%s, %s)", e.root, e.id)
}
