package server

import (
	"slices"
	"time"

	"git.home.luguber.info/inful/flatsite/internal/engine"
	"git.home.luguber.info/inful/flatsite/internal/entry"
	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/metadata"
	"git.home.luguber.info/inful/flatsite/internal/postprocess"
	"git.home.luguber.info/inful/flatsite/internal/registry"
	"git.home.luguber.info/inful/flatsite/internal/route"
	"git.home.luguber.info/inful/flatsite/internal/site"
)

// PageResponse is the JSON rendering of a site.ViewModel.
type PageResponse struct {
	Site       SiteInfo            `json:"site"`
	View       string              `json:"view"`
	Template   string              `json:"template"`
	Title      string              `json:"title"`
	Filter     *route.FilteredView `json:"filter,omitempty"`
	Entries    []EntryResponse     `json:"entries"`
	Paging     PagingInfo          `json:"paging"`
	Generation string              `json:"generation"`
}

// SiteInfo describes the site serving the page.
type SiteInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Root        string `json:"root"`
}

// EntryResponse is one entry on a page. Content and Metadata are only filled for
// single-entry views; listings carry the summary.
type EntryResponse struct {
	Path        string         `json:"path"`
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Tags        []string       `json:"tags"`
	CreatedAt   time.Time      `json:"created_at"`
	ModifiedAt  time.Time      `json:"modified_at"`
	Summary     string         `json:"summary,omitempty"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Content     string         `json:"content,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// PagingInfo describes the page window.
type PagingInfo struct {
	Page        int  `json:"page"`
	PerPage     int  `json:"per_page"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// IndexResponse lists the keys of one index with their bucket sizes.
type IndexResponse struct {
	Name string     `json:"name"`
	Keys []IndexKey `json:"keys"`
}

// IndexKey is one key of an index.
type IndexKey struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// NewPageResponse renders vm. Only the current page of entries is included.
func NewPageResponse(vm *site.ViewModel) PageResponse {
	single := vm.Result.ViewName == route.ViewEntry
	items := vm.Paging.Items()
	resp := PageResponse{
		Site: SiteInfo{
			Name:        vm.Site.Name,
			Description: vm.Site.Description,
			Root:        vm.Site.SiteRoot,
		},
		View:       vm.Result.ViewName,
		Template:   vm.Template,
		Title:      vm.Title,
		Entries:    make([]EntryResponse, 0, len(items)),
		Generation: vm.Engine.ID(),
		Paging: PagingInfo{
			Page:        vm.Paging.CurrentPage,
			PerPage:     vm.Paging.ItemCountPerPage,
			TotalItems:  vm.Paging.TotalItemCount,
			TotalPages:  vm.Paging.TotalPages(),
			HasNext:     vm.Paging.HasNext(),
			HasPrevious: vm.Paging.HasPrevious(),
		},
	}
	if fv, ok := vm.Data.(route.FilteredView); ok {
		resp.Filter = &fv
	}
	for _, e := range items {
		resp.Entries = append(resp.Entries, newEntryResponse(vm.Site, e, single))
	}
	return resp
}

func newEntryResponse(s *site.Site, e *entry.Entry, full bool) EntryResponse {
	tags := e.Tags()
	if tags == nil {
		tags = []string{}
	}
	out := EntryResponse{
		Path:        e.Path(),
		URL:         s.URL(e.Path()),
		Title:       e.Title(),
		Tags:        tags,
		CreatedAt:   e.CreatedAt,
		ModifiedAt:  e.ModifiedAt,
		Summary:     e.Metadata.GetString(metadata.KeySummary),
		Fingerprint: e.Metadata.GetString(postprocess.KeyFingerprint),
	}
	if full {
		out.Content = e.Content
		out.Metadata = e.Metadata.Map()
		delete(out.Metadata, metadata.KeyFilePath)
	}
	return out
}

// ETag returns a strong entity tag for single-entry views, empty otherwise.
func ETag(vm *site.ViewModel) string {
	if vm.Result.ViewName != route.ViewEntry || len(vm.Result.Entries) != 1 {
		return ""
	}
	fp := vm.Result.Entries[0].Metadata.GetString(postprocess.KeyFingerprint)
	if fp == "" {
		return ""
	}
	return `"` + fp + `"`
}

// NewIndexResponse lists the keys of the named index of e. Unknown names are a
// not-found error rather than an empty listing.
func NewIndexResponse(e *engine.Engine, name string) (IndexResponse, error) {
	known := slices.ContainsFunc(e.IndexNames(), func(n string) bool { return registry.Fold(n) == registry.Fold(name) })
	if !known {
		return IndexResponse{}, errors.NotFoundError("unknown index").WithContext("index", name).Build()
	}
	lookup := e.Index(name)
	resp := IndexResponse{Name: name, Keys: make([]IndexKey, 0, lookup.Len())}
	for _, key := range lookup.Keys() {
		resp.Keys = append(resp.Keys, IndexKey{Key: key, Count: len(lookup.Get(key))})
	}
	return resp, nil
}
