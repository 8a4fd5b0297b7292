// Package paging slices an ordered item list into fixed-size pages.
package paging

import (
	"net/url"
	"strconv"
	"sync"
)

// DefaultParam is the query parameter FromQuery reads when none is given.
const DefaultParam = "page"

// Paging is a page view over items. Items is computed on first use and the same
// slice is returned afterwards.
type Paging[T any] struct {
	TotalItemCount   int
	ItemCountPerPage int
	CurrentPage      int

	items []T
	once  sync.Once
	page  []T
}

// New creates a page view. perPage and page are clamped to at least 1.
func New[T any](items []T, perPage, page int) *Paging[T] {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	return &Paging[T]{
		TotalItemCount:   len(items),
		ItemCountPerPage: perPage,
		CurrentPage:      page,
		items:            items,
	}
}

// FromQuery creates a page view for the page number in query[param]. A missing,
// non-numeric or non-positive value selects page 1.
func FromQuery[T any](items []T, perPage int, query url.Values, param string) *Paging[T] {
	if param == "" {
		param = DefaultParam
	}
	page, err := strconv.Atoi(query.Get(param))
	if err != nil || page < 1 {
		page = 1
	}
	return New(items, perPage, page)
}

// TotalPages is ceil(TotalItemCount / ItemCountPerPage).
func (p *Paging[T]) TotalPages() int {
	return (p.TotalItemCount + p.ItemCountPerPage - 1) / p.ItemCountPerPage
}

// HasNext reports whether a page follows the current one.
func (p *Paging[T]) HasNext() bool { return p.CurrentPage < p.TotalPages() }
// HasPrevious reports whether the current page is past the first.
func (p *Paging[T]) HasPrevious() bool { return p.CurrentPage > 1 }

// Items returns the items of the current page. A page past the end is empty.
func (p *Paging[T]) Items() []T {
	p.once.Do(func() {
		start := min((p.CurrentPage-1)*p.ItemCountPerPage, len(p.items))
		end := min(start+p.ItemCountPerPage, len(p.items))
		p.page = p.items[start:end:end]
	})
	return p.page
}
