package listpage

import (
	"fmt"
	"slices"
)

const visiblePageWindow = 5

// Pagination tracks the current page and the totals from the last
// successful load.
type Pagination struct {
	page       int
	pageSize   int
	totalItems int
	totalPages int
	sizes      []int
}

// NewPagination starts on page 1. sizes lists the allowed page sizes; the
// initial size must be one of them.
func NewPagination(pageSize int, sizes []int) (Pagination, error) {
	if !slices.Contains(sizes, pageSize) {
		return Pagination{}, fmt.Errorf("%w: %d not in %v", ErrPageSize, pageSize, sizes)
	}
	return Pagination{page: 1, pageSize: pageSize, sizes: slices.Clone(sizes)}, nil
}

func (p Pagination) Page() int       { return p.page }
func (p Pagination) PageSize() int   { return p.pageSize }
func (p Pagination) TotalItems() int { return p.totalItems }
func (p Pagination) TotalPages() int { return p.totalPages }
func (p Pagination) Sizes() []int    { return slices.Clone(p.sizes) }

// lastPage is the highest page navigation may reach. An empty result still
// has a page 1 to show.
func (p Pagination) lastPage() int {
	return max(1, p.totalPages)
}

// GoToPage moves to n clamped into [1, last page] and returns the page
// actually selected.
func (p *Pagination) GoToPage(n int) int {
	p.page = min(max(n, 1), p.lastPage())
	return p.page
}

// SetPageSize switches the page size and goes back to page 1. The page
// count is recomputed from the known total so it stays consistent even if
// the next load fails.
func (p *Pagination) SetPageSize(n int) error {
	if !slices.Contains(p.sizes, n) {
		return fmt.Errorf("%w: %d not in %v", ErrPageSize, n, p.sizes)
	}
	p.pageSize = n
	p.page = 1
	p.totalPages = pageCount(p.totalItems, n)
	return nil
}

func (p *Pagination) Reset() {
	p.page = 1
}

// UpdateFromResponse recomputes the totals after a successful load. It does
// not move the current page.
func (p *Pagination) UpdateFromResponse(count, pageSize int) {
	if pageSize <= 0 {
		pageSize = p.pageSize
	}
	p.totalItems = max(count, 0)
	p.totalPages = pageCount(p.totalItems, pageSize)
}

func pageCount(items, size int) int {
	return (items + size - 1) / size
}

// VisiblePages is the window of page numbers shown around the current page.
func (p Pagination) VisiblePages() []int {
	last := p.lastPage()
	start := max(1, p.page-visiblePageWindow/2)
	end := min(last, start+visiblePageWindow-1)
	if end-start < visiblePageWindow-1 {
		start = max(1, end-visiblePageWindow+1)
	}

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Range returns the 1-based positions of the first and last items on the
// current page, or 0, 0 when there is nothing to show.
func (p Pagination) Range() (from, to int) {
	if p.totalItems == 0 {
		return 0, 0
	}
	from = (p.page-1)*p.pageSize + 1
	to = min(p.page*p.pageSize, p.totalItems)
	if from > to {
		return 0, 0
	}
	return from, to
}
