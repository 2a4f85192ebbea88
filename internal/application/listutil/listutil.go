// Package listutil parses and re-encodes the catalog's search, filter, sort
// and paging query parameters.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultPerPage is the default number of product cards per page.
const DefaultPerPage = 24

// PerPageOptions are the allowed cards-per-page values; multiples of the
// four-column grid.
var PerPageOptions = []int{12, 24, 48, 96}

// pageWindow is how many page links the pager shows at once.
const pageWindow = 5

// PageParams is the requested page.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// SortParams is the requested ordering. Empty Sort means store order.
type SortParams struct {
	Sort string
	Dir  string // "asc" or "desc"
}

// FilterParams is the free-text query plus exact-match filters such as category.
type FilterParams struct {
	Search  string
	Filters map[string]string
}

// ListParams is everything a catalog listing URL can carry.
type ListParams struct {
	PageParams
	SortParams
	FilterParams
}

// ParseListParams reads q, dropping anything not in sortCols or filterKeys.
// PRE: none
// POST: Page >= 1, PerPage is one of PerPageOptions, Dir is "asc" or "desc"
func ParseListParams(q url.Values, sortCols, filterKeys []string) ListParams {
	p := ListParams{
		PageParams: PageParams{Page: 1, PerPage: DefaultPerPage},
		SortParams: SortParams{Dir: "asc"},
		FilterParams: FilterParams{
			Search:  strings.TrimSpace(q.Get("q")),
			Filters: map[string]string{},
		},
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && slices.Contains(PerPageOptions, n) {
		p.PerPage = n
	}
	if col := q.Get("sort"); slices.Contains(sortCols, col) {
		p.Sort = col
	}
	if q.Get("dir") == "desc" {
		p.Dir = "desc"
	}
	for _, k := range filterKeys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			p.Filters[k] = v
		}
	}
	return p
}

// Query encodes p for links, leaving out values equal to the defaults.
// POST: ParseListParams(p.Query(), ...) returns p for allowed columns and keys
func (p ListParams) Query() url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("q", p.Search)
	}
	for k, v := range p.Filters {
		q.Set(k, v)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
		q.Set("dir", p.Dir)
	}
	if p.PerPage != 0 && p.PerPage != DefaultPerPage {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Page > 1 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	return q
}

// WithPage returns a copy pointing at page.
func (p ListParams) WithPage(page int) ListParams {
	p.Page = page
	return p
}

// SortBy returns the params for a click on the col sort link: back to page one,
// ascending, or descending when col is already sorted ascending.
func (p ListParams) SortBy(col string) ListParams {
	dir := "asc"
	if p.Sort == col && p.Dir == "asc" {
		dir = "desc"
	}
	p.Page = 1
	p.Sort = col
	p.Dir = dir
	return p
}

// PageInfo describes the page actually served.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPageInfo clamps page into range for total results.
// PRE: total >= 0
// POST: 1 <= Page <= TotalPages; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	pages := max(1, (total+perPage-1)/perPage)
	return PageInfo{
		Page:       min(max(page, 1), pages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
	}
}

// Offset is the number of results before this page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow is the 1-indexed first result shown, or 0 when there are none.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow is the 1-indexed last result shown.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// PageNumbers is the window of page links around the current page.
// POST: at most pageWindow consecutive numbers within [1, TotalPages] including Page
func (p PageInfo) PageNumbers() []int {
	first := max(1, p.Page-pageWindow/2)
	last := min(p.TotalPages, first+pageWindow-1)
	first = max(1, last-pageWindow+1)
	pages := make([]int, 0, last-first+1)
	for n := first; n <= last; n++ {
		pages = append(pages, n)
	}
	return pages
}

// ShowPagination reports whether results span more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.TotalPages > 1
}
