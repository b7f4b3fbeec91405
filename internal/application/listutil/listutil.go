package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPerPage is how many rows a stored-record list shows per page.
const DefaultPerPage = 10

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 25, 50}

// Params are the list controls carried in the query string:
// q (search), page and per_page.
type Params struct {
	Search  string
	Page    int // 1-indexed
	PerPage int
}

// ParseParams extracts list controls from query values.
// POST: Page >= 1; PerPage is one of PerPageOptions; Search is trimmed
func ParseParams(q url.Values) Params {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return Params{Search: strings.TrimSpace(q.Get("q")), Page: page, PerPage: perPage}
}

// PageInfo is pagination metadata for rendering.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: Page is clamped to [1, TotalPages]; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max(1, (total+perPage-1)/perPage)
	page = min(max(page, 1), totalPages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset is the index of the first row on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow is the 1-indexed first row shown, or 0 for an empty list.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow is the 1-indexed last row shown.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// ShowPagination reports whether there is more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// PageNumbers returns up to five page numbers centred on the current page.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := max(1, p.Page-maxButtons/2)
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(1, end-maxButtons+1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Window applies params to items: keep those matching the search, then cut
// out the requested page. fields returns the searchable text of an item.
// POST: the returned PageInfo describes the filtered list
func Window[T any](items []T, params Params, fields func(T) []string) ([]T, PageInfo) {
	filtered := items
	if params.Search != "" {
		needle := strings.ToLower(params.Search)
		filtered = make([]T, 0, len(items))
		for _, it := range items {
			if matches(fields(it), needle) {
				filtered = append(filtered, it)
			}
		}
	}
	info := NewPageInfo(params.Page, params.PerPage, len(filtered))
	return filtered[info.Offset():info.EndRow()], info
}

func matches(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
