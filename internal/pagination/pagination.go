// Package pagination resolves page tokens into bounded, fixed-size pages.
package pagination

import (
	"strconv"
	"strings"
)

// Page describes one window over a result set of Total items.
type Page struct {
	Number   int   `json:"page"`
	NumPages int   `json:"num_pages"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_previous"`
}

// Offset is the number of items before the first item of the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit is the page size to request from the store.
func (p Page) Limit() int {
	return p.PerPage
}

// Resolve maps a raw page token onto an existing page. Missing, non-integer
// and non-positive tokens resolve to the first page; numbers past the end
// resolve to the last page. An empty result set still has one page.
func Resolve(token string, total int64, perPage int) Page {
	if perPage < 1 {
		perPage = 1
	}

	numPages := int((total + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(token))
	switch {
	case err != nil, number < 1:
		number = 1
	case number > numPages:
		number = numPages
	}

	return Page{
		Number:   number,
		NumPages: numPages,
		PerPage:  perPage,
		Total:    total,
		HasNext:  number < numPages,
		HasPrev:  number > 1,
	}
}
