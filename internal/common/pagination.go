package common

import "math"

const MaxPageLimit = 100

// Pagination is a 1-based page request.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination normalises page and limit. A zero or negative limit falls back to defaultLimit.
// Page is capped so that Offset never overflows; such a page is simply empty.
func NewPagination(page, limit, defaultLimit int) Pagination {
	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = defaultLimit
	}

	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}

	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is a slice of results plus the totals needed to page through them.
type Page[T any] struct {
	Docs        []T  `json:"docs"`
	TotalDocs   int  `json:"totalDocs"`
	Limit       int  `json:"limit"`
	Page        int  `json:"page"`
	TotalPages  int  `json:"totalPages"`
	HasPrevPage bool `json:"hasPrevPage"`
	HasNextPage bool `json:"hasNextPage"`
	PrevPage    *int `json:"prevPage"`
	NextPage    *int `json:"nextPage"`
}

func NewPage[T any](docs []T, totalDocs int, p Pagination) Page[T] {
	if docs == nil {
		docs = []T{}
	}

	totalPages := (totalDocs + p.Limit - 1) / p.Limit

	page := Page[T]{
		Docs:        docs,
		TotalDocs:   totalDocs,
		Limit:       p.Limit,
		Page:        p.Page,
		TotalPages:  totalPages,
		HasPrevPage: p.Page > 1,
		HasNextPage: p.Page < totalPages,
	}

	if page.HasPrevPage {
		prev := p.Page - 1
		page.PrevPage = &prev
	}

	if page.HasNextPage {
		next := p.Page + 1
		page.NextPage = &next
	}

	return page
}
