package activation

import (
	"context"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Query is a filtered, paged listing request. Page is 1 based.
type Query struct {
	Filter

	Page int `json:"page"`
	Size int `json:"size"`
}

// Page is one page of a listing.
type Page struct {
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
	Pages int    `json:"pages"`
	Items []View `json:"items"`
}

// normalize clamps page and size into range.
func (q Query) normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}

	switch {
	case q.Size < 1:
		q.Size = defaultPageSize
	case q.Size > maxPageSize:
		q.Size = maxPageSize
	}

	return q
}

// List returns one page of codes matching the query, newest first.
func (s *Service) List(ctx context.Context, q Query) (*Page, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	q = q.normalize()

	rows, total, err := s.repo.List(ctx, q.Filter, (q.Page-1)*q.Size, q.Size)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(q.Size) - 1) / int64(q.Size))

	return &Page{Total: total, Page: q.Page, Size: q.Size, Pages: pages, Items: views(rows)}, nil
}
