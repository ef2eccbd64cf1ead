package handler

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Paging is the 1 based paging part of list requests.
type Paging struct {
	Page int `json:"page" query:"page" validate:"gte=0"`
	Size int `json:"size" query:"size" validate:"gte=0"`
}

// Normalize clamps page and size into range.
func (p Paging) Normalize() Paging {
	if p.Page < 1 {
		p.Page = 1
	}

	if p.Size < 1 {
		p.Size = defaultPageSize
	}

	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}

	return p
}

// Offset is the number of rows before the page.
func (p Paging) Offset() int {
	p = p.Normalize()

	return (p.Page - 1) * p.Size
}

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
	Items []T   `json:"items"`
}

// NewPage builds a PageResult for items of the normalized page p.
func NewPage[T any](items []T, total int64, p Paging) PageResult[T] {
	p = p.Normalize()

	if items == nil {
		items = []T{}
	}

	return PageResult[T]{
		Total: total,
		Page:  p.Page,
		Size:  p.Size,
		Pages: int((total + int64(p.Size) - 1) / int64(p.Size)),
		Items: items,
	}
}
