// Package service contains the business logic for the marketplace.
package service

const (
	// DefaultPageSize is used when the client does not send a page size.
	DefaultPageSize = 10
	// MaxPageSize caps the page size a client can request.
	MaxPageSize = 10
)

// PageRequest is an offset-based pagination request.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps page and page size into their allowed ranges.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized request.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one page of an offset-paginated listing.
type Page[T any] struct {
	Items       []T   `json:"data"`
	TotalCount  int64 `json:"total"`
	Page        int   `json:"page"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
}

// NewPage assembles a page and derives the totals from the count.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	return Page[T]{
		Items:       items,
		TotalCount:  total,
		Page:        req.Page,
		PageSize:    req.PageSize,
		TotalPages:  totalPages,
		HasNextPage: int64(req.Page)*int64(req.PageSize) < total,
	}
}
