// Package pagination implements fixed-size page windows over GORM queries.
package pagination

import (
	"strconv"

	"gorm.io/gorm"
)

// DefaultPageSize is the number of rows per listing page.
const DefaultPageSize = 20

// PageRequest holds the requested page. Page is the raw query value and may
// be anything; Resolve turns it into a valid page number.
type PageRequest struct {
	Page     string `form:"page"`
	PageSize int    `form:"-"`
}

// Defaults fills in the page size when not provided.
func (p *PageRequest) Defaults() {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
}

// Resolve returns the page to serve given the total item count. Non-numeric
// or non-positive pages map to 1 and pages past the end map to the last page.
func (p PageRequest) Resolve(totalItems int64) int {
	p.Defaults()
	last := TotalPages(totalItems, p.PageSize)

	n, err := strconv.Atoi(p.Page)
	if err != nil || n < 1 {
		return 1
	}
	if n > last {
		return last
	}
	return n
}

// TotalPages returns the number of pages for totalItems, never less than 1.
func TotalPages(totalItems int64, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		return 1
	}
	return pages
}

// PageResponse wraps a paginated list of items with metadata.
type PageResponse[T any] struct {
	Data        []T   `json:"data"`
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	totalPages := TotalPages(totalItems, pageSize)
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:        data,
		Page:        page,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for a resolved page.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
