package shared

// Pagination holds 1-based page parameters for list queries
type Pagination struct {
	Page  int
	Limit int
}

// DefaultPageLimit is applied when a caller does not ask for a page size
const DefaultPageLimit = 10

// Normalize clamps page and limit to sane values
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, p Pagination) Paginated[T] {
	p = p.Normalize()
	totalPages := int(total) / p.Limit
	if int(total)%p.Limit > 0 {
		totalPages++
	}
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}
