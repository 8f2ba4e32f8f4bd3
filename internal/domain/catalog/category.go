package catalog

import (
	"strings"

	"github.com/stockroute/backend/internal/domain/shared"
)

// Category groups products
type Category struct {
	shared.BaseAggregateRoot
	Name    string
	NameKey string
}

// NewCategory creates a category. NameKey makes the name unique
// regardless of case.
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewValidationError("category name cannot exceed 100 characters")
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		NameKey:           shared.NameKey(name),
	}, nil
}
