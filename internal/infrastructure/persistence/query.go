package persistence

import (
	"errors"
	"strings"

	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyScope restricts a query to the rows an actor may see.
// The table must carry seller_id and delivery_man_id columns.
func applyScope(q *gorm.DB, scope identity.Scope) *gorm.DB {
	if scope.Deny {
		return q.Where("1 = 0")
	}
	if scope.Unrestricted {
		return q
	}
	if scope.SellerID != nil {
		q = q.Where("seller_id = ?", *scope.SellerID)
	}
	if scope.DeliveryManID != nil {
		q = q.Where("delivery_man_id = ?", *scope.DeliveryManID)
	}
	return q
}

// paginate applies limit and offset of a normalized page
func paginate(q *gorm.DB, p shared.Pagination) *gorm.DB {
	p = p.Normalize()
	return q.Limit(p.Limit).Offset(p.Offset())
}

// containsPattern builds a case-insensitive LIKE pattern, escaping wildcards
func containsPattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
