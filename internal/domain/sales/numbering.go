package sales

import (
	"context"
	"fmt"
	"time"
)

// SaleDay truncates t to its UTC calendar day. Sale numbers are always
// sequenced per UTC day.
func SaleDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatSaleNumber renders S-YYYYMMDD-NNNN
func FormatSaleNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("S-%s-%04d", day.UTC().Format("20060102"), seq)
}

// SequenceRepository hands out per-day sale sequence values. NextValue
// must be an atomic increment-and-read so concurrent callers never see
// the same value.
type SequenceRepository interface {
	NextValue(ctx context.Context, day time.Time) (int64, error)
}
