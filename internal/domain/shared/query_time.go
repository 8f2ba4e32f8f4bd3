package shared

import (
	"time"
)

const dateLayout = "2006-01-02"

// QueryTime is a time bound read from a query string. A bare date
// (2006-01-02) stands for the whole UTC day; anything else must be RFC 3339.
type QueryTime struct {
	At       time.Time
	DateOnly bool
}

// ParseQueryTime parses a bare date or an RFC 3339 timestamp
func ParseQueryTime(s string) (QueryTime, error) {
	if s == "" {
		return QueryTime{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return QueryTime{At: t, DateOnly: true}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return QueryTime{}, NewValidationError("invalid time %q, want YYYY-MM-DD or RFC 3339", s)
	}
	return QueryTime{At: t}, nil
}

// UnmarshalParam lets gin bind query parameters into a QueryTime
func (q *QueryTime) UnmarshalParam(s string) error {
	parsed, err := ParseQueryTime(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// IsZero reports whether no value was given
func (q QueryTime) IsZero() bool {
	return q.At.IsZero()
}

// Start is the inclusive lower bound
func (q QueryTime) Start() time.Time {
	return q.At
}

// End is the exclusive upper bound. A bare date ends at the next UTC
// midnight; a timestamp includes its own microsecond, the finest
// precision PostgreSQL stores.
func (q QueryTime) End() time.Time {
	if q.DateOnly {
		return q.At.AddDate(0, 0, 1)
	}
	return q.At.Truncate(time.Microsecond).Add(time.Microsecond)
}

// StartPtr returns Start, or nil when no value was given
func (q QueryTime) StartPtr() *time.Time {
	if q.IsZero() {
		return nil
	}
	t := q.Start()
	return &t
}

// EndPtr returns End, or nil when no value was given
func (q QueryTime) EndPtr() *time.Time {
	if q.IsZero() {
		return nil
	}
	t := q.End()
	return &t
}
