package store

import (
	"database/sql"
	"time"
)

// timeToNanos stores instants as UTC Unix nanoseconds so ordering
// comparisons in SQL stay integer comparisons.
func timeToNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func nanosToTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

func nullableTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: timeToNanos(*t), Valid: true}
}

func nullableInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := nanosToTime(v.Int64)
	return &t
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
