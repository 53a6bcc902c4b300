// Package pgconv provides utilities for converting between PostgreSQL types and Go types.
package pgconv

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// ToInt8 converts an *int64 to pgtype.Int8.
// Returns an invalid Int8 if i is nil.
func ToInt8(i *int64) pgtype.Int8 {
	if i == nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: *i, Valid: true}
}

// FromInt8 converts pgtype.Int8 to *int64.
// Returns nil if the Int8 is not valid.
func FromInt8(i pgtype.Int8) *int64 {
	if !i.Valid {
		return nil
	}
	return &i.Int64
}

// Ptr returns a pointer to the given value.
// Useful for creating inline pointers: pgconv.Ptr("hello")
func Ptr[T any](v T) *T {
	return &v
}
