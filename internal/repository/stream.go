package repository

import (
	"context"

	"gorm.io/gorm"
)

// streamRows executes the prepared query and feeds decoded rows to fn one
// at a time, never materializing the result set. The underlying cursor is
// forward-only and closed on every exit path, so the stream cannot be
// consumed twice; a second pass needs a fresh query. Returning an error
// from fn stops the iteration early.
func streamRows[T any](ctx context.Context, query *gorm.DB, fn func(T) error) error {
	rows, err := query.Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var item T
		if err := query.ScanRows(rows, &item); err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	return rows.Err()
}
