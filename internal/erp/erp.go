// Package erp holds helpers shared by the domain handlers: formatting
// and small read-only query utilities over the business tables.
package erp

import (
	"context"
	"database/sql"
	"fmt"
)

// Money renders a dollar amount the way every handler presents it.
func Money(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// Count runs a single-value COUNT/SUM style query and returns the result
// as an int. A NULL aggregate (empty table) scans as zero.
func Count(ctx context.Context, db *sql.DB, query string, args ...any) (int, error) {
	var n sql.NullInt64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return int(n.Int64), nil
}

// Sum runs a single-value aggregate query returning a float. NULL scans
// as zero.
func Sum(ctx context.Context, db *sql.DB, query string, args ...any) (float64, error) {
	var v sql.NullFloat64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return 0, err
	}
	return v.Float64, nil
}
