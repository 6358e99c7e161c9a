package sqlite

import "context"

// Exec runs raw SQL; tests use it to apply the migration files.
func (r *Repository) Exec(ctx context.Context, query string) error {
	_, err := r.db.ExecContext(ctx, query)
	return err
}
