package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
				id       INTEGER PRIMARY KEY CHECK (id = 1),
				next_val INTEGER NOT NULL DEFAULT 1
			)`); err != nil {
				return err
			}
			_, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS global_sequence`)
			return err
		},
	)
}
