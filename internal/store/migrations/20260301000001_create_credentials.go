package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS credentials (
				id            INTEGER PRIMARY KEY CHECK (id = 1),
				access_token  TEXT NOT NULL,
				refresh_token TEXT NOT NULL,
				email         TEXT NOT NULL DEFAULT '',
				first_name    TEXT NOT NULL DEFAULT '',
				last_name     TEXT NOT NULL DEFAULT '',
				grade         TEXT NOT NULL DEFAULT '',
				updated_at    TIMESTAMP NOT NULL
			)`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS credentials`)
			return err
		},
	)
}
