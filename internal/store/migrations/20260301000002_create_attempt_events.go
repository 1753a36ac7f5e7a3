package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS attempt_events (
				id             INTEGER PRIMARY KEY AUTOINCREMENT,
				sequence       INTEGER NOT NULL UNIQUE,
				timestamp      TIMESTAMP NOT NULL,
				session_id     TEXT NOT NULL,
				assessment_id  INTEGER NOT NULL,
				topic_id       INTEGER NOT NULL,
				topic_name     TEXT NOT NULL DEFAULT '',
				score          REAL NOT NULL,
				questions      INTEGER NOT NULL DEFAULT 0,
				answered       INTEGER NOT NULL DEFAULT 0,
				correct        INTEGER NOT NULL DEFAULT 0,
				duration_secs  INTEGER NOT NULL DEFAULT 0
			)`); err != nil {
				return err
			}
			_, err := db.ExecContext(ctx,
				`CREATE INDEX IF NOT EXISTS attempt_events_topic ON attempt_events (topic_id, sequence)`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS attempt_events`)
			return err
		},
	)
}
