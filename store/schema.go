package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// migrations are applied in order, position in the list is schema version.
// Never edit existing entries, append new ones.
var migrations = []string{
	`CREATE TABLE revisions (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		document_id TEXT NOT NULL,
		kind        TEXT NOT NULL,
		patch       TEXT,
		content     TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX revisions_document ON revisions (document_id, seq);`,
}

func (s *SQLite) migrate(ctx context.Context) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("unable to get store connection: %w", err)
	}
	defer s.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	var version int
	err = sqlitex.ExecuteTransient(conn, `PRAGMA user_version`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("unable to read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("revision store schema version %d is newer than supported %d", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		if err := sqlitex.ExecuteScript(conn, migrations[i], nil); err != nil {
			return fmt.Errorf("unable to apply schema migration %d: %w", i+1, err)
		}
		s.log.Debug("Schema migration applied", zap.Int("version", i+1))
	}
	if version != len(migrations) {
		if err := sqlitex.ExecuteTransient(conn, fmt.Sprintf(`PRAGMA user_version = %d`, len(migrations)), nil); err != nil {
			return fmt.Errorf("unable to update schema version: %w", err)
		}
	}
	return nil
}
