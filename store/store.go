// Package store keeps append-only history of document revisions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"docconv/common"
	"docconv/config"
	"docconv/patch"
)

var ErrInvalidRevision = errors.New("invalid revision")

// Revision is immutable record of document state after patch application or
// manual save.
type Revision struct {
	ID         string               `json:"id"`
	DocumentID string               `json:"documentId"`
	Kind       common.RevisionKind  `json:"type"`
	Patch      *patch.DocumentPatch `json:"patch,omitempty"`
	Content    string               `json:"content"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// Store appends revisions. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, rev Revision) (string, error)
}

// SQLite is Store backed by sqlite database file.
type SQLite struct {
	pool *sqlitex.Pool
	log  *zap.Logger
}

// Open opens (creating if necessary) database and brings schema up to date.
func Open(ctx context.Context, cfg *config.StoreConfig, log *zap.Logger) (*SQLite, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("store")

	size := cfg.PoolSize
	if size <= 0 {
		size = 1
	}
	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		Flags:       sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenWAL | sqlite.OpenURI,
		PoolSize:    size,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open revision store %q: %w", cfg.Path, err)
	}
	s := &SQLite{pool: pool, log: log}

	if err := s.migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	log.Debug("Revision store opened", zap.String("path", cfg.Path), zap.Int("pool", size))
	return s, nil
}

func prepareConn(conn *sqlite.Conn) error {
	return sqlitex.ExecuteScript(conn, `PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON;`, nil)
}

func (s *SQLite) Close() error {
	return s.pool.Close()
}

// Append stores revision assigning it new id and creation time when those
// are not set. Returns revision id.
func (s *SQLite) Append(ctx context.Context, rev Revision) (id string, err error) {
	if rev.DocumentID == "" {
		return "", fmt.Errorf("%w: empty document id", ErrInvalidRevision)
	}
	if rev.Kind == common.RevisionKindPatch && rev.Patch == nil {
		return "", fmt.Errorf("%w: patch revision without patch", ErrInvalidRevision)
	}

	if rev.ID == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("unable to generate revision id: %w", err)
		}
		rev.ID = u.String()
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now()
	}

	var patchJSON any
	if rev.Patch != nil {
		data, err := json.Marshal(rev.Patch)
		if err != nil {
			return "", fmt.Errorf("unable to encode patch: %w", err)
		}
		patchJSON = string(data)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", fmt.Errorf("unable to get store connection: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO revisions (id, document_id, kind, patch, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			rev.ID, rev.DocumentID, rev.Kind.String(), patchJSON, rev.Content, rev.CreatedAt.UTC().Format(time.RFC3339Nano),
		}})
	if err != nil {
		return "", fmt.Errorf("unable to append revision: %w", err)
	}

	s.log.Debug("Revision appended",
		zap.String("id", rev.ID), zap.String("document", rev.DocumentID), zap.Stringer("kind", rev.Kind))
	return rev.ID, nil
}

// Revisions returns document history, oldest first.
func (s *SQLite) Revisions(ctx context.Context, documentID string) ([]Revision, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get store connection: %w", err)
	}
	defer s.pool.Put(conn)

	var revs []Revision
	err = sqlitex.Execute(conn,
		`SELECT id, document_id, kind, patch, content, created_at FROM revisions WHERE document_id = ? ORDER BY seq`,
		&sqlitex.ExecOptions{
			Args: []any{documentID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				rev, err := scanRevision(stmt)
				if err != nil {
					return err
				}
				revs = append(revs, rev)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to list revisions: %w", err)
	}
	return revs, nil
}

func scanRevision(stmt *sqlite.Stmt) (Revision, error) {
	rev := Revision{
		ID:         stmt.ColumnText(0),
		DocumentID: stmt.ColumnText(1),
		Content:    stmt.ColumnText(4),
	}
	kind, err := common.ParseRevisionKind(stmt.ColumnText(2))
	if err != nil {
		return rev, fmt.Errorf("revision %s: %w", rev.ID, err)
	}
	rev.Kind = kind

	if stmt.ColumnType(3) != sqlite.TypeNull {
		rev.Patch = &patch.DocumentPatch{}
		if err := json.Unmarshal([]byte(stmt.ColumnText(3)), rev.Patch); err != nil {
			return rev, fmt.Errorf("revision %s: unable to decode patch: %w", rev.ID, err)
		}
	}
	if rev.CreatedAt, err = time.Parse(time.RFC3339Nano, stmt.ColumnText(5)); err != nil {
		return rev, fmt.Errorf("revision %s: %w", rev.ID, err)
	}
	return rev, nil
}
