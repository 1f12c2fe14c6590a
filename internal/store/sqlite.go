package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mediareach/press-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS archive (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	topic      TEXT NOT NULL,
	key        TEXT NOT NULL UNIQUE,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_archive_kind ON archive(kind);
CREATE INDEX IF NOT EXISTS idx_archive_topic ON archive(topic);

CREATE TABLE IF NOT EXISTS recipients (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	name        TEXT NOT NULL,
	email       TEXT,
	role        TEXT,
	publication TEXT,
	region      TEXT,
	source_url  TEXT,
	article_url TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_recipients_session ON recipients(session_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Archive(ctx context.Context, rec Record) (*Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archive (id, kind, topic, key, body, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), rec.Topic, rec.Key(), string(rec.Body), rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert archive record")
	}
	return &rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	var kind, body string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, topic, body, created_at FROM archive WHERE id = ?`,
		id,
	).Scan(&rec.ID, &kind, &rec.Topic, &body, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get archive record %s", id)
	}

	rec.Kind = Kind(kind)
	rec.Body = []byte(body)
	return &rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := `SELECT id, kind, topic, body, created_at FROM archive WHERE 1=1`
	args := []any{}

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Topic != "" {
		query += ` AND topic = ?`
		args = append(args, filter.Topic)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list archive records")
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		var kind, body string
		if err := rows.Scan(&rec.ID, &kind, &rec.Topic, &body, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan archive record")
		}
		rec.Kind = Kind(kind)
		rec.Body = []byte(body)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate archive records")
	}
	return recs, nil
}

func (s *SQLiteStore) SaveRecipients(ctx context.Context, sessionID string, recipients []model.Recipient) (int64, error) {
	if len(recipients) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save recipients")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO recipients (id, session_id, name, email, role, publication, region, source_url, article_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare save recipients")
	}
	defer stmt.Close()

	var n int64
	for _, r := range recipients {
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), sessionID,
			r.Name, r.Email, r.Role, r.Publication, string(r.Region), r.SourceURL, r.ArticleURL,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: save recipient %s", r.Name)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save recipients")
	}
	return n, nil
}
