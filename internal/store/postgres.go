package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mediareach/press-cli/internal/db"
	"github.com/mediareach/press-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS archive (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	topic      TEXT NOT NULL,
	key        TEXT NOT NULL UNIQUE,
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_archive_kind ON archive(kind);
CREATE INDEX IF NOT EXISTS idx_archive_topic ON archive(topic);
CREATE INDEX IF NOT EXISTS idx_archive_kind_created ON archive(kind, created_at DESC);

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
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_recipients_session ON recipients(session_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Archive(ctx context.Context, rec Record) (*Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO archive (id, kind, topic, key, body, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, string(rec.Kind), rec.Topic, rec.Key(), []byte(rec.Body), rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert archive record")
	}
	return &rec, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	var kind string
	var body []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, kind, topic, body, created_at FROM archive WHERE id = $1`,
		id,
	).Scan(&rec.ID, &kind, &rec.Topic, &body, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get archive record %s", id)
	}

	rec.Kind = Kind(kind)
	rec.Body = body
	return &rec, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := `SELECT id, kind, topic, body, created_at FROM archive WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Kind != "" {
		query += fmt.Sprintf(` AND kind = $%d`, argIdx)
		args = append(args, string(filter.Kind))
		argIdx++
	}
	if filter.Topic != "" {
		query += fmt.Sprintf(` AND topic = $%d`, argIdx)
		args = append(args, filter.Topic)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list archive records")
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		var kind string
		var body []byte
		if err := rows.Scan(&rec.ID, &kind, &rec.Topic, &body, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan archive record")
		}
		rec.Kind = Kind(kind)
		rec.Body = body
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate archive records")
	}
	return recs, nil
}

var recipientColumns = []string{
	"id", "session_id", "name", "email", "role", "publication", "region", "source_url", "article_url",
}

func (s *PostgresStore) SaveRecipients(ctx context.Context, sessionID string, recipients []model.Recipient) (int64, error) {
	rows := make([][]any, 0, len(recipients))
	for _, r := range recipients {
		rows = append(rows, []any{
			uuid.New().String(), sessionID,
			r.Name, r.Email, r.Role, r.Publication, string(r.Region), r.SourceURL, r.ArticleURL,
		})
	}
	n, err := db.CopyFrom(ctx, s.pool, "recipients", recipientColumns, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: save recipients for session %s", sessionID)
	}
	return n, nil
}
