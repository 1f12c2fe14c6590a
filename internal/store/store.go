// Package store persists distribution artifacts: archived press releases,
// email send records and discovered recipient lists. A postgres backend is
// the primary; a local SQLite file serves as the fallback when no database
// is reachable.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mediareach/press-cli/internal/model"
)

// Kind classifies an archived record.
type Kind string

// Archive record kinds. The values double as the key prefix.
const (
	KindPressRelease Kind = "press_releases"
	KindEmail        Kind = "emails"
)

// Record is one archived artifact: the press release text or the email send
// report, wrapped in a JSON envelope.
type Record struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Topic     string          `json:"topic"`
	Body      json.RawMessage `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
}

// Key returns the archive key for the record, e.g.
// press_releases/20260901T120000_intelligenza_artificiale.json.
func (r Record) Key() string {
	return fmt.Sprintf("%s/%s_%s.json", r.Kind, r.CreatedAt.UTC().Format("20060102T150405"), slug(r.Topic))
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}

// Filter specifies criteria for listing archived records.
type Filter struct {
	Kind   Kind   `json:"kind,omitempty"`
	Topic  string `json:"topic,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for distribution artifacts.
type Store interface {
	// Archive saves a record, filling ID and CreatedAt when unset.
	Archive(ctx context.Context, rec Record) (*Record, error)
	// Get returns a record by ID, or nil when it does not exist.
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, f Filter) ([]Record, error)

	// SaveRecipients bulk-saves a session's discovered recipient list.
	SaveRecipients(ctx context.Context, sessionID string, recipients []model.Recipient) (int64, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store from a locator. "pg://" locators open the postgres
// backend; "local://" locators (and bare paths) open SQLite.
func Open(ctx context.Context, locator string, poolCfg *PoolConfig) (Store, error) {
	switch {
	case strings.HasPrefix(locator, "pg://"):
		return NewPostgres(ctx, "postgres://"+strings.TrimPrefix(locator, "pg://"), poolCfg)
	case strings.HasPrefix(locator, "postgres://"), strings.HasPrefix(locator, "postgresql://"):
		return NewPostgres(ctx, locator, poolCfg)
	case strings.HasPrefix(locator, "local://"):
		return NewSQLite(strings.TrimPrefix(locator, "local://"))
	default:
		return NewSQLite(locator)
	}
}

// Fallback wraps a primary and a secondary Store. Writes land on the primary
// and fall through to the secondary when it fails; reads consult the
// secondary only when the primary errors or misses.
type Fallback struct {
	primary   Store
	secondary Store
}

// NewFallback creates a Fallback over the two stores.
func NewFallback(primary, secondary Store) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Archive(ctx context.Context, rec Record) (*Record, error) {
	saved, err := f.primary.Archive(ctx, rec)
	if err == nil {
		return saved, nil
	}
	zap.L().Warn("primary store archive failed, using fallback", zap.Error(err))
	return f.secondary.Archive(ctx, rec)
}

func (f *Fallback) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := f.primary.Get(ctx, id)
	if err == nil && rec != nil {
		return rec, nil
	}
	if err != nil {
		zap.L().Warn("primary store get failed, using fallback", zap.Error(err))
	}
	return f.secondary.Get(ctx, id)
}

func (f *Fallback) List(ctx context.Context, filter Filter) ([]Record, error) {
	recs, err := f.primary.List(ctx, filter)
	if err == nil {
		return recs, nil
	}
	zap.L().Warn("primary store list failed, using fallback", zap.Error(err))
	return f.secondary.List(ctx, filter)
}

func (f *Fallback) SaveRecipients(ctx context.Context, sessionID string, recipients []model.Recipient) (int64, error) {
	n, err := f.primary.SaveRecipients(ctx, sessionID, recipients)
	if err == nil {
		return n, nil
	}
	zap.L().Warn("primary store save recipients failed, using fallback", zap.Error(err))
	return f.secondary.SaveRecipients(ctx, sessionID, recipients)
}

func (f *Fallback) Migrate(ctx context.Context) error {
	if err := f.primary.Migrate(ctx); err != nil {
		zap.L().Warn("primary store migrate failed", zap.Error(err))
	}
	return f.secondary.Migrate(ctx)
}

func (f *Fallback) Close() error {
	err := f.primary.Close()
	if cerr := f.secondary.Close(); err == nil {
		err = cerr
	}
	return err
}
