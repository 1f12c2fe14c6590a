package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediareach/press-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_ArchiveAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	body, _ := json.Marshal(map[string]string{"content": "Comunicato stampa sull'IA"})
	saved, err := st.Archive(ctx, Record{
		Kind:  KindPressRelease,
		Topic: "intelligenza artificiale",
		Body:  body,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := st.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, KindPressRelease, got.Kind)
	assert.Equal(t, "intelligenza artificiale", got.Topic)
	assert.JSONEq(t, string(body), string(got.Body))
}

func TestSQLite_Get_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_List_FiltersByKind(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Archive(ctx, Record{Kind: KindPressRelease, Topic: "ai", Body: json.RawMessage(`{}`)})
	require.NoError(t, err)
	_, err = st.Archive(ctx, Record{Kind: KindEmail, Topic: "ai", Body: json.RawMessage(`{}`)})
	require.NoError(t, err)

	recs, err := st.List(ctx, Filter{Kind: KindEmail})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, KindEmail, recs[0].Kind)

	all, err := st.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_SaveRecipients(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.SaveRecipients(ctx, "session-1", []model.Recipient{
		{Name: "Marco Rossi", Email: "rossi@corriere.it", Role: "Giornalista", Publication: "Corriere", Region: model.RegionEurope},
		{Name: "Jane Doe", Publication: "BBC"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSQLite_SaveRecipients_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	n, err := st.SaveRecipients(context.Background(), "session-1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecordKey(t *testing.T) {
	rec := Record{
		Kind:      KindPressRelease,
		Topic:     "Intelligenza Artificiale!",
		CreatedAt: time.Date(2026, 9, 1, 12, 30, 45, 0, time.UTC),
	}
	assert.Equal(t, "press_releases/20260901T123045_intelligenza_artificiale.json", rec.Key())

	rec.Kind = KindEmail
	rec.Topic = "   "
	assert.Equal(t, "emails/20260901T123045_untitled.json", rec.Key())
}
