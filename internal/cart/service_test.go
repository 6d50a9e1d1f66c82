package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:cart_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE cart_snapshots (
  id TEXT PRIMARY KEY,
  org_id TEXT NOT NULL,
  event_id TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  session_id TEXT NOT NULL,
  items TEXT NOT NULL,
  totals TEXT,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
)`,
		`CREATE UNIQUE INDEX idx_cart_snapshots_identity ON cart_snapshots (event_id, customer_email, session_id)`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newCartService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func snapshotInput(eventID uuid.UUID) SnapshotInput {
	return SnapshotInput{
		OrgID:         uuid.New(),
		EventID:       eventID,
		CustomerEmail: "Guest@Example.com",
		SessionID:     "sess-1",
		Items:         json.RawMessage(`[{"item_id":"a","quantity":2}]`),
		Totals:        types.JSONMap{"subtotal_cents": 10000},
	}
}

func TestSaveUpsertsByIdentity(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()
	eventID := uuid.New()

	first, err := svc.Save(ctx, snapshotInput(eventID))
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", first.CustomerEmail)

	in := snapshotInput(eventID)
	in.Items = json.RawMessage(`[{"item_id":"a","quantity":5}]`)
	_, err = svc.Save(ctx, in)
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.CartSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var row models.CartSnapshot
	require.NoError(t, conn.First(&row).Error)
	assert.Contains(t, string(row.Items), `"quantity":5`)
}

func TestSaveValidatesInput(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()

	in := snapshotInput(uuid.New())
	in.CustomerEmail = "  "
	_, err := svc.Save(ctx, in)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	in = snapshotInput(uuid.New())
	in.Items = json.RawMessage(`[]`)
	_, err = svc.Save(ctx, in)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCompleteBlocksLaterSaves(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)
	ctx := context.Background()
	eventID := uuid.New()

	saved, err := svc.Save(ctx, snapshotInput(eventID))
	require.NoError(t, err)

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.Complete(ctx, tx, eventID, "guest@example.com", "sess-1")
	}))

	var row models.CartSnapshot
	require.NoError(t, conn.First(&row, "id = ?", saved.ID).Error)
	require.NotNil(t, row.CompletedAt)
	completedAt := *row.CompletedAt

	// The late debounce flush must not reopen or mutate the snapshot.
	returned, err := svc.Save(ctx, snapshotInput(eventID))
	require.NoError(t, err)
	require.NotNil(t, returned.CompletedAt)

	require.NoError(t, conn.First(&row, "id = ?", saved.ID).Error)
	assert.Contains(t, string(row.Items), `"quantity":2`)
	assert.WithinDuration(t, completedAt, *row.CompletedAt, time.Second)
}

func TestCompleteWithoutSnapshotIsNoop(t *testing.T) {
	conn := setupCartTestDB(t)
	svc := newCartService(t, conn)

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Complete(context.Background(), tx, uuid.New(), "guest@example.com", "sess-1")
	})
	require.NoError(t, err)
}

func TestDeleteStaleKeepsCompletedSnapshots(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	old := time.Now().UTC().Add(-72 * time.Hour)
	completed := old
	rows := []models.CartSnapshot{
		{ID: uuid.New(), OrgID: uuid.New(), EventID: uuid.New(), CustomerEmail: "a@example.com", SessionID: "s1", Items: json.RawMessage(`[]`), UpdatedAt: old},
		{ID: uuid.New(), OrgID: uuid.New(), EventID: uuid.New(), CustomerEmail: "b@example.com", SessionID: "s2", Items: json.RawMessage(`[]`), UpdatedAt: old, CompletedAt: &completed},
	}
	for i := range rows {
		require.NoError(t, conn.Create(&rows[i]).Error)
		// Save writes updated_at via autoUpdateTime; pin it back.
		require.NoError(t, conn.Model(&models.CartSnapshot{}).Where("id = ?", rows[i].ID).Update("updated_at", old).Error)
	}

	deleted, err := repo.DeleteStale(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	require.NoError(t, conn.Model(&models.CartSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
