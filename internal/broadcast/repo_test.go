package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborpay/scanpay-backend/pkg/db/models"
	"github.com/harborpay/scanpay-backend/pkg/enums"
)

func setupBroadcastTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	entries := `
CREATE TABLE IF NOT EXISTS broadcast_entries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  merchant_id TEXT NOT NULL,
  account_id TEXT NOT NULL,
  channel_id TEXT NOT NULL,
  payment_type TEXT NOT NULL,
  fingerprint TEXT NOT NULL,
  expires_at DATETIME NOT NULL,
  listen_pattern TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(entries).Error)
	return db
}

func newEntry(created time.Time) models.BroadcastEntry {
	return models.BroadcastEntry{
		ID:            uuid.New(),
		OrderID:       uuid.New(),
		MerchantID:    uuid.New(),
		AccountID:     uuid.New(),
		ChannelID:     uuid.New(),
		PaymentType:   enums.PaymentTypeAlipayQR,
		Fingerprint:   decimal.RequireFromString("10.00"),
		ExpiresAt:     created.Add(30 * time.Minute),
		ListenPattern: enums.ListenModeActive,
		CreatedAt:     created,
	}
}

func TestRepositoryAppendAndReplayOrder(t *testing.T) {
	db := setupBroadcastTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	second := newEntry(now)
	first := newEntry(now.Add(-time.Hour))
	require.NoError(t, repo.Append(context.Background(), []models.BroadcastEntry{second}))
	require.NoError(t, repo.Append(context.Background(), []models.BroadcastEntry{first}))

	all, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}

func TestRepositoryAppendEmptyIsNoop(t *testing.T) {
	db := setupBroadcastTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Append(context.Background(), nil))
	all, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
