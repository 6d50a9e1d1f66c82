package promos

import (
	"context"
	"testing"

	"github.com/gatepasshq/gatepass-backend/pkg/db"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPromoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:promos_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE promo_codes (
  id TEXT PRIMARY KEY,
  org_id TEXT NOT NULL,
  code TEXT NOT NULL,
  discount_type TEXT NOT NULL,
  percent_off NUMERIC NOT NULL DEFAULT 0,
  amount_off_cents INTEGER NOT NULL DEFAULT 0,
  max_uses INTEGER,
  use_count INTEGER NOT NULL DEFAULT 0,
  ticket_only INTEGER NOT NULL DEFAULT 0,
  starts_at DATETIME,
  expires_at DATETIME,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
)`,
		`CREATE UNIQUE INDEX idx_promo_codes_org_code ON promo_codes (org_id, code)`,
		`CREATE TABLE promo_redemptions (
  id TEXT PRIMARY KEY,
  promo_code_id TEXT NOT NULL,
  session_id TEXT NOT NULL,
  order_id TEXT,
  created_at DATETIME
)`,
		`CREATE UNIQUE INDEX idx_promo_redemptions_code_session ON promo_redemptions (promo_code_id, session_id)`,
		`CREATE TABLE group_discount_tiers (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  min_tickets INTEGER NOT NULL,
  percent_off NUMERIC NOT NULL,
  created_at DATETIME
)`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedPromo(t *testing.T, conn *gorm.DB, promo *models.PromoCode) {
	t.Helper()
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	require.NoError(t, conn.Create(promo).Error)
}

func TestRepositoryFindActiveByOrgAndCode(t *testing.T) {
	conn := setupPromoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	orgID := uuid.New()

	seedPromo(t, conn, &models.PromoCode{
		OrgID:        orgID,
		Code:         "EARLYBIRD",
		DiscountType: "percent",
		PercentOff:   decimal.NewFromInt(10),
		Active:       true,
	})
	seedPromo(t, conn, &models.PromoCode{
		OrgID:        orgID,
		Code:         "RETIRED",
		DiscountType: "percent",
		PercentOff:   decimal.NewFromInt(50),
		Active:       false,
	})

	promo, err := repo.FindActiveByOrgAndCode(ctx, orgID, "EARLYBIRD")
	require.NoError(t, err)
	assert.Equal(t, "EARLYBIRD", promo.Code)

	_, err = repo.FindActiveByOrgAndCode(ctx, orgID, "RETIRED")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindActiveByOrgAndCode(ctx, uuid.New(), "EARLYBIRD")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryInsertRedemptionIsUniquePerSession(t *testing.T) {
	conn := setupPromoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	promoID := uuid.New()

	first := &models.PromoRedemption{ID: uuid.New(), PromoCodeID: promoID, SessionID: "sess-1"}
	require.NoError(t, repo.InsertRedemption(ctx, first))

	dup := &models.PromoRedemption{ID: uuid.New(), PromoCodeID: promoID, SessionID: "sess-1"}
	err := repo.InsertRedemption(ctx, dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "idx_promo_redemptions_code_session"))

	other := &models.PromoRedemption{ID: uuid.New(), PromoCodeID: promoID, SessionID: "sess-2"}
	require.NoError(t, repo.InsertRedemption(ctx, other))
}

func TestRepositoryIncrementUseCountRespectsMaxUses(t *testing.T) {
	conn := setupPromoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	maxUses := 2
	promo := &models.PromoCode{
		OrgID:        uuid.New(),
		Code:         "LIMITED",
		DiscountType: "fixed",
		MaxUses:      &maxUses,
		Active:       true,
	}
	seedPromo(t, conn, promo)

	for i := 0; i < 2; i++ {
		rows, err := repo.IncrementUseCount(ctx, promo.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	}

	rows, err := repo.IncrementUseCount(ctx, promo.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)

	var reloaded models.PromoCode
	require.NoError(t, conn.First(&reloaded, "id = ?", promo.ID).Error)
	assert.Equal(t, 2, reloaded.UseCount)
}

func TestRepositoryListTiersForEventOrdersDescending(t *testing.T) {
	conn := setupPromoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	eventID := uuid.New()

	for _, tier := range []models.GroupDiscountTier{
		{ID: uuid.New(), EventID: eventID, MinTickets: 5, PercentOff: decimal.NewFromInt(5)},
		{ID: uuid.New(), EventID: eventID, MinTickets: 20, PercentOff: decimal.NewFromInt(15)},
		{ID: uuid.New(), EventID: eventID, MinTickets: 10, PercentOff: decimal.NewFromInt(10)},
		{ID: uuid.New(), EventID: uuid.New(), MinTickets: 2, PercentOff: decimal.NewFromInt(50)},
	} {
		require.NoError(t, conn.Create(&tier).Error)
	}

	tiers, err := repo.ListTiersForEvent(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	assert.Equal(t, 20, tiers[0].MinTickets)
	assert.Equal(t, 10, tiers[1].MinTickets)
	assert.Equal(t, 5, tiers[2].MinTickets)
}
