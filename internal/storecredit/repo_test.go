package storecredit

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

	"github.com/aureliacommerce/storecredit-backend/pkg/db/models"
	"github.com/aureliacommerce/storecredit-backend/pkg/enums"
	"github.com/aureliacommerce/storecredit-backend/pkg/pagination"
)

func setupStoreCreditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	storeCredits := `
CREATE TABLE IF NOT EXISTS store_credits (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  memo TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	entries := `
CREATE TABLE IF NOT EXISTS store_credit_entries (
  id TEXT PRIMARY KEY,
  store_credit_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  originator_kind TEXT,
  originator_id TEXT,
  authorization_code TEXT,
  memo TEXT,
  cleared_at DATETIME,
  voided_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(storeCredits).Error)
	require.NoError(t, db.Exec(entries).Error)
	return db
}

func newTestStoreCredit(t *testing.T, db *gorm.DB) *models.StoreCredit {
	t.Helper()

	credit := &models.StoreCredit{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Currency: enums.CurrencyUSD,
	}
	require.NoError(t, db.Create(credit).Error)
	return credit
}

func newTestEntry(t *testing.T, db *gorm.DB, credit *models.StoreCredit, amount string, created time.Time) *models.StoreCreditEntry {
	t.Helper()

	entry := &models.StoreCreditEntry{
		ID:            uuid.New(),
		StoreCreditID: credit.ID,
		Amount:        decimal.RequireFromString(amount),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestRepositorySettle_firstWriterWins(t *testing.T) {
	db := setupStoreCreditTestDB(t)
	repo := NewRepository(db)

	credit := newTestStoreCredit(t, db)
	entry := newTestEntry(t, db, credit, "25.00", time.Now().UTC())

	now := time.Now().UTC()
	first, err := repo.MarkCleared(context.Background(), credit.ID, entry.ID, now)
	require.NoError(t, err)
	assert.True(t, first.Found)
	assert.True(t, first.Updated)

	second, err := repo.MarkVoided(context.Background(), credit.ID, entry.ID, now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, second.Found)
	assert.False(t, second.Updated)

	stored, err := repo.FindEntry(context.Background(), credit.ID, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Cleared())
	assert.False(t, stored.Voided())
}

func TestRepositorySettle_clearIsIdempotentlyRejected(t *testing.T) {
	db := setupStoreCreditTestDB(t)
	repo := NewRepository(db)

	credit := newTestStoreCredit(t, db)
	entry := newTestEntry(t, db, credit, "10.00", time.Now().UTC())

	now := time.Now().UTC()
	_, err := repo.MarkCleared(context.Background(), credit.ID, entry.ID, now)
	require.NoError(t, err)

	again, err := repo.MarkCleared(context.Background(), credit.ID, entry.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, again.Found)
	assert.False(t, again.Updated)
}

func TestRepositorySettle_missingEntry(t *testing.T) {
	db := setupStoreCreditTestDB(t)
	repo := NewRepository(db)

	credit := newTestStoreCredit(t, db)

	result, err := repo.MarkVoided(context.Background(), credit.ID, uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.False(t, result.Updated)
}

func TestRepositorySettle_scopedToAccount(t *testing.T) {
	db := setupStoreCreditTestDB(t)
	repo := NewRepository(db)

	credit := newTestStoreCredit(t, db)
	other := newTestStoreCredit(t, db)
	entry := newTestEntry(t, db, credit, "5.00", time.Now().UTC())

	result, err := repo.MarkCleared(context.Background(), other.ID, entry.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.False(t, result.Updated)

	stored, err := repo.FindEntry(context.Background(), credit.ID, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Settled())
}

func TestRepositoryBalanceTotals(t *testing.T) {
	db := setupStoreCreditTestDB(t)
	repo := NewRepository(db)

	credit := newTestStoreCredit(t, db)
	now := time.Now().UTC()

	cleared := newTestEntry(t, db, credit, "10.00", now.Add(-4*time.Hour))
	_, err := repo.MarkCleared(context.Background(), credit.ID, cleared.ID, now)
	require.NoError(t, err)

	newTestEntry(t, db, credit, "5.00", now.Add(-3*time.Hour))
	newTestEntry(t, db, credit, "-3.00", now.Add(-2*time.Hour))

	voided := newTestEntry(t, db, credit, "7.00", now.Add(-time.Hour))
	_, err = repo.MarkVoided(context.Background(), credit.ID, voided.ID, now)
	require.NoError(t, err)

	totals, err := repo.BalanceTotals(context.Background(), credit.ID)
	require.NoError(t, err)
	assert.True(t, totals.Cleared.Equal(decimal.RequireFromString("10.00")), "cleared total %s", totals.Cleared)
	assert.True(t, totals.Uncleared.Equal(decimal.RequireFromString("2.00")), "uncleared total %s", totals.Uncleared)
}

func TestRepositoryBalanceTotals_emptyAccount(t *testing.T) {
	db := setupStoreCreditTestDB(t)
	repo := NewRepository(db)

	credit := newTestStoreCredit(t, db)

	totals, err := repo.BalanceTotals(context.Background(), credit.ID)
	require.NoError(t, err)
	assert.True(t, totals.Cleared.IsZero())
	assert.True(t, totals.Uncleared.IsZero())
}

func TestRepositoryListEntries_pagination(t *testing.T) {
	db := setupStoreCreditTestDB(t)
	repo := NewRepository(db)

	credit := newTestStoreCredit(t, db)
	now := time.Now().UTC()

	oldest := newTestEntry(t, db, credit, "1.00", now.Add(-3*time.Hour))
	middle := newTestEntry(t, db, credit, "2.00", now.Add(-2*time.Hour))
	newest := newTestEntry(t, db, credit, "3.00", now.Add(-time.Hour))

	first, cursor, err := repo.ListEntries(context.Background(), listEntriesParams{
		StoreCreditID: credit.ID,
		Limit:         2,
	})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, cursor)
	assert.Equal(t, newest.ID, first[0].ID)
	assert.Equal(t, middle.ID, first[1].ID)

	second, next, err := repo.ListEntries(context.Background(), listEntriesParams{
		StoreCreditID: credit.ID,
		Limit:         2,
		Cursor:        cursor,
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Nil(t, next)
	assert.Equal(t, oldest.ID, second[0].ID)
}

func TestRepositoryListEntries_pageBoundariesLoseNothing(t *testing.T) {
	db := setupStoreCreditTestDB(t)
	repo := NewRepository(db)

	credit := newTestStoreCredit(t, db)
	now := time.Now().UTC()

	want := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		entry := newTestEntry(t, db, credit, "1.00", now.Add(-time.Duration(i)*time.Hour))
		want = append(want, entry.ID)
	}

	var seen []uuid.UUID
	var cursor *pagination.Cursor
	for page := 0; page < 4; page++ {
		entries, next, err := repo.ListEntries(context.Background(), listEntriesParams{
			StoreCreditID: credit.ID,
			Limit:         2,
			Cursor:        cursor,
		})
		require.NoError(t, err)
		for _, entry := range entries {
			seen = append(seen, entry.ID)
		}
		if next == nil {
			break
		}
		cursor = next
	}

	require.Len(t, seen, len(want), "paging must visit every entry exactly once")
	assert.Equal(t, want, seen)
}

func TestRepositoryFind_missingRowsReturnNil(t *testing.T) {
	db := setupStoreCreditTestDB(t)
	repo := NewRepository(db)

	credit, err := repo.FindStoreCredit(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, credit)

	entry, err := repo.FindEntry(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, entry)
}
