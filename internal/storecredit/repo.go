package storecredit

import (
	"context"
	"time"

	"github.com/aureliacommerce/storecredit-backend/pkg/db"
	"github.com/aureliacommerce/storecredit-backend/pkg/db/models"
	"github.com/aureliacommerce/storecredit-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository manages persistence for store credit accounts and their ledger
// entries. Entries are append-only: the only update the repository exposes is
// the one-shot settlement of a pending entry.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateStoreCredit(ctx context.Context, credit *models.StoreCredit) error
	FindStoreCredit(ctx context.Context, id uuid.UUID) (*models.StoreCredit, error)
	CreateEntry(ctx context.Context, entry *models.StoreCreditEntry) error
	FindEntry(ctx context.Context, storeCreditID, entryID uuid.UUID) (*models.StoreCreditEntry, error)
	MarkCleared(ctx context.Context, storeCreditID, entryID uuid.UUID, now time.Time) (SettleResult, error)
	MarkVoided(ctx context.Context, storeCreditID, entryID uuid.UUID, now time.Time) (SettleResult, error)
	BalanceTotals(ctx context.Context, storeCreditID uuid.UUID) (BalanceTotals, error)
	ListEntries(ctx context.Context, params listEntriesParams) ([]models.StoreCreditEntry, *pagination.Cursor, error)
}

// SettleResult reports the outcome of a conditional settlement update.
type SettleResult struct {
	Found   bool
	Updated bool
}

// BalanceTotals carries the aggregate sums computed in a single query so the
// three balance views always describe one consistent snapshot of the entries.
type BalanceTotals struct {
	Cleared   decimal.Decimal `gorm:"column:cleared_total"`
	Uncleared decimal.Decimal `gorm:"column:uncleared_total"`
}

type listEntriesParams struct {
	StoreCreditID uuid.UUID
	Limit         int
	Cursor        *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a store credit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateStoreCredit(ctx context.Context, credit *models.StoreCredit) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

func (r *repository) FindStoreCredit(ctx context.Context, id uuid.UUID) (*models.StoreCredit, error) {
	var credit models.StoreCredit
	err := r.db.WithContext(ctx).First(&credit, "id = ?", id).Error
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.StoreCreditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindEntry(ctx context.Context, storeCreditID, entryID uuid.UUID) (*models.StoreCreditEntry, error) {
	var entry models.StoreCreditEntry
	err := r.db.WithContext(ctx).
		First(&entry, "id = ? AND store_credit_id = ?", entryID, storeCreditID).Error
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) MarkCleared(ctx context.Context, storeCreditID, entryID uuid.UUID, now time.Time) (SettleResult, error) {
	return r.settle(ctx, storeCreditID, entryID, "cleared_at", now)
}

func (r *repository) MarkVoided(ctx context.Context, storeCreditID, entryID uuid.UUID, now time.Time) (SettleResult, error) {
	return r.settle(ctx, storeCreditID, entryID, "voided_at", now)
}

// settle couples the "not already settled" check and the timestamp write in a
// single conditional UPDATE, so concurrent clear/void calls cannot both win.
func (r *repository) settle(ctx context.Context, storeCreditID, entryID uuid.UUID, column string, now time.Time) (SettleResult, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StoreCreditEntry{}).
		Where("id = ? AND store_credit_id = ? AND cleared_at IS NULL AND voided_at IS NULL", entryID, storeCreditID).
		UpdateColumns(map[string]any{column: now, "updated_at": now})
	if result.Error != nil {
		return SettleResult{}, result.Error
	}

	settle := SettleResult{Updated: result.RowsAffected > 0}
	if result.RowsAffected > 0 {
		settle.Found = true
		return settle, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StoreCreditEntry{}).
		Where("id = ? AND store_credit_id = ?", entryID, storeCreditID).
		Count(&count).Error; err != nil {
		return SettleResult{}, err
	}
	settle.Found = count > 0
	return settle, nil
}

func (r *repository) BalanceTotals(ctx context.Context, storeCreditID uuid.UUID) (BalanceTotals, error) {
	var totals BalanceTotals
	err := r.db.WithContext(ctx).Raw(`
SELECT
  COALESCE(SUM(CASE WHEN cleared_at IS NOT NULL THEN amount ELSE 0 END), 0) AS cleared_total,
  COALESCE(SUM(CASE WHEN cleared_at IS NULL THEN amount ELSE 0 END), 0) AS uncleared_total
FROM store_credit_entries
WHERE store_credit_id = ? AND voided_at IS NULL`, storeCreditID).
		Scan(&totals).Error
	if err != nil {
		return BalanceTotals{}, err
	}
	return totals, nil
}

func (r *repository) ListEntries(ctx context.Context, params listEntriesParams) ([]models.StoreCreditEntry, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.StoreCreditEntry{}).
		Where("store_credit_id = ?", params.StoreCreditID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var entries []models.StoreCreditEntry
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	if len(entries) > normalized {
		// The cursor pins the last row handed back; the follow-up query's
		// strict (created_at, id) < comparison then resumes on the row after
		// it, so no entry is skipped at a page boundary.
		entries = entries[:normalized]
		last := entries[normalized-1]
		return entries, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return entries, nil, nil
}
