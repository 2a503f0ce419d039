package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aureliacommerce/storecredit-backend/pkg/enums"
	pkgerrors "github.com/aureliacommerce/storecredit-backend/pkg/errors"
	"github.com/aureliacommerce/storecredit-backend/pkg/types"
)

// StoreCreditEntry is one append-only adjustment to a store credit balance.
// Positive amounts increase the balance, negative amounts decrease it. An
// entry settles exactly once, by being cleared or voided, and is never
// edited or deleted afterwards; corrections happen by adding an offsetting
// entry.
type StoreCreditEntry struct {
	ID                uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreCreditID     uuid.UUID             `gorm:"column:store_credit_id;type:uuid;not null;index"`
	Amount            decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	OriginatorKind    *enums.OriginatorKind `gorm:"column:originator_kind;type:originator_kind"`
	OriginatorID      *uuid.UUID            `gorm:"column:originator_id;type:uuid"`
	AuthorizationCode *string               `gorm:"column:authorization_code"`
	Memo              *string               `gorm:"column:memo"`
	ClearedAt         *time.Time            `gorm:"column:cleared_at"`
	VoidedAt          *time.Time            `gorm:"column:voided_at"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// Cleared reports whether the entry has been finalized.
func (e *StoreCreditEntry) Cleared() bool {
	return e.ClearedAt != nil
}

// Voided reports whether the entry was cancelled in error.
func (e *StoreCreditEntry) Voided() bool {
	return e.VoidedAt != nil
}

// Settled reports whether the entry reached a terminal state.
func (e *StoreCreditEntry) Settled() bool {
	return e.Cleared() || e.Voided()
}

// DisplayAmount types the signed amount in the owning account's currency.
// The currency always comes from the account; entries carry none of their own.
func (e *StoreCreditEntry) DisplayAmount(currency enums.Currency) types.Money {
	return types.NewMoney(e.Amount, currency)
}

// BeforeCreate assigns the id client-side when the database default is not
// available (e.g. sqlite in tests).
func (e *StoreCreditEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// BeforeSave guards the row-level invariants: the entry must reference an
// account, an originator reference must be complete, and an entry can never
// be both cleared and voided.
func (e *StoreCreditEntry) BeforeSave(tx *gorm.DB) error {
	if e.StoreCreditID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store credit entry requires a store credit reference")
	}
	if (e.OriginatorKind == nil) != (e.OriginatorID == nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "originator kind and id must be set together")
	}
	if e.OriginatorKind != nil && !e.OriginatorKind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid originator kind")
	}
	if e.ClearedAt != nil && e.VoidedAt != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store credit entry cannot be both cleared and voided")
	}
	return nil
}
