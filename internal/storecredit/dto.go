package storecredit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aureliacommerce/storecredit-backend/pkg/enums"
	"github.com/aureliacommerce/storecredit-backend/pkg/types"
)

// Originator tags the entity that caused a ledger entry, by reference only.
// The ledger never resolves it to a concrete record.
type Originator struct {
	Kind enums.OriginatorKind
	ID   uuid.UUID
}

// CreateStoreCreditInput provisions a new store credit account.
type CreateStoreCreditInput struct {
	UserID   uuid.UUID
	Currency enums.Currency
	Memo     *string
}

// CreditInput adds value to the account. Amount is the positive magnitude.
type CreditInput struct {
	Amount     decimal.Decimal
	Originator *Originator
	Memo       *string
}

// DebitInput removes value from the account. Amount is the positive magnitude
// to remove; the entry is stored with a negative amount.
type DebitInput struct {
	Amount            decimal.Decimal
	AuthorizationCode *string
	Originator        *Originator
	Memo              *string
}

// BalanceSummary presents the three balance views derived from one snapshot
// of the entry set. Working is always Cleared + Uncleared.
type BalanceSummary struct {
	Cleared   types.Money `json:"cleared"`
	Uncleared types.Money `json:"uncleared"`
	Working   types.Money `json:"working"`
}
