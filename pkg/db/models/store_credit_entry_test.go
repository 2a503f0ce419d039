package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aureliacommerce/storecredit-backend/pkg/enums"
	pkgerrors "github.com/aureliacommerce/storecredit-backend/pkg/errors"
)

func TestStoreCreditEntryStatus(t *testing.T) {
	now := time.Now().UTC()

	pending := StoreCreditEntry{}
	if pending.Settled() || pending.Cleared() || pending.Voided() {
		t.Fatal("new entry must be pending")
	}

	cleared := StoreCreditEntry{ClearedAt: &now}
	if !cleared.Cleared() || !cleared.Settled() || cleared.Voided() {
		t.Fatal("cleared entry must report cleared and settled")
	}

	voided := StoreCreditEntry{VoidedAt: &now}
	if !voided.Voided() || !voided.Settled() || voided.Cleared() {
		t.Fatal("voided entry must report voided and settled")
	}
}

func TestStoreCreditEntryDisplayAmount(t *testing.T) {
	entry := StoreCreditEntry{Amount: decimal.RequireFromString("-12.50")}

	money := entry.DisplayAmount(enums.CurrencyUSD)
	if money.Currency != enums.CurrencyUSD {
		t.Fatalf("expected account currency on display amount, got %s", money.Currency)
	}
	if got := money.Display(); got != "-$12.50" {
		t.Fatalf("expected -$12.50, got %q", got)
	}
}

func TestStoreCreditEntryBeforeSave(t *testing.T) {
	now := time.Now().UTC()
	kind := enums.OriginatorKindOrder
	badKind := enums.OriginatorKind("warehouse")
	originatorID := uuid.New()

	tests := []struct {
		name    string
		entry   StoreCreditEntry
		wantErr bool
	}{
		{
			name:  "valid pending entry",
			entry: StoreCreditEntry{StoreCreditID: uuid.New(), Amount: decimal.RequireFromString("5")},
		},
		{
			name:  "valid originator pair",
			entry: StoreCreditEntry{StoreCreditID: uuid.New(), OriginatorKind: &kind, OriginatorID: &originatorID},
		},
		{
			name:    "missing account reference",
			entry:   StoreCreditEntry{Amount: decimal.RequireFromString("5")},
			wantErr: true,
		},
		{
			name:    "originator kind without id",
			entry:   StoreCreditEntry{StoreCreditID: uuid.New(), OriginatorKind: &kind},
			wantErr: true,
		},
		{
			name:    "originator id without kind",
			entry:   StoreCreditEntry{StoreCreditID: uuid.New(), OriginatorID: &originatorID},
			wantErr: true,
		},
		{
			name:    "unknown originator kind",
			entry:   StoreCreditEntry{StoreCreditID: uuid.New(), OriginatorKind: &badKind, OriginatorID: &originatorID},
			wantErr: true,
		},
		{
			name:    "cleared and voided together",
			entry:   StoreCreditEntry{StoreCreditID: uuid.New(), ClearedAt: &now, VoidedAt: &now},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		err := tt.entry.BeforeSave(nil)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tt.name)
			}
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("%s: expected validation code, got %v", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
	}
}
