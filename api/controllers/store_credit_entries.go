package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aureliacommerce/storecredit-backend/api/responses"
	"github.com/aureliacommerce/storecredit-backend/api/validators"
	"github.com/aureliacommerce/storecredit-backend/internal/storecredit"
	"github.com/aureliacommerce/storecredit-backend/pkg/enums"
	pkgerrors "github.com/aureliacommerce/storecredit-backend/pkg/errors"
	"github.com/aureliacommerce/storecredit-backend/pkg/logger"
)

type originatorPayload struct {
	Kind string `json:"kind" validate:"required"`
	ID   string `json:"id" validate:"required,uuid"`
}

type creditRequest struct {
	Amount     string             `json:"amount" validate:"required"`
	Originator *originatorPayload `json:"originator"`
	Memo       *string            `json:"memo" validate:"omitempty,max=1000"`
}

type debitRequest struct {
	Amount            string             `json:"amount" validate:"required"`
	AuthorizationCode *string            `json:"authorization_code" validate:"omitempty,max=255"`
	Originator        *originatorPayload `json:"originator"`
	Memo              *string            `json:"memo" validate:"omitempty,max=1000"`
}

// StoreCreditCredit appends a pending credit entry to the account.
func StoreCreditCredit(svc storecredit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ledger, err := ledgerFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req creditRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := parseAmount(req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		originator, err := parseOriginator(req.Originator)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStoreCreditID(ctx, ledger.Account().ID.String())
		}
		entry, err := ledger.Credit(ctx, storecredit.CreditInput{
			Amount:     amount,
			Originator: originator,
			Memo:       req.Memo,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newEntryResponse(entry, ledger.Account().Currency))
	}
}

// StoreCreditDebit appends a pending debit entry to the account.
func StoreCreditDebit(svc storecredit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ledger, err := ledgerFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req debitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := parseAmount(req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		originator, err := parseOriginator(req.Originator)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStoreCreditID(ctx, ledger.Account().ID.String())
		}
		entry, err := ledger.Debit(ctx, storecredit.DebitInput{
			Amount:            amount,
			AuthorizationCode: req.AuthorizationCode,
			Originator:        originator,
			Memo:              req.Memo,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newEntryResponse(entry, ledger.Account().Currency))
	}
}

// GetStoreCreditEntry returns a single entry scoped to the account.
func GetStoreCreditEntry(svc storecredit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ledger, err := ledgerFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entryID, err := entryIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := ledger.Entry(r.Context(), entryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newEntryResponse(entry, ledger.Account().Currency))
	}
}

// StoreCreditEntryClear finalizes a pending entry into the cleared balance.
func StoreCreditEntryClear(svc storecredit.Service, logg *logger.Logger) http.HandlerFunc {
	return settleHandler(svc, logg, (*storecredit.Ledger).Clear)
}

// StoreCreditEntryVoid cancels a pending entry out of every balance.
func StoreCreditEntryVoid(svc storecredit.Service, logg *logger.Logger) http.HandlerFunc {
	return settleHandler(svc, logg, (*storecredit.Ledger).Void)
}

func settleHandler(
	svc storecredit.Service,
	logg *logger.Logger,
	settle func(*storecredit.Ledger, context.Context, uuid.UUID) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ledger, err := ledgerFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entryID, err := entryIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStoreCreditID(ctx, ledger.Account().ID.String())
			ctx = logg.WithEntryID(ctx, entryID.String())
		}

		if err := settle(ledger, ctx, entryID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entry, err := ledger.Entry(ctx, entryID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newEntryResponse(entry, ledger.Account().Currency))
	}
}

func entryIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "entryId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry id")
	}
	return id, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount must be a decimal string")
	}
	return amount, nil
}

func parseOriginator(payload *originatorPayload) (*storecredit.Originator, error) {
	if payload == nil {
		return nil, nil
	}
	kind, err := enums.ParseOriginatorKind(payload.Kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid originator kind")
	}
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid originator id")
	}
	return &storecredit.Originator{Kind: kind, ID: id}, nil
}
