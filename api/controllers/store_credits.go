package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aureliacommerce/storecredit-backend/api/responses"
	"github.com/aureliacommerce/storecredit-backend/api/validators"
	"github.com/aureliacommerce/storecredit-backend/internal/storecredit"
	"github.com/aureliacommerce/storecredit-backend/pkg/db/models"
	"github.com/aureliacommerce/storecredit-backend/pkg/enums"
	pkgerrors "github.com/aureliacommerce/storecredit-backend/pkg/errors"
	"github.com/aureliacommerce/storecredit-backend/pkg/logger"
	"github.com/aureliacommerce/storecredit-backend/pkg/pagination"
	"github.com/aureliacommerce/storecredit-backend/pkg/types"
)

type createStoreCreditRequest struct {
	UserID   string  `json:"user_id" validate:"required,uuid"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
	Memo     *string `json:"memo" validate:"omitempty,max=1000"`
}

type storeCreditResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Currency  string    `json:"currency"`
	Memo      *string   `json:"memo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type entryResponse struct {
	ID                uuid.UUID   `json:"id"`
	StoreCreditID     uuid.UUID   `json:"store_credit_id"`
	Amount            string      `json:"amount"`
	DisplayAmount     types.Money `json:"display_amount"`
	Status            string      `json:"status"`
	OriginatorKind    *string     `json:"originator_kind,omitempty"`
	OriginatorID      *uuid.UUID  `json:"originator_id,omitempty"`
	AuthorizationCode *string     `json:"authorization_code,omitempty"`
	Memo              *string     `json:"memo,omitempty"`
	ClearedAt         *time.Time  `json:"cleared_at,omitempty"`
	VoidedAt          *time.Time  `json:"voided_at,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

type entryListResponse struct {
	Entries    []entryResponse `json:"entries"`
	NextCursor *string         `json:"next_cursor,omitempty"`
}

func newStoreCreditResponse(credit *models.StoreCredit) storeCreditResponse {
	return storeCreditResponse{
		ID:        credit.ID,
		UserID:    credit.UserID,
		Currency:  credit.Currency.String(),
		Memo:      credit.Memo,
		CreatedAt: credit.CreatedAt,
	}
}

func newEntryResponse(entry *models.StoreCreditEntry, currency enums.Currency) entryResponse {
	status := "pending"
	switch {
	case entry.Voided():
		status = "voided"
	case entry.Cleared():
		status = "cleared"
	}

	var kind *string
	if entry.OriginatorKind != nil {
		value := entry.OriginatorKind.String()
		kind = &value
	}

	return entryResponse{
		ID:                entry.ID,
		StoreCreditID:     entry.StoreCreditID,
		Amount:            entry.Amount.StringFixed(2),
		DisplayAmount:     entry.DisplayAmount(currency),
		Status:            status,
		OriginatorKind:    kind,
		OriginatorID:      entry.OriginatorID,
		AuthorizationCode: entry.AuthorizationCode,
		Memo:              entry.Memo,
		ClearedAt:         entry.ClearedAt,
		VoidedAt:          entry.VoidedAt,
		CreatedAt:         entry.CreatedAt,
	}
}

// CreateStoreCredit provisions a store credit account for a customer.
func CreateStoreCredit(svc storecredit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store credit service unavailable"))
			return
		}

		var req createStoreCreditRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		input := storecredit.CreateStoreCreditInput{
			UserID: userID,
			Memo:   req.Memo,
		}
		if req.Currency != "" {
			currency, parseErr := enums.ParseCurrency(req.Currency)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid currency"))
				return
			}
			input.Currency = currency
		}

		credit, err := svc.CreateStoreCredit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newStoreCreditResponse(credit))
	}
}

// GetStoreCredit returns the account plus its current balance views.
func GetStoreCredit(svc storecredit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ledger, err := ledgerFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balances, err := ledger.Balances(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"store_credit": newStoreCreditResponse(ledger.Account()),
			"balances":     balances,
		})
	}
}

// StoreCreditBalances returns the three derived balance views.
func StoreCreditBalances(svc storecredit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ledger, err := ledgerFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balances, err := ledger.Balances(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balances)
	}
}

// ListStoreCreditEntries pages through the account's entry history.
func ListStoreCreditEntries(svc storecredit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ledger, err := ledgerFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		entries, next, err := ledger.Entries(r.Context(), pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := entryListResponse{Entries: make([]entryResponse, 0, len(entries))}
		currency := ledger.Account().Currency
		for i := range entries {
			resp.Entries = append(resp.Entries, newEntryResponse(&entries[i], currency))
		}
		if next != nil {
			encoded := pagination.EncodeCursor(*next)
			resp.NextCursor = &encoded
		}
		responses.WriteSuccess(w, resp)
	}
}

func ledgerFromRequest(r *http.Request, svc storecredit.Service) (*storecredit.Ledger, error) {
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "store credit service unavailable")
	}
	raw := chi.URLParam(r, "storeCreditId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store credit id")
	}
	return svc.Ledger(r.Context(), id)
}
