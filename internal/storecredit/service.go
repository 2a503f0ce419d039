package storecredit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aureliacommerce/storecredit-backend/pkg/db/models"
	"github.com/aureliacommerce/storecredit-backend/pkg/enums"
	"github.com/aureliacommerce/storecredit-backend/pkg/metrics"
	"github.com/aureliacommerce/storecredit-backend/pkg/pagination"
	"github.com/aureliacommerce/storecredit-backend/pkg/types"
)

// Service manages store credit accounts and hands out ledgers bound to them.
type Service interface {
	CreateStoreCredit(ctx context.Context, input CreateStoreCreditInput) (*models.StoreCredit, error)
	GetStoreCredit(ctx context.Context, id uuid.UUID) (*models.StoreCredit, error)
	Ledger(ctx context.Context, storeCreditID uuid.UUID) (*Ledger, error)
}

type service struct {
	repo            Repository
	metrics         *metrics.LedgerMetrics
	clock           func() time.Time
	defaultCurrency enums.Currency
}

// ServiceParams wires the service dependencies. Metrics, Clock and
// DefaultCurrency are optional; Clock defaults to time.Now and
// DefaultCurrency to USD.
type ServiceParams struct {
	Repo            Repository
	Metrics         *metrics.LedgerMetrics
	Clock           func() time.Time
	DefaultCurrency enums.Currency
}

// NewService wires a store credit service with the provided repository.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("store credit repository required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	defaultCurrency := params.DefaultCurrency
	if defaultCurrency == "" {
		defaultCurrency = enums.CurrencyUSD
	}
	if !defaultCurrency.IsValid() {
		return nil, fmt.Errorf("invalid default currency %q", defaultCurrency)
	}
	return &service{
		repo:            params.Repo,
		metrics:         params.Metrics,
		clock:           clock,
		defaultCurrency: defaultCurrency,
	}, nil
}

func (s *service) CreateStoreCredit(ctx context.Context, input CreateStoreCreditInput) (*models.StoreCredit, error) {
	if input.UserID == uuid.Nil {
		return nil, invalidInput("user id is required")
	}
	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	if !currency.IsValid() {
		return nil, invalidInput(fmt.Sprintf("invalid currency %q", currency))
	}

	credit := &models.StoreCredit{
		UserID:   input.UserID,
		Currency: currency,
		Memo:     input.Memo,
	}
	if err := s.repo.CreateStoreCredit(ctx, credit); err != nil {
		return nil, persistenceError(err, "persist store credit")
	}
	return credit, nil
}

func (s *service) GetStoreCredit(ctx context.Context, id uuid.UUID) (*models.StoreCredit, error) {
	if id == uuid.Nil {
		return nil, invalidInput("store credit id is required")
	}
	credit, err := s.repo.FindStoreCredit(ctx, id)
	if err != nil {
		return nil, persistenceError(err, "load store credit")
	}
	if credit == nil {
		return nil, storeCreditNotFoundError()
	}
	return credit, nil
}

// Ledger loads the account and returns a ledger scoped to its entries. All
// mutations and balance views go through the returned value.
func (s *service) Ledger(ctx context.Context, storeCreditID uuid.UUID) (*Ledger, error) {
	credit, err := s.GetStoreCredit(ctx, storeCreditID)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		account: credit,
		repo:    s.repo,
		metrics: s.metrics,
		clock:   s.clock,
	}, nil
}

// Ledger exposes the append-only bookkeeping operations for one store credit
// account. Entries are created pending, transition at most once to cleared or
// voided, and are never edited or deleted. Every balance view is recomputed
// from the entry set; no running total is stored or trusted.
type Ledger struct {
	account *models.StoreCredit
	repo    Repository
	metrics *metrics.LedgerMetrics
	clock   func() time.Time
}

// Account returns the store credit account this ledger is bound to.
func (l *Ledger) Account() *models.StoreCredit {
	return l.account
}

// Credit appends a pending entry that increases the balance by amount.
func (l *Ledger) Credit(ctx context.Context, input CreditInput) (*models.StoreCreditEntry, error) {
	start := l.clock()
	entry, err := l.createEntry(ctx, input.Amount, false, nil, input.Originator, input.Memo)
	l.observe("credit", start, err)
	return entry, err
}

// Debit appends a pending entry that decreases the balance by amount. The
// authorization code lets a later void target this specific authorization.
func (l *Ledger) Debit(ctx context.Context, input DebitInput) (*models.StoreCreditEntry, error) {
	start := l.clock()
	entry, err := l.createEntry(ctx, input.Amount, true, input.AuthorizationCode, input.Originator, input.Memo)
	l.observe("debit", start, err)
	return entry, err
}

func (l *Ledger) createEntry(
	ctx context.Context,
	amount decimal.Decimal,
	negate bool,
	authorizationCode *string,
	originator *Originator,
	memo *string,
) (*models.StoreCreditEntry, error) {
	if !amount.IsPositive() {
		return nil, invalidAmountError()
	}

	signed := amount
	if negate {
		signed = amount.Neg()
	}

	entry := &models.StoreCreditEntry{
		StoreCreditID:     l.account.ID,
		Amount:            signed,
		AuthorizationCode: authorizationCode,
		Memo:              memo,
	}
	if originator != nil {
		kind := originator.Kind
		id := originator.ID
		entry.OriginatorKind = &kind
		entry.OriginatorID = &id
	}

	if err := l.repo.CreateEntry(ctx, entry); err != nil {
		return nil, persistenceError(err, "persist store credit entry")
	}
	return entry, nil
}

// Clear finalizes a pending entry. Clearing is terminal: once an entry is
// cleared or voided, any further clear/void fails with ErrEntrySettled. Under
// a concurrent clear/void race the first writer wins and the second fails.
func (l *Ledger) Clear(ctx context.Context, entryID uuid.UUID) error {
	start := l.clock()
	err := l.settle(ctx, entryID, l.repo.MarkCleared)
	l.observe("clear", start, err)
	return err
}

// Void cancels a pending entry, excluding it from every balance view forever
// while keeping the row for audit. Same terminality rules as Clear.
func (l *Ledger) Void(ctx context.Context, entryID uuid.UUID) error {
	start := l.clock()
	err := l.settle(ctx, entryID, l.repo.MarkVoided)
	l.observe("void", start, err)
	return err
}

func (l *Ledger) settle(
	ctx context.Context,
	entryID uuid.UUID,
	mark func(ctx context.Context, storeCreditID, entryID uuid.UUID, now time.Time) (SettleResult, error),
) error {
	if entryID == uuid.Nil {
		return invalidInput("entry id is required")
	}

	result, err := mark(ctx, l.account.ID, entryID, l.clock().UTC())
	if err != nil {
		return persistenceError(err, "settle store credit entry")
	}
	if !result.Found {
		return entryNotFoundError()
	}
	if !result.Updated {
		return entrySettledError()
	}
	return nil
}

// Entry loads a single entry belonging to this ledger's account.
func (l *Ledger) Entry(ctx context.Context, entryID uuid.UUID) (*models.StoreCreditEntry, error) {
	if entryID == uuid.Nil {
		return nil, invalidInput("entry id is required")
	}
	entry, err := l.repo.FindEntry(ctx, l.account.ID, entryID)
	if err != nil {
		return nil, persistenceError(err, "load store credit entry")
	}
	if entry == nil {
		return nil, entryNotFoundError()
	}
	return entry, nil
}

// Entries pages through the account's history, newest first.
func (l *Ledger) Entries(ctx context.Context, params pagination.Params) ([]models.StoreCreditEntry, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, invalidInput("invalid cursor")
	}
	entries, next, err := l.repo.ListEntries(ctx, listEntriesParams{
		StoreCreditID: l.account.ID,
		Limit:         params.Limit,
		Cursor:        cursor,
	})
	if err != nil {
		return nil, nil, persistenceError(err, "list store credit entries")
	}
	return entries, next, nil
}

// ClearedBalance sums the cleared, non-voided entries.
func (l *Ledger) ClearedBalance(ctx context.Context) (types.Money, error) {
	summary, err := l.Balances(ctx)
	if err != nil {
		return types.Money{}, err
	}
	return summary.Cleared, nil
}

// UnclearedBalance sums the pending (neither cleared nor voided) entries.
func (l *Ledger) UnclearedBalance(ctx context.Context) (types.Money, error) {
	summary, err := l.Balances(ctx)
	if err != nil {
		return types.Money{}, err
	}
	return summary.Uncleared, nil
}

// WorkingBalance is the total spendable balance: cleared plus uncleared,
// voided entries excluded.
func (l *Ledger) WorkingBalance(ctx context.Context) (types.Money, error) {
	summary, err := l.Balances(ctx)
	if err != nil {
		return types.Money{}, err
	}
	return summary.Working, nil
}

// Balances recomputes all three views from a single aggregate query, so the
// returned summary is internally consistent even under concurrent writes.
// Callers making a spend decision on a balance must still scope their own
// transaction around the read-then-spend sequence.
func (l *Ledger) Balances(ctx context.Context) (BalanceSummary, error) {
	totals, err := l.repo.BalanceTotals(ctx, l.account.ID)
	if err != nil {
		return BalanceSummary{}, persistenceError(err, "compute store credit balances")
	}
	currency := l.account.Currency
	cleared := types.NewMoney(totals.Cleared, currency)
	uncleared := types.NewMoney(totals.Uncleared, currency)
	return BalanceSummary{
		Cleared:   cleared,
		Uncleared: uncleared,
		Working:   cleared.Add(uncleared),
	}, nil
}

func (l *Ledger) observe(op string, start time.Time, err error) {
	if l.metrics == nil {
		return
	}
	l.metrics.ObserveDuration(op, l.clock().Sub(start))
	if err != nil {
		l.metrics.IncFailure(op)
		return
	}
	l.metrics.IncSuccess(op)
}
