package storecredit

import (
	"errors"

	pkgerrors "github.com/aureliacommerce/storecredit-backend/pkg/errors"
)

// Sentinel failures for ledger operations. Callers branch with errors.Is; the
// HTTP layer maps the wrapping coded error to a status.
var (
	// ErrInvalidAmount rejects non-positive credit/debit magnitudes. The
	// failure is deterministic: retrying with the same input repeats it.
	ErrInvalidAmount = errors.New("Amount must be greater than 0")

	// ErrEntrySettled rejects a clear or void on an entry that already
	// reached a terminal state. It usually signals double-processing
	// upstream and must not be swallowed.
	ErrEntrySettled = errors.New("store credit entry has already been settled")

	// ErrEntryNotFound is returned when the entry does not belong to the
	// ledger's account.
	ErrEntryNotFound = errors.New("store credit entry not found")

	// ErrStoreCreditNotFound is returned when no account exists for the id.
	ErrStoreCreditNotFound = errors.New("store credit not found")
)

func invalidInput(message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message)
}

func invalidAmountError() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidAmount, ErrInvalidAmount.Error())
}

func entrySettledError() error {
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrEntrySettled, ErrEntrySettled.Error())
}

func entryNotFoundError() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrEntryNotFound, ErrEntryNotFound.Error())
}

func storeCreditNotFoundError() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrStoreCreditNotFound, ErrStoreCreditNotFound.Error())
}

// persistenceError surfaces storage failures unchanged to the caller; coded
// domain errors (e.g. entry validation) pass through untouched.
func persistenceError(err error, message string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
