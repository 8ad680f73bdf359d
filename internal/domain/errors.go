package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	ErrItemNotFound      = fmt.Errorf("menu item %w", ErrNotFound)
	ErrItemUnavailable   = errors.New("item unavailable")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrOrderNotPending   = errors.New("order not pending")
	ErrAmountMismatch    = errors.New("gateway amount mismatch")

	ErrNoActiveShift = errors.New("no active shift")
	ErrShiftExpired  = errors.New("shift expired")

	ErrInvalidSignature   = errors.New("invalid signature")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)

	ErrGateway = errors.New("payment gateway unavailable")
)

// Rejection is a business-rule failure whose message is safe to show to
// the client. It unwraps to its kind.
type Rejection struct {
	Kind error
	Msg  string
}

func (r *Rejection) Error() string { return r.Msg }
func (r *Rejection) Unwrap() error { return r.Kind }

func Reject(kind error, format string, args ...any) error {
	return &Rejection{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Message returns the client-facing text of err, or fallback when err does
// not carry one.
func Message(err error, fallback string) string {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Msg
	}
	return fallback
}

func InsufficientStock(name string, available int64) error {
	return Reject(ErrInsufficientStock, "Insufficient stock for %s. Available: %d", name, available)
}
