package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindConflict
)

// Error is a domain error with a kind and a message safe to show to clients.
type Error struct {
	Kind Kind
	Msg  string

	base *Error
}

func (e *Error) Error() string {
	return e.Msg
}

// Is makes an error built with Withf match the sentinel it came from.
func (e *Error) Is(target error) bool {
	return e.base != nil && e.base == target
}

// Withf returns an error of the same kind with a more specific message that
// still satisfies errors.Is(err, e).
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Msg: fmt.Sprintf(format, args...), base: e}
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrUserNotFound        = newError(KindNotFound, "user not found")
	ErrUserDoesNotExist    = newError(KindValidation, "user does not exist")
	ErrUserAlreadyExists   = newError(KindValidation, "user already exists")
	ErrNilUser             = errors.New("user is nil")
	ErrInvalidCredentials  = newError(KindUnauthenticated, "invalid credentials")
	ErrNotAuthenticated    = newError(KindUnauthenticated, "authentication credentials were not provided")
	ErrInvalidToken        = newError(KindUnauthenticated, "invalid or revoked token")
	ErrForbidden           = newError(KindForbidden, "you do not have permission to perform this action")
	ErrInvalidInput        = newError(KindValidation, "invalid input")
	ErrCategoryNotFound    = newError(KindNotFound, "category not found")
	ErrPetNotFound         = newError(KindNotFound, "pet does not exist")
	ErrImageNotFound       = newError(KindNotFound, "image not found")
	ErrReviewNotFound      = newError(KindNotFound, "review not found")
	ErrAdoptionNotFound    = newError(KindNotFound, "adoption not found")
	ErrWalletNotFound      = newError(KindNotFound, "wallet not found")
	ErrPetAlreadyAdopted   = newError(KindValidation, "pet is already adopted")
	ErrInsufficientBalance = newError(KindValidation, "insufficient wallet balance")
	ErrAdoptionExists      = newError(KindValidation, "you already have an active adoption")
	ErrCategoryExists      = newError(KindValidation, "category with this name already exists")
	ErrAlreadyReviewed     = newError(KindValidation, "you have already reviewed this pet")
	ErrPetNotAdopted       = newError(KindValidation, "you can only review pets that are adopted")
	ErrNotAdopter          = newError(KindValidation, "you must have adopted this pet to review it")
	ErrInvalidRating       = newError(KindValidation, "rating must be between 1 and 5")
	ErrInvalidAmount       = newError(KindValidation, "amount must be positive")
	ErrInvalidAvailability = newError(KindValidation, "availability must be Public or Anyone")
	ErrImageRequired       = newError(KindValidation, "image is required")
	ErrUploadUnavailable   = newError(KindValidation, "image upload is not configured")

	ErrRequestAlreadyProcessed = newError(KindConflict, "request already processed")

	ErrNilTransaction         = errors.New("transaction is nil")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)

// KindOf reports the kind of err, KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
