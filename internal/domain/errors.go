// Package domain defines the typed failures the coupon system reports.
// These sentinel values let handlers distinguish failure scenarios
// without string matching: a create that hits an existing natural key
// yields ErrDuplicateKey, a purchase of a sold-out coupon yields
// ErrOutOfStock, and so on. Guard violations always abort the in-flight
// write; callers receive exactly one of these per failed call.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned when a create collides with an existing
	// id or natural key (company name, customer name, coupon title).
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound is returned by update/delete/get when the target entity
	// does not exist, and by list operations whose result set is empty.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPurchased is returned when a customer attempts to purchase
	// a coupon a second time.
	ErrAlreadyPurchased = errors.New("coupon already purchased by this customer")

	// ErrOutOfStock is returned when a purchase finds the coupon amount at zero.
	ErrOutOfStock = errors.New("coupon out of stock")

	// ErrExpired is returned when a purchase finds the coupon past its end date.
	ErrExpired = errors.New("coupon expired")

	// ErrInterrupted is returned when a caller blocked on the resource pool
	// was cancelled before obtaining a handle. It is non-retriable here;
	// retry policy belongs to the caller.
	ErrInterrupted = errors.New("operation interrupted")

	// ErrUserNotFound is returned on login with an unknown principal name.
	ErrUserNotFound = errors.New("user not found")

	// ErrWrongPassword is returned on login with a bad password.
	ErrWrongPassword = errors.New("wrong password")

	// ErrImmutableField matches any ImmutableFieldError via errors.Is.
	ErrImmutableField = errors.New("immutable field changed")
)

// ImmutableFieldError reports an update that touched a protected field.
// It names the entity kind and the first offending field in the kind's
// fixed comparison order.
type ImmutableFieldError struct {
	Entity string // "company", "customer" or "coupon"
	Field  string // e.g. "startDate"
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("cannot update %s: %s cannot be changed", e.Entity, e.Field)
}

// Is makes errors.Is(err, ErrImmutableField) succeed for any field violation.
func (e *ImmutableFieldError) Is(target error) bool {
	return target == ErrImmutableField
}
