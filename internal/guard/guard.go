// Package guard holds the pure decision functions that run before every
// write. Each function looks only at entity snapshots and facts handed
// to it by the orchestrator — no I/O — and returns nil to proceed or a
// typed domain error. Where several conditions can fail, the first
// failing condition in the documented order wins; call sites and tests
// depend on that ordering.
package guard

import (
	"time"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/model"
)

// CompanyCreate rejects a create whose id or name is already taken.
func CompanyCreate(idExists, nameExists bool) error {
	if idExists || nameExists {
		return domain.ErrDuplicateKey
	}
	return nil
}

// CompanyUpdate rejects updates to a missing company or ones that
// change the immutable name.
func CompanyUpdate(c, stored *model.Company) error {
	if stored == nil {
		return domain.ErrNotFound
	}
	if c.Name != stored.Name {
		return &domain.ImmutableFieldError{Entity: "company", Field: "name"}
	}
	return nil
}

// CustomerCreate rejects a create whose id or name is already taken.
func CustomerCreate(idExists, nameExists bool) error {
	if idExists || nameExists {
		return domain.ErrDuplicateKey
	}
	return nil
}

// CustomerUpdate rejects updates to a missing customer or ones that
// change the immutable name.
func CustomerUpdate(c, stored *model.Customer) error {
	if stored == nil {
		return domain.ErrNotFound
	}
	if c.Name != stored.Name {
		return &domain.ImmutableFieldError{Entity: "customer", Field: "name"}
	}
	return nil
}

// CouponCreate rejects a create whose id or title is already taken.
func CouponCreate(idExists, titleExists bool) error {
	if idExists || titleExists {
		return domain.ErrDuplicateKey
	}
	return nil
}

// CouponUpdate compares the proposed coupon against the stored snapshot
// field by field. Only price and endDate are legally mutable; every
// other field is checked in the fixed order id, startDate, amount,
// type, message, image, and the first mismatch wins.
func CouponUpdate(c, stored *model.Coupon) error {
	if stored == nil {
		return domain.ErrNotFound
	}
	switch {
	case c.ID != stored.ID:
		return &domain.ImmutableFieldError{Entity: "coupon", Field: "id"}
	case !c.StartDate.Equal(stored.StartDate):
		return &domain.ImmutableFieldError{Entity: "coupon", Field: "startDate"}
	case c.Amount != stored.Amount:
		return &domain.ImmutableFieldError{Entity: "coupon", Field: "amount"}
	case c.Type != stored.Type:
		return &domain.ImmutableFieldError{Entity: "coupon", Field: "type"}
	case c.Message != stored.Message:
		return &domain.ImmutableFieldError{Entity: "coupon", Field: "message"}
	case c.Image != stored.Image:
		return &domain.ImmutableFieldError{Entity: "coupon", Field: "image"}
	}
	return nil
}

// CouponPurchase evaluates the purchase protocol in its fixed order:
// existence, then prior purchase by this customer, then stock, then
// expiry against wall-clock now. The stock check deliberately precedes
// the expiry check — an expired, sold-out coupon reports OutOfStock.
func CouponPurchase(c *model.Coupon, alreadyPurchased bool, now time.Time) error {
	if c == nil {
		return domain.ErrNotFound
	}
	if alreadyPurchased {
		return domain.ErrAlreadyPurchased
	}
	if c.Amount <= 0 {
		return domain.ErrOutOfStock
	}
	if c.Expired(now) {
		return domain.ErrExpired
	}
	return nil
}

// Delete rejects removal of an entity that does not exist. For coupons
// the existence fact is scoped to the owning company by the caller.
func Delete(exists bool) error {
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}
