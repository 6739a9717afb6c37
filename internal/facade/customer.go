package facade

import (
	"context"
	"time"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/guard"
	"github.com/alzablotsky/coupon-system/internal/model"
	"github.com/alzablotsky/coupon-system/internal/pool"
)

// CustomerFacade operates on behalf of the logged-in customer: the
// purchase protocol and queries over their purchased coupons.
type CustomerFacade struct {
	session *model.Session
	pool    *pool.Pool
	coupons CouponStore
}

// Session returns the customer principal backing this facade.
func (f *CustomerFacade) Session() *model.Session { return f.session }

func (f *CustomerFacade) customerID() uint64 { return f.session.Customer.ID }

// PurchaseCoupon runs the multi-condition purchase protocol. The guard
// checks fire in their fixed order — existence, prior purchase, stock,
// expiry — against wall-clock time at the moment of the check. On
// success the store links the customer to the coupon and decrements the
// stock by one as a single atomic write, so the decrement and the
// purchase record cannot diverge. The updated coupon is returned.
func (f *CustomerFacade) PurchaseCoupon(ctx context.Context, couponID uint64) (*model.Coupon, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	c, err := f.coupons.FindByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	already := false
	if c != nil {
		already, err = f.coupons.HasPurchase(ctx, f.customerID(), couponID)
		if err != nil {
			return nil, err
		}
	}
	if err := guard.CouponPurchase(c, already, time.Now()); err != nil {
		return nil, err
	}
	if err := f.coupons.RecordPurchase(ctx, f.customerID(), couponID); err != nil {
		return nil, err
	}
	c.Amount--
	return c, nil
}

// GetAllPurchasedCoupons lists the coupons this customer has purchased;
// none is NotFound.
func (f *CustomerFacade) GetAllPurchasedCoupons(ctx context.Context) ([]*model.Coupon, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	out, err := f.coupons.FindPurchasedByCustomer(ctx, f.customerID())
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// GetPurchasedCouponsByType lists this customer's purchases of one type.
func (f *CustomerFacade) GetPurchasedCouponsByType(ctx context.Context, t model.CouponType) ([]*model.Coupon, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	out, err := f.coupons.FindPurchasedByType(ctx, f.customerID(), t)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// GetPurchasedCouponsByPrice lists this customer's purchases priced at
// or under the given price.
func (f *CustomerFacade) GetPurchasedCouponsByPrice(ctx context.Context, price float64) ([]*model.Coupon, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	out, err := f.coupons.FindPurchasedByMaxPrice(ctx, f.customerID(), price)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}
