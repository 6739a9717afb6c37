package facade

import (
	"context"
	"time"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/guard"
	"github.com/alzablotsky/coupon-system/internal/model"
	"github.com/alzablotsky/coupon-system/internal/pool"
)

// CompanyFacade operates on the logged-in company's coupons. Every
// query is scoped to the session's company id; another company's
// coupons are invisible through it.
type CompanyFacade struct {
	session *model.Session
	pool    *pool.Pool
	coupons CouponStore
}

// Session returns the company principal backing this facade.
func (f *CompanyFacade) Session() *model.Session { return f.session }

func (f *CompanyFacade) companyID() uint64 { return f.session.Company.ID }

// CreateCoupon issues a new coupon owned by the session company. The
// title must be unique across the whole system, not just per company.
func (f *CompanyFacade) CreateCoupon(ctx context.Context, c *model.Coupon) error {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer f.pool.Release(h)

	c.CompanyID = f.companyID()
	idExists, err := f.coupons.Exists(ctx, c.ID)
	if err != nil {
		return err
	}
	titleExists, err := f.coupons.ExistsByTitle(ctx, c.Title)
	if err != nil {
		return err
	}
	if err := guard.CouponCreate(idExists, titleExists); err != nil {
		return err
	}
	return f.coupons.Save(ctx, c)
}

// UpdateCoupon replaces a stored coupon. The stored snapshot is looked
// up by title within the session company, then compared field by field;
// only price and endDate may differ.
func (f *CompanyFacade) UpdateCoupon(ctx context.Context, c *model.Coupon) error {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer f.pool.Release(h)

	stored, err := f.coupons.FindByTitleAndCompany(ctx, c.Title, f.companyID())
	if err != nil {
		return err
	}
	if err := guard.CouponUpdate(c, stored); err != nil {
		return err
	}
	c.CompanyID = f.companyID()
	return f.coupons.Save(ctx, c)
}

// RemoveCoupon deletes one of the session company's coupons.
func (f *CompanyFacade) RemoveCoupon(ctx context.Context, id uint64) error {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer f.pool.Release(h)

	exists, err := f.coupons.ExistsByIDAndCompany(ctx, id, f.companyID())
	if err != nil {
		return err
	}
	if err := guard.Delete(exists); err != nil {
		return err
	}
	return f.coupons.DeleteByIDAndCompany(ctx, id, f.companyID())
}

// GetCoupon fetches one of the session company's coupons by id.
func (f *CompanyFacade) GetCoupon(ctx context.Context, id uint64) (*model.Coupon, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	c, err := f.coupons.FindByIDAndCompany(ctx, id, f.companyID())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// GetAllCoupons lists the session company's coupons; none is NotFound.
func (f *CompanyFacade) GetAllCoupons(ctx context.Context) ([]*model.Coupon, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	out, err := f.coupons.FindByCompany(ctx, f.companyID())
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// GetCouponsByType lists the session company's coupons of one type.
func (f *CompanyFacade) GetCouponsByType(ctx context.Context, t model.CouponType) ([]*model.Coupon, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	out, err := f.coupons.FindByTypeAndCompany(ctx, t, f.companyID())
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// GetCouponsByPrice lists the session company's coupons priced at or
// under the given price.
func (f *CompanyFacade) GetCouponsByPrice(ctx context.Context, price float64) ([]*model.Coupon, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	out, err := f.coupons.FindByMaxPriceAndCompany(ctx, price, f.companyID())
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// GetCouponsByEndDate lists the session company's coupons ending before
// the given moment.
func (f *CompanyFacade) GetCouponsByEndDate(ctx context.Context, end time.Time) ([]*model.Coupon, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	out, err := f.coupons.FindByMaxEndDateAndCompany(ctx, end, f.companyID())
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}
