package facade

import (
	"context"
	"time"

	"github.com/alzablotsky/coupon-system/internal/model"
)

// The facades consume persistence through these narrow contracts and
// assume each call is a durable, atomic single-record operation. Find
// methods return (nil, nil) when no row matches, so guards receive the
// stored snapshot or its absence without error plumbing; list methods
// return an empty slice. The MySQL implementations live in
// internal/repository; tests substitute in-memory fakes.

// CompanyStore persists companies.
type CompanyStore interface {
	Exists(ctx context.Context, id uint64) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindByID(ctx context.Context, id uint64) (*model.Company, error)
	FindByName(ctx context.Context, name string) (*model.Company, error)
	FindAll(ctx context.Context) ([]*model.Company, error)
	// Save inserts when the id is new (populating a zero id) and
	// overwrites the stored record otherwise.
	Save(ctx context.Context, c *model.Company) error
	// Delete removes the company together with its coupons and their
	// purchase records, atomically.
	Delete(ctx context.Context, id uint64) error
}

// CustomerStore persists customers.
type CustomerStore interface {
	Exists(ctx context.Context, id uint64) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindByID(ctx context.Context, id uint64) (*model.Customer, error)
	FindByName(ctx context.Context, name string) (*model.Customer, error)
	FindAll(ctx context.Context) ([]*model.Customer, error)
	Save(ctx context.Context, c *model.Customer) error
	// Delete removes the customer and their purchase records.
	Delete(ctx context.Context, id uint64) error
}

// CouponStore persists coupons and the (customer, coupon) purchase
// relation. Company-scoped methods never see another company's coupons.
type CouponStore interface {
	Exists(ctx context.Context, id uint64) (bool, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	ExistsByIDAndCompany(ctx context.Context, id, companyID uint64) (bool, error)
	FindByID(ctx context.Context, id uint64) (*model.Coupon, error)
	FindByIDAndCompany(ctx context.Context, id, companyID uint64) (*model.Coupon, error)
	FindByTitleAndCompany(ctx context.Context, title string, companyID uint64) (*model.Coupon, error)
	FindByCompany(ctx context.Context, companyID uint64) ([]*model.Coupon, error)
	FindByTypeAndCompany(ctx context.Context, t model.CouponType, companyID uint64) ([]*model.Coupon, error)
	FindByMaxPriceAndCompany(ctx context.Context, price float64, companyID uint64) ([]*model.Coupon, error)
	FindByMaxEndDateAndCompany(ctx context.Context, end time.Time, companyID uint64) ([]*model.Coupon, error)
	FindAll(ctx context.Context) ([]*model.Coupon, error)
	Save(ctx context.Context, c *model.Coupon) error
	DeleteByIDAndCompany(ctx context.Context, id, companyID uint64) error
	Delete(ctx context.Context, id uint64) error

	HasPurchase(ctx context.Context, customerID, couponID uint64) (bool, error)
	// RecordPurchase links the customer to the coupon and decrements the
	// stock by one, as a single atomic write. Implementations must fail
	// with domain.ErrAlreadyPurchased on a duplicate pair and
	// domain.ErrOutOfStock when the amount is already zero, so a racing
	// writer cannot drive the amount negative.
	RecordPurchase(ctx context.Context, customerID, couponID uint64) error
	FindPurchasedByCustomer(ctx context.Context, customerID uint64) ([]*model.Coupon, error)
	FindPurchasedByType(ctx context.Context, customerID uint64, t model.CouponType) ([]*model.Coupon, error)
	FindPurchasedByMaxPrice(ctx context.Context, customerID uint64, price float64) ([]*model.Coupon, error)
}
