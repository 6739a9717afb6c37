package facade

import (
	"context"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/guard"
	"github.com/alzablotsky/coupon-system/internal/model"
	"github.com/alzablotsky/coupon-system/internal/pool"
	"github.com/alzablotsky/coupon-system/internal/utils"
)

// AdminFacade manages companies and customers. Only an admin session
// holds one.
type AdminFacade struct {
	session    *model.Session
	pool       *pool.Pool
	companies  CompanyStore
	customers  CustomerStore
	bcryptCost int
}

// Session returns the admin principal backing this facade.
func (f *AdminFacade) Session() *model.Session { return f.session }

// CreateCompany registers a new company after the uniqueness checks
// pass. The plain password is hashed here; the entity's id is populated
// by the store on insert.
func (f *AdminFacade) CreateCompany(ctx context.Context, c *model.Company, password string) error {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer f.pool.Release(h)

	idExists, err := f.companies.Exists(ctx, c.ID)
	if err != nil {
		return err
	}
	nameExists, err := f.companies.ExistsByName(ctx, c.Name)
	if err != nil {
		return err
	}
	if err := guard.CompanyCreate(idExists, nameExists); err != nil {
		return err
	}
	hash, err := utils.HashPassword(password, f.bcryptCost)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	return f.companies.Save(ctx, c)
}

// UpdateCompany overwrites a stored company. The name is immutable;
// the guard compares it against the stored snapshot.
func (f *AdminFacade) UpdateCompany(ctx context.Context, c *model.Company) error {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer f.pool.Release(h)

	stored, err := f.companies.FindByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := guard.CompanyUpdate(c, stored); err != nil {
		return err
	}
	if c.PasswordHash == "" {
		c.PasswordHash = stored.PasswordHash
	}
	return f.companies.Save(ctx, c)
}

// RemoveCompany deletes a company and, through the store, its coupons
// and their purchase records.
func (f *AdminFacade) RemoveCompany(ctx context.Context, id uint64) error {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer f.pool.Release(h)

	exists, err := f.companies.Exists(ctx, id)
	if err != nil {
		return err
	}
	if err := guard.Delete(exists); err != nil {
		return err
	}
	return f.companies.Delete(ctx, id)
}

// GetCompany fetches a single company by id.
func (f *AdminFacade) GetCompany(ctx context.Context, id uint64) (*model.Company, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	c, err := f.companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// GetAllCompanies lists every company; an empty system is NotFound.
func (f *AdminFacade) GetAllCompanies(ctx context.Context) ([]*model.Company, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	out, err := f.companies.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

// CreateCustomer registers a new customer after the uniqueness checks pass.
func (f *AdminFacade) CreateCustomer(ctx context.Context, c *model.Customer, password string) error {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer f.pool.Release(h)

	idExists, err := f.customers.Exists(ctx, c.ID)
	if err != nil {
		return err
	}
	nameExists, err := f.customers.ExistsByName(ctx, c.Name)
	if err != nil {
		return err
	}
	if err := guard.CustomerCreate(idExists, nameExists); err != nil {
		return err
	}
	hash, err := utils.HashPassword(password, f.bcryptCost)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	return f.customers.Save(ctx, c)
}

// UpdateCustomer overwrites a stored customer; the name is immutable.
func (f *AdminFacade) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer f.pool.Release(h)

	stored, err := f.customers.FindByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := guard.CustomerUpdate(c, stored); err != nil {
		return err
	}
	if c.PasswordHash == "" {
		c.PasswordHash = stored.PasswordHash
	}
	return f.customers.Save(ctx, c)
}

// RemoveCustomer deletes a customer and their purchase records.
func (f *AdminFacade) RemoveCustomer(ctx context.Context, id uint64) error {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer f.pool.Release(h)

	exists, err := f.customers.Exists(ctx, id)
	if err != nil {
		return err
	}
	if err := guard.Delete(exists); err != nil {
		return err
	}
	return f.customers.Delete(ctx, id)
}

// GetCustomer fetches a single customer by id.
func (f *AdminFacade) GetCustomer(ctx context.Context, id uint64) (*model.Customer, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	c, err := f.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// GetAllCustomers lists every customer; an empty system is NotFound.
func (f *AdminFacade) GetAllCustomers(ctx context.Context) ([]*model.Customer, error) {
	h, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer f.pool.Release(h)

	out, err := f.customers.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}
