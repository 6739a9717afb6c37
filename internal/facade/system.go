// Package facade contains the orchestration layer of the coupon system.
// Every public operation follows one shape: acquire a handle from the
// bounded pool, run the guard checks against storage reads, perform the
// write (or nothing, on a violation), and release the handle on every
// exit path. A missed release would permanently shrink pool capacity,
// so each operation releases via defer immediately after a successful
// acquire.
package facade

import (
	"context"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/model"
	"github.com/alzablotsky/coupon-system/internal/pool"
	"github.com/alzablotsky/coupon-system/internal/utils"
)

// System is the entry point to the coupon system. It owns the resource
// pool and the storage gateways and hands out per-session facades at
// login. It replaces the process-wide singletons of older designs: the
// pool is injected, and each facade carries its own session principal.
type System struct {
	pool       *pool.Pool
	companies  CompanyStore
	customers  CustomerStore
	coupons    CouponStore
	adminName  string
	adminPass  string
	bcryptCost int
}

// NewSystem wires a System from its collaborators. Admin credentials
// come from configuration; the admin is not a stored entity.
func NewSystem(p *pool.Pool, companies CompanyStore, customers CustomerStore, coupons CouponStore,
	adminName, adminPass string, bcryptCost int) *System {
	return &System{
		pool:       p,
		companies:  companies,
		customers:  customers,
		coupons:    coupons,
		adminName:  adminName,
		adminPass:  adminPass,
		bcryptCost: bcryptCost,
	}
}

// Login authenticates a principal of the given client type and returns
// a facade scoped to it. Unknown names yield domain.ErrUserNotFound and
// bad passwords domain.ErrWrongPassword; the distinction matches what
// callers report to users.
func (s *System) Login(ctx context.Context, name, password string, kind model.ClientType) (any, error) {
	switch kind {
	case model.ClientAdmin:
		return s.LoginAdmin(name, password)
	case model.ClientCompany:
		return s.LoginCompany(ctx, name, password)
	case model.ClientCustomer:
		return s.LoginCustomer(ctx, name, password)
	}
	return nil, domain.ErrUserNotFound
}

// LoginAdmin checks the configured admin credentials.
func (s *System) LoginAdmin(name, password string) (*AdminFacade, error) {
	if name != s.adminName {
		return nil, domain.ErrUserNotFound
	}
	if password != s.adminPass {
		return nil, domain.ErrWrongPassword
	}
	return s.Admin(), nil
}

// LoginCompany authenticates a company by name and password.
func (s *System) LoginCompany(ctx context.Context, name, password string) (*CompanyFacade, error) {
	h, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(h)

	c, err := s.companies.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrUserNotFound
	}
	if !utils.VerifyPassword(c.PasswordHash, password) {
		return nil, domain.ErrWrongPassword
	}
	return s.Company(c), nil
}

// LoginCustomer authenticates a customer by name and password.
func (s *System) LoginCustomer(ctx context.Context, name, password string) (*CustomerFacade, error) {
	h, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(h)

	c, err := s.customers.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrUserNotFound
	}
	if !utils.VerifyPassword(c.PasswordHash, password) {
		return nil, domain.ErrWrongPassword
	}
	return s.Customer(c), nil
}

// Admin returns a facade for an already-authenticated admin session,
// e.g. one resumed from a verified token.
func (s *System) Admin() *AdminFacade {
	return &AdminFacade{
		session:    &model.Session{Type: model.ClientAdmin},
		pool:       s.pool,
		companies:  s.companies,
		customers:  s.customers,
		bcryptCost: s.bcryptCost,
	}
}

// Company returns a facade scoped to the given company principal.
func (s *System) Company(c *model.Company) *CompanyFacade {
	return &CompanyFacade{
		session: &model.Session{Type: model.ClientCompany, Company: c},
		pool:    s.pool,
		coupons: s.coupons,
	}
}

// Customer returns a facade scoped to the given customer principal.
func (s *System) Customer(c *model.Customer) *CustomerFacade {
	return &CustomerFacade{
		session: &model.Session{Type: model.ClientCustomer, Customer: c},
		pool:    s.pool,
		coupons: s.coupons,
	}
}

// CompanyByID resumes a company session from a stored id, as when a
// request arrives with a valid token. Missing ids yield ErrUserNotFound.
func (s *System) CompanyByID(ctx context.Context, id uint64) (*CompanyFacade, error) {
	h, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(h)

	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.Company(c), nil
}

// CustomerByID resumes a customer session from a stored id.
func (s *System) CustomerByID(ctx context.Context, id uint64) (*CustomerFacade, error) {
	h, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(h)

	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.Customer(c), nil
}

// Coupons exposes the coupon store for collaborators that drive the
// same storage path, such as the expiration sweeper.
func (s *System) Coupons() CouponStore { return s.coupons }

// Pool exposes the resource pool for collaborators and shutdown.
func (s *System) Pool() *pool.Pool { return s.pool }

// Shutdown closes the pool for new work. Handles already held by
// in-flight operations stay valid; their release is discarded.
func (s *System) Shutdown() {
	s.pool.CloseAll()
}
