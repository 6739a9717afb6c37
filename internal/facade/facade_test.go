package facade_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/facade"
	"github.com/alzablotsky/coupon-system/internal/model"
	"github.com/alzablotsky/coupon-system/internal/pool"
)

// In-memory stores implementing the storage contracts. All methods copy
// on the way in and out so callers cannot mutate stored state directly.

type memDB struct {
	mu        sync.Mutex
	companies map[uint64]*model.Company
	customers map[uint64]*model.Customer
	coupons   map[uint64]*model.Coupon
	purchases map[[2]uint64]bool // {customerID, couponID}
	nextID    uint64
}

func newMemDB() *memDB {
	return &memDB{
		companies: map[uint64]*model.Company{},
		customers: map[uint64]*model.Customer{},
		coupons:   map[uint64]*model.Coupon{},
		purchases: map[[2]uint64]bool{},
	}
}

func (db *memDB) id() uint64 { db.nextID++; return db.nextID }

type memCompanies struct{ db *memDB }

func (s *memCompanies) Exists(_ context.Context, id uint64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.companies[id]
	return ok, nil
}

func (s *memCompanies) ExistsByName(_ context.Context, name string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.companies {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *memCompanies) FindByID(_ context.Context, id uint64) (*model.Company, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memCompanies) FindByName(_ context.Context, name string) (*model.Company, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.companies {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memCompanies) FindAll(_ context.Context) ([]*model.Company, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]*model.Company, 0, len(s.db.companies))
	for _, c := range s.db.companies {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memCompanies) Save(_ context.Context, c *model.Company) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.db.id()
	}
	cp := *c
	s.db.companies[c.ID] = &cp
	return nil
}

func (s *memCompanies) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.companies, id)
	for cid, c := range s.db.coupons {
		if c.CompanyID == id {
			delete(s.db.coupons, cid)
			for pair := range s.db.purchases {
				if pair[1] == cid {
					delete(s.db.purchases, pair)
				}
			}
		}
	}
	return nil
}

type memCustomers struct{ db *memDB }

func (s *memCustomers) Exists(_ context.Context, id uint64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.customers[id]
	return ok, nil
}

func (s *memCustomers) ExistsByName(_ context.Context, name string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.customers {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *memCustomers) FindByID(_ context.Context, id uint64) (*model.Customer, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memCustomers) FindByName(_ context.Context, name string) (*model.Customer, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.customers {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memCustomers) FindAll(_ context.Context) ([]*model.Customer, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]*model.Customer, 0, len(s.db.customers))
	for _, c := range s.db.customers {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memCustomers) Save(_ context.Context, c *model.Customer) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.db.id()
	}
	cp := *c
	s.db.customers[c.ID] = &cp
	return nil
}

func (s *memCustomers) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.customers, id)
	for pair := range s.db.purchases {
		if pair[0] == id {
			delete(s.db.purchases, pair)
		}
	}
	return nil
}

type memCoupons struct{ db *memDB }

func (s *memCoupons) Exists(_ context.Context, id uint64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.coupons[id]
	return ok, nil
}

func (s *memCoupons) ExistsByTitle(_ context.Context, title string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.coupons {
		if c.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (s *memCoupons) ExistsByIDAndCompany(_ context.Context, id, companyID uint64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.coupons[id]
	return ok && c.CompanyID == companyID, nil
}

func (s *memCoupons) FindByID(_ context.Context, id uint64) (*model.Coupon, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.coupons[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memCoupons) FindByIDAndCompany(_ context.Context, id, companyID uint64) (*model.Coupon, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.coupons[id]
	if !ok || c.CompanyID != companyID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memCoupons) FindByTitleAndCompany(_ context.Context, title string, companyID uint64) (*model.Coupon, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.coupons {
		if c.Title == title && c.CompanyID == companyID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memCoupons) filter(keep func(*model.Coupon) bool) []*model.Coupon {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.Coupon
	for _, c := range s.db.coupons {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out
}

func (s *memCoupons) FindByCompany(_ context.Context, companyID uint64) ([]*model.Coupon, error) {
	return s.filter(func(c *model.Coupon) bool { return c.CompanyID == companyID }), nil
}

func (s *memCoupons) FindByTypeAndCompany(_ context.Context, t model.CouponType, companyID uint64) ([]*model.Coupon, error) {
	return s.filter(func(c *model.Coupon) bool { return c.CompanyID == companyID && c.Type == t }), nil
}

func (s *memCoupons) FindByMaxPriceAndCompany(_ context.Context, price float64, companyID uint64) ([]*model.Coupon, error) {
	return s.filter(func(c *model.Coupon) bool { return c.CompanyID == companyID && c.Price <= price }), nil
}

func (s *memCoupons) FindByMaxEndDateAndCompany(_ context.Context, end time.Time, companyID uint64) ([]*model.Coupon, error) {
	return s.filter(func(c *model.Coupon) bool { return c.CompanyID == companyID && c.EndDate.Before(end) }), nil
}

func (s *memCoupons) FindAll(_ context.Context) ([]*model.Coupon, error) {
	return s.filter(func(*model.Coupon) bool { return true }), nil
}

func (s *memCoupons) Save(_ context.Context, c *model.Coupon) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.db.id()
	}
	cp := *c
	s.db.coupons[c.ID] = &cp
	return nil
}

func (s *memCoupons) DeleteByIDAndCompany(_ context.Context, id, companyID uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if c, ok := s.db.coupons[id]; ok && c.CompanyID == companyID {
		delete(s.db.coupons, id)
	}
	return nil
}

func (s *memCoupons) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.coupons, id)
	for pair := range s.db.purchases {
		if pair[1] == id {
			delete(s.db.purchases, pair)
		}
	}
	return nil
}

func (s *memCoupons) HasPurchase(_ context.Context, customerID, couponID uint64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.purchases[[2]uint64{customerID, couponID}], nil
}

func (s *memCoupons) RecordPurchase(_ context.Context, customerID, couponID uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	pair := [2]uint64{customerID, couponID}
	if s.db.purchases[pair] {
		return domain.ErrAlreadyPurchased
	}
	c, ok := s.db.coupons[couponID]
	if !ok || c.Amount <= 0 {
		return domain.ErrOutOfStock
	}
	c.Amount--
	s.db.purchases[pair] = true
	return nil
}

func (s *memCoupons) FindPurchasedByCustomer(_ context.Context, customerID uint64) ([]*model.Coupon, error) {
	return s.filterPurchased(customerID, func(*model.Coupon) bool { return true }), nil
}

func (s *memCoupons) FindPurchasedByType(_ context.Context, customerID uint64, t model.CouponType) ([]*model.Coupon, error) {
	return s.filterPurchased(customerID, func(c *model.Coupon) bool { return c.Type == t }), nil
}

func (s *memCoupons) FindPurchasedByMaxPrice(_ context.Context, customerID uint64, price float64) ([]*model.Coupon, error) {
	return s.filterPurchased(customerID, func(c *model.Coupon) bool { return c.Price <= price }), nil
}

func (s *memCoupons) filterPurchased(customerID uint64, keep func(*model.Coupon) bool) []*model.Coupon {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.Coupon
	for pair := range s.db.purchases {
		if pair[0] != customerID {
			continue
		}
		if c, ok := s.db.coupons[pair[1]]; ok && keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out
}

// ---- helpers ----

func newTestSystem(t *testing.T, capacity int) (*facade.System, *memDB) {
	t.Helper()
	db := newMemDB()
	sys := facade.NewSystem(pool.New(capacity),
		&memCompanies{db: db}, &memCustomers{db: db}, &memCoupons{db: db},
		"admin", "1234", bcrypt.MinCost)
	return sys, db
}

func createCompany(t *testing.T, sys *facade.System, name, password string) *model.Company {
	t.Helper()
	c := &model.Company{Name: name, Email: name + "@example.com"}
	if err := sys.Admin().CreateCompany(context.Background(), c, password); err != nil {
		t.Fatalf("CreateCompany(%s): %v", name, err)
	}
	return c
}

func createCustomer(t *testing.T, sys *facade.System, name, password string) *model.Customer {
	t.Helper()
	c := &model.Customer{Name: name}
	if err := sys.Admin().CreateCustomer(context.Background(), c, password); err != nil {
		t.Fatalf("CreateCustomer(%s): %v", name, err)
	}
	return c
}

// ---- tests ----

func TestCreateCompanyDuplicateName(t *testing.T) {
	sys, db := newTestSystem(t, 2)
	ctx := context.Background()
	createCompany(t, sys, "TEVA", "secret")

	err := sys.Admin().CreateCompany(ctx, &model.Company{Name: "TEVA"}, "other")
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("duplicate create: got %v, want ErrDuplicateKey", err)
	}
	if len(db.companies) != 1 {
		t.Fatalf("duplicate create mutated state: %d companies", len(db.companies))
	}
}

func TestUpdateCompanyImmutableName(t *testing.T) {
	sys, _ := newTestSystem(t, 2)
	ctx := context.Background()
	c := createCompany(t, sys, "TEVA", "secret")

	renamed := *c
	renamed.Name = "TEVA2"
	err := sys.Admin().UpdateCompany(ctx, &renamed)
	var ife *domain.ImmutableFieldError
	if !errors.As(err, &ife) || ife.Field != "name" {
		t.Fatalf("rename: got %v, want violation naming name", err)
	}

	// A change to a mutable field persists.
	updated := *c
	updated.Email = "sales@teva.example"
	if err := sys.Admin().UpdateCompany(ctx, &updated); err != nil {
		t.Fatalf("email update: %v", err)
	}
	got, err := sys.Admin().GetCompany(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCompany: %v", err)
	}
	if got.Email != "sales@teva.example" {
		t.Fatalf("email = %q after update", got.Email)
	}
}

func TestLoginOutcomes(t *testing.T) {
	sys, _ := newTestSystem(t, 2)
	ctx := context.Background()
	createCompany(t, sys, "TEVA", "secret")

	if _, err := sys.LoginCompany(ctx, "NOPE", "secret"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("unknown name: got %v, want ErrUserNotFound", err)
	}
	if _, err := sys.LoginCompany(ctx, "TEVA", "bad"); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("bad password: got %v, want ErrWrongPassword", err)
	}
	if _, err := sys.LoginCompany(ctx, "TEVA", "secret"); err != nil {
		t.Fatalf("good login: %v", err)
	}
	if _, err := sys.LoginAdmin("admin", "1234"); err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if _, err := sys.LoginAdmin("admin", "wrong"); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("admin bad password: got %v, want ErrWrongPassword", err)
	}
}

func TestCouponUpdateOnlyMutableFields(t *testing.T) {
	sys, _ := newTestSystem(t, 2)
	ctx := context.Background()
	createCompany(t, sys, "TEVA", "secret")
	cf, err := sys.LoginCompany(ctx, "TEVA", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	c := &model.Coupon{
		Title:     "Free camping",
		StartDate: time.Now().UTC(),
		EndDate:   time.Now().UTC().AddDate(1, 0, 0),
		Amount:    2,
		Type:      model.TypeCamping,
		Message:   "one free night",
		Price:     50,
		Image:     "camping.png",
	}
	if err := cf.CreateCoupon(ctx, c); err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	bad := *c
	bad.Amount = 100
	err = cf.UpdateCoupon(ctx, &bad)
	var ife *domain.ImmutableFieldError
	if !errors.As(err, &ife) || ife.Field != "amount" {
		t.Fatalf("amount change: got %v, want violation naming amount", err)
	}

	ok := *c
	ok.Price = 25
	if err := cf.UpdateCoupon(ctx, &ok); err != nil {
		t.Fatalf("price update: %v", err)
	}
	got, err := cf.GetCoupon(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCoupon: %v", err)
	}
	if got.Price != 25 {
		t.Fatalf("price = %v after update, want 25", got.Price)
	}
}

func TestCompanyScoping(t *testing.T) {
	sys, _ := newTestSystem(t, 2)
	ctx := context.Background()
	createCompany(t, sys, "TEVA", "secret")
	createCompany(t, sys, "OSEM", "secret")

	teva, _ := sys.LoginCompany(ctx, "TEVA", "secret")
	osem, _ := sys.LoginCompany(ctx, "OSEM", "secret")

	c := &model.Coupon{Title: "Teva only", StartDate: time.Now(), EndDate: time.Now().AddDate(1, 0, 0),
		Amount: 1, Type: model.TypeHealth, Message: "m", Price: 5, Image: "i"}
	if err := teva.CreateCoupon(ctx, c); err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	if _, err := osem.GetCoupon(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-company get: got %v, want ErrNotFound", err)
	}
	if err := osem.RemoveCoupon(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-company remove: got %v, want ErrNotFound", err)
	}
	if _, err := teva.GetCoupon(ctx, c.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
}

func TestPurchaseFlow(t *testing.T) {
	sys, db := newTestSystem(t, 2)
	ctx := context.Background()
	createCompany(t, sys, "TEVA", "secret")
	avi := createCustomer(t, sys, "Avi", "pw")

	teva, _ := sys.LoginCompany(ctx, "TEVA", "secret")
	c := &model.Coupon{Title: "Free camping", StartDate: time.Now(), EndDate: time.Now().AddDate(1, 0, 0),
		Amount: 3, Type: model.TypeCamping, Message: "m", Price: 50, Image: "i"}
	if err := teva.CreateCoupon(ctx, c); err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	cust, err := sys.LoginCustomer(ctx, "Avi", "pw")
	if err != nil {
		t.Fatalf("customer login: %v", err)
	}
	got, err := cust.PurchaseCoupon(ctx, c.ID)
	if err != nil {
		t.Fatalf("PurchaseCoupon: %v", err)
	}
	if got.Amount != 2 {
		t.Fatalf("amount = %d after purchase, want 2", got.Amount)
	}
	if !db.purchases[[2]uint64{avi.ID, c.ID}] {
		t.Fatal("purchase record missing")
	}

	if _, err := cust.PurchaseCoupon(ctx, c.ID); !errors.Is(err, domain.ErrAlreadyPurchased) {
		t.Fatalf("second purchase: got %v, want ErrAlreadyPurchased", err)
	}
	if db.coupons[c.ID].Amount != 2 {
		t.Fatalf("amount = %d after rejected purchase, want 2", db.coupons[c.ID].Amount)
	}

	purchased, err := cust.GetAllPurchasedCoupons(ctx)
	if err != nil || len(purchased) != 1 {
		t.Fatalf("GetAllPurchasedCoupons = %v, %v; want one coupon", purchased, err)
	}
}

func TestPurchaseStockCheckPrecedesExpiry(t *testing.T) {
	sys, _ := newTestSystem(t, 2)
	ctx := context.Background()
	createCompany(t, sys, "TEVA", "secret")
	createCustomer(t, sys, "Avi", "pw")

	teva, _ := sys.LoginCompany(ctx, "TEVA", "secret")
	c := &model.Coupon{Title: "Stale", StartDate: time.Now().AddDate(-1, 0, 0), EndDate: time.Now().AddDate(0, 0, -1),
		Amount: 0, Type: model.TypeFood, Message: "m", Price: 5, Image: "i"}
	if err := teva.CreateCoupon(ctx, c); err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	cust, _ := sys.LoginCustomer(ctx, "Avi", "pw")
	if _, err := cust.PurchaseCoupon(ctx, c.ID); !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("sold-out expired coupon: got %v, want ErrOutOfStock", err)
	}
}

func TestPoolReleasedOnEveryPath(t *testing.T) {
	// Capacity 1: any leaked handle would deadlock the next operation.
	sys, _ := newTestSystem(t, 1)
	ctx := context.Background()
	createCompany(t, sys, "TEVA", "secret")

	if err := sys.Admin().CreateCompany(ctx, &model.Company{Name: "TEVA"}, "x"); !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected duplicate violation, got %v", err)
	}
	if _, err := sys.Admin().GetCompany(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	// Success path after two error paths proves both released the handle.
	if _, err := sys.LoginCompany(ctx, "TEVA", "secret"); err != nil {
		t.Fatalf("login after violations: %v", err)
	}
	if got := sys.Pool().Available(); got != 1 {
		t.Fatalf("available = %d, want 1", got)
	}
}

func TestCancelledCallerGetsInterrupted(t *testing.T) {
	sys, _ := newTestSystem(t, 1)
	h, err := sys.Pool().Acquire(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	defer sys.Pool().Release(h)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := sys.Admin().GetAllCompanies(ctx); !errors.Is(err, domain.ErrInterrupted) {
		t.Fatalf("blocked op: got %v, want ErrInterrupted", err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	sys, db := newTestSystem(t, 5)
	ctx := context.Background()

	createCompany(t, sys, "TEVA", "secret")
	avi := createCustomer(t, sys, "Avi", "pw")

	teva, err := sys.LoginCompany(ctx, "TEVA", "secret")
	if err != nil {
		t.Fatalf("TEVA login: %v", err)
	}
	c := &model.Coupon{Title: "Free camping", StartDate: time.Now(), EndDate: time.Now().AddDate(1, 0, 0),
		Amount: 2, Type: model.TypeCamping, Message: "free night", Price: 49.9, Image: "camp.png"}
	if err := teva.CreateCoupon(ctx, c); err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}
	if ok, _ := (&memCoupons{db: db}).ExistsByTitle(ctx, "Free camping"); !ok {
		t.Fatal("coupon title not stored")
	}

	cust, err := sys.LoginCustomer(ctx, "Avi", "pw")
	if err != nil {
		t.Fatalf("Avi login: %v", err)
	}
	if _, err := cust.PurchaseCoupon(ctx, c.ID); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if db.coupons[c.ID].Amount != 1 {
		t.Fatalf("amount = %d, want 1", db.coupons[c.ID].Amount)
	}
	if !db.purchases[[2]uint64{avi.ID, c.ID}] {
		t.Fatal("purchase record missing")
	}

	if _, err := cust.PurchaseCoupon(ctx, c.ID); !errors.Is(err, domain.ErrAlreadyPurchased) {
		t.Fatalf("repeat purchase: got %v, want ErrAlreadyPurchased", err)
	}
	if db.coupons[c.ID].Amount != 1 {
		t.Fatalf("amount = %d after repeat, want 1", db.coupons[c.ID].Amount)
	}
}
