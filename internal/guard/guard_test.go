package guard

import (
	"errors"
	"testing"
	"time"

	"github.com/alzablotsky/coupon-system/internal/domain"
	"github.com/alzablotsky/coupon-system/internal/model"
)

var (
	start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
)

func baseCoupon() *model.Coupon {
	return &model.Coupon{
		ID:        7,
		CompanyID: 1,
		Title:     "Free camping",
		StartDate: start,
		EndDate:   end,
		Amount:    2,
		Type:      model.TypeCamping,
		Message:   "one free night",
		Price:     49.90,
		Image:     "camping.png",
	}
}

func TestCreateGuards(t *testing.T) {
	cases := []struct {
		name               string
		idExists, keyTaken bool
		want               error
	}{
		{"fresh", false, false, nil},
		{"id exists", true, false, domain.ErrDuplicateKey},
		{"natural key exists", false, true, domain.ErrDuplicateKey},
		{"both exist", true, true, domain.ErrDuplicateKey},
	}
	for _, tc := range cases {
		if got := CompanyCreate(tc.idExists, tc.keyTaken); !errors.Is(got, tc.want) {
			t.Errorf("CompanyCreate(%s) = %v, want %v", tc.name, got, tc.want)
		}
		if got := CustomerCreate(tc.idExists, tc.keyTaken); !errors.Is(got, tc.want) {
			t.Errorf("CustomerCreate(%s) = %v, want %v", tc.name, got, tc.want)
		}
		if got := CouponCreate(tc.idExists, tc.keyTaken); !errors.Is(got, tc.want) {
			t.Errorf("CouponCreate(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCouponUpdateImmutableFields(t *testing.T) {
	stored := baseCoupon()

	cases := []struct {
		field  string
		mutate func(*model.Coupon)
	}{
		{"id", func(c *model.Coupon) { c.ID = 99 }},
		{"startDate", func(c *model.Coupon) { c.StartDate = c.StartDate.AddDate(0, 1, 0) }},
		{"amount", func(c *model.Coupon) { c.Amount++ }},
		{"type", func(c *model.Coupon) { c.Type = model.TypeFood }},
		{"message", func(c *model.Coupon) { c.Message = "changed" }},
		{"image", func(c *model.Coupon) { c.Image = "other.png" }},
	}
	for _, tc := range cases {
		c := baseCoupon()
		tc.mutate(c)
		err := CouponUpdate(c, stored)
		var ife *domain.ImmutableFieldError
		if !errors.As(err, &ife) {
			t.Fatalf("update touching %s: got %v, want ImmutableFieldError", tc.field, err)
		}
		if ife.Field != tc.field {
			t.Errorf("update touching %s named field %q", tc.field, ife.Field)
		}
		if !errors.Is(err, domain.ErrImmutableField) {
			t.Errorf("update touching %s: errors.Is(ErrImmutableField) = false", tc.field)
		}
	}
}

func TestCouponUpdateMutableFields(t *testing.T) {
	stored := baseCoupon()
	c := baseCoupon()
	c.Price = 19.90
	c.EndDate = end.AddDate(1, 0, 0)
	if err := CouponUpdate(c, stored); err != nil {
		t.Fatalf("update of price/endDate rejected: %v", err)
	}
}

func TestCouponUpdateComparisonOrder(t *testing.T) {
	// Several fields differ: the first in the fixed order must be named.
	stored := baseCoupon()
	c := baseCoupon()
	c.Amount++
	c.Message = "changed"
	c.Image = "other.png"
	var ife *domain.ImmutableFieldError
	if err := CouponUpdate(c, stored); !errors.As(err, &ife) || ife.Field != "amount" {
		t.Fatalf("got %v, want violation naming amount", err)
	}
}

func TestCouponUpdateNotFound(t *testing.T) {
	if err := CouponUpdate(baseCoupon(), nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing snapshot: got %v, want ErrNotFound", err)
	}
}

func TestCompanyAndCustomerUpdate(t *testing.T) {
	co := &model.Company{ID: 1, Name: "TEVA"}
	if err := CompanyUpdate(&model.Company{ID: 1, Name: "TEVA", Email: "new@teva.example"}, co); err != nil {
		t.Fatalf("email change rejected: %v", err)
	}
	err := CompanyUpdate(&model.Company{ID: 1, Name: "Renamed"}, co)
	var ife *domain.ImmutableFieldError
	if !errors.As(err, &ife) || ife.Field != "name" {
		t.Fatalf("company rename: got %v, want violation naming name", err)
	}
	if err := CompanyUpdate(co, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing company: got %v, want ErrNotFound", err)
	}

	cu := &model.Customer{ID: 2, Name: "Avi"}
	if err := CustomerUpdate(&model.Customer{ID: 2, Name: "Benny"}, cu); !errors.As(err, &ife) || ife.Field != "name" {
		t.Fatalf("customer rename: got %v, want violation naming name", err)
	}
}

func TestPurchaseOrder(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	expiredAndEmpty := baseCoupon()
	expiredAndEmpty.Amount = 0
	expiredAndEmpty.EndDate = now.AddDate(0, -1, 0)

	cases := []struct {
		name    string
		c       *model.Coupon
		already bool
		want    error
	}{
		{"missing coupon", nil, false, domain.ErrNotFound},
		{"already purchased wins over stock", expiredAndEmpty, true, domain.ErrAlreadyPurchased},
		{"stock wins over expiry", expiredAndEmpty, false, domain.ErrOutOfStock},
		{"expired", func() *model.Coupon {
			c := baseCoupon()
			c.EndDate = now.AddDate(0, 0, -1)
			return c
		}(), false, domain.ErrExpired},
		{"ok", baseCoupon(), false, nil},
	}
	for _, tc := range cases {
		if got := CouponPurchase(tc.c, tc.already, now); !errors.Is(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestExpiryIsStrict(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	c := baseCoupon()
	c.EndDate = now // endDate == now is not expired; only endDate < now is
	if err := CouponPurchase(c, false, now); err != nil {
		t.Fatalf("endDate == now rejected: %v", err)
	}
}

func TestDelete(t *testing.T) {
	if err := Delete(true); err != nil {
		t.Fatalf("existing target rejected: %v", err)
	}
	if err := Delete(false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing target: got %v, want ErrNotFound", err)
	}
}
