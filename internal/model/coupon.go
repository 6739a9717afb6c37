package model

import (
	"fmt"
	"strings"
	"time"
)

// CouponType enumerates the categories a coupon can belong to.
type CouponType string

const (
	TypeRestaurants CouponType = "RESTAURANTS"
	TypeElectricity CouponType = "ELECTRICITY"
	TypeFood        CouponType = "FOOD"
	TypeHealth      CouponType = "HEALTH"
	TypeSports      CouponType = "SPORTS"
	TypeCamping     CouponType = "CAMPING"
	TypeTravelling  CouponType = "TRAVELLING"
)

// ParseCouponType normalizes and validates a coupon type string.
func ParseCouponType(s string) (CouponType, error) {
	t := CouponType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TypeRestaurants, TypeElectricity, TypeFood, TypeHealth,
		TypeSports, TypeCamping, TypeTravelling:
		return t, nil
	}
	return "", fmt.Errorf("unknown coupon type %q", s)
}

// Coupon represents a row in the `coupons` table. Title is unique
// across the whole system. After creation only Price and EndDate may
// change; every other field is frozen and enforced by the update
// guard. Amount is the remaining stock, decremented by one per
// successful purchase and never below zero.
//
// Fields:
//  ID        – primary key identifier.
//  CompanyID – owning company (coupons.company_id).
//  Title     – globally unique coupon title.
//  StartDate – when the coupon becomes valid, immutable.
//  EndDate   – expiry moment; the sweeper removes coupons past it.
//  Amount    – remaining stock count.
//  Type      – coupon category, immutable.
//  Message   – marketing text, immutable.
//  Price     – current price, mutable.
//  Image     – image reference, immutable.
type Coupon struct {
	ID        uint64     // coupons.id
	CompanyID uint64     // coupons.company_id
	Title     string     // coupons.title
	StartDate time.Time  // coupons.start_date
	EndDate   time.Time  // coupons.end_date
	Amount    int        // coupons.amount
	Type      CouponType // coupons.type
	Message   string     // coupons.message
	Price     float64    // coupons.price
	Image     string     // coupons.image
	CreatedAt time.Time  // coupons.created_at
	UpdatedAt time.Time  // coupons.updated_at
}

// Expired reports whether the coupon's end date is strictly before now.
func (c *Coupon) Expired(now time.Time) bool {
	return c.EndDate.Before(now)
}
