// Package queue defines message payloads exchanged over the message broker.
package queue

// CouponPurchasedEvent is published when a customer completes a purchase.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type CouponPurchasedEvent struct {
    CouponID        uint64  `json:"coupon_id"`
    CouponTitle     string  `json:"coupon_title"`
    CouponType      string  `json:"coupon_type"`
    CompanyID       uint64  `json:"company_id"`
    CustomerID      uint64  `json:"customer_id"`
    CustomerName    string  `json:"customer_name"`
    Price           float64 `json:"price"`
    RemainingAmount int     `json:"remaining_amount"`
    PurchasedAt     string  `json:"purchased_at"`
}
