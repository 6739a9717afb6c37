package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/alzablotsky/coupon-system/internal/facade"
	"github.com/alzablotsky/coupon-system/internal/model"
	"github.com/alzablotsky/coupon-system/internal/queue"
	queue_publisher "github.com/alzablotsky/coupon-system/internal/service"
)

// CustomerHandler exposes the purchase protocol and the logged-in
// customer's purchase history.
type CustomerHandler struct {
	System *facade.System
}

func NewCustomerHandler(sys *facade.System) *CustomerHandler {
	return &CustomerHandler{System: sys}
}

func (h *CustomerHandler) resume(c echo.Context) (*facade.CustomerFacade, error) {
	id, ok := principalID(c)
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	return h.System.CustomerByID(c.Request().Context(), id)
}

// PurchaseCoupon runs the purchase protocol for the coupon in the path.
// On success a CouponPurchasedEvent is published asynchronously; a
// broker outage never fails the purchase itself.
func (h *CustomerHandler) PurchaseCoupon(c echo.Context) error {
	f, err := h.resume(c)
	if err != nil {
		return writeDomainError(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	coupon, err := f.PurchaseCoupon(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}

	customer := f.Session().Customer
	ev := queue.CouponPurchasedEvent{
		CouponID:        coupon.ID,
		CouponTitle:     coupon.Title,
		CouponType:      string(coupon.Type),
		CompanyID:       coupon.CompanyID,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		Price:           coupon.Price,
		RemainingAmount: coupon.Amount,
		PurchasedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishCouponPurchased(pubCtx, ev)
	}()

	return c.JSON(http.StatusCreated, toCouponResp(coupon))
}

// ListPurchasedCoupons lists the session customer's purchases,
// optionally filtered by ?type= or ?max_price=.
func (h *CustomerHandler) ListPurchasedCoupons(c echo.Context) error {
	f, err := h.resume(c)
	if err != nil {
		return writeDomainError(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if v := c.QueryParam("type"); v != "" {
		t, err := model.ParseCouponType(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		coupons, err := f.GetPurchasedCouponsByType(ctx, t)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, toCouponList(coupons))
	}
	if v := c.QueryParam("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_price"})
		}
		coupons, err := f.GetPurchasedCouponsByPrice(ctx, price)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, toCouponList(coupons))
	}

	coupons, err := f.GetAllPurchasedCoupons(ctx)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toCouponList(coupons))
}
