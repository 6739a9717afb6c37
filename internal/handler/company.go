package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/alzablotsky/coupon-system/internal/facade"
	"github.com/alzablotsky/coupon-system/internal/model"
)

// CompanyHandler exposes the coupon operations of the logged-in
// company. Each request resumes the session facade from the bearer
// identity so queries stay scoped to that company's coupons.
type CompanyHandler struct {
	System *facade.System
}

func NewCompanyHandler(sys *facade.System) *CompanyHandler {
	return &CompanyHandler{System: sys}
}

// ----- DTOs -----

type couponReq struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Amount    int       `json:"amount"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
}

type couponResp struct {
	ID        uint64    `json:"id"`
	CompanyID uint64    `json:"company_id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Amount    int       `json:"amount"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCouponResp(c *model.Coupon) couponResp {
	return couponResp{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Title:     c.Title,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		Amount:    c.Amount,
		Type:      string(c.Type),
		Message:   c.Message,
		Price:     c.Price,
		Image:     c.Image,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCouponList(coupons []*model.Coupon) []couponResp {
	out := make([]couponResp, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, toCouponResp(c))
	}
	return out
}

func (req *couponReq) toModel() (*model.Coupon, error) {
	t, err := model.ParseCouponType(req.Type)
	if err != nil {
		return nil, err
	}
	return &model.Coupon{
		ID:        req.ID,
		Title:     strings.TrimSpace(req.Title),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Amount:    req.Amount,
		Type:      t,
		Message:   req.Message,
		Price:     req.Price,
		Image:     req.Image,
	}, nil
}

func (h *CompanyHandler) resume(c echo.Context) (*facade.CompanyFacade, error) {
	id, ok := principalID(c)
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	return h.System.CompanyByID(c.Request().Context(), id)
}

// CreateCoupon issues a new coupon owned by the session company.
func (h *CompanyHandler) CreateCoupon(c echo.Context) error {
	f, err := h.resume(c)
	if err != nil {
		return writeDomainError(c, err)
	}
	var req couponReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	coupon, err := req.toModel()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if coupon.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := f.CreateCoupon(ctx, coupon); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toCouponResp(coupon))
}

// UpdateCoupon replaces a stored coupon. Only price and end_date may
// change; the domain guard rejects everything else with a 422.
func (h *CompanyHandler) UpdateCoupon(c echo.Context) error {
	f, err := h.resume(c)
	if err != nil {
		return writeDomainError(c, err)
	}
	var req couponReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	coupon, err := req.toModel()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := f.UpdateCoupon(ctx, coupon); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toCouponResp(coupon))
}

// DeleteCoupon removes one of the session company's coupons.
func (h *CompanyHandler) DeleteCoupon(c echo.Context) error {
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

	if err := f.RemoveCoupon(ctx, id); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCoupon fetches one of the session company's coupons.
func (h *CompanyHandler) GetCoupon(c echo.Context) error {
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

	coupon, err := f.GetCoupon(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toCouponResp(coupon))
}

// ListCoupons lists the session company's coupons, optionally filtered
// by ?type=, ?max_price= or ?max_end_date= (RFC 3339).
func (h *CompanyHandler) ListCoupons(c echo.Context) error {
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
		coupons, err := f.GetCouponsByType(ctx, t)
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
		coupons, err := f.GetCouponsByPrice(ctx, price)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, toCouponList(coupons))
	}
	if v := c.QueryParam("max_end_date"); v != "" {
		end, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_end_date"})
		}
		coupons, err := f.GetCouponsByEndDate(ctx, end)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, toCouponList(coupons))
	}

	coupons, err := f.GetAllCoupons(ctx)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toCouponList(coupons))
}
