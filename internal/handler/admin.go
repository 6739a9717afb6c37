package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/alzablotsky/coupon-system/internal/facade"
	"github.com/alzablotsky/coupon-system/internal/model"
)

// AdminHandler exposes company and customer administration. The role
// middleware guarantees only ADMIN sessions reach these endpoints, so
// the facade is resumed unconditionally.
type AdminHandler struct {
	System *facade.System
}

func NewAdminHandler(sys *facade.System) *AdminHandler {
	return &AdminHandler{System: sys}
}

// ----- DTOs -----

type companyReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type companyResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCompanyResp(c *model.Company) companyResp {
	return companyResp{ID: c.ID, Name: c.Name, Email: c.Email, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

type customerReq struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}
type customerResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCustomerResp(c *model.Customer) customerResp {
	return customerResp{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 10*time.Second)
}

// CreateCompany registers a new company.
func (h *AdminHandler) CreateCompany(c echo.Context) error {
	var req companyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	company := &model.Company{Name: req.Name, Email: strings.TrimSpace(req.Email)}
	if err := h.System.Admin().CreateCompany(ctx, company, req.Password); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toCompanyResp(company))
}

// UpdateCompany overwrites a stored company. Renames are rejected by
// the domain guard with a 422.
func (h *AdminHandler) UpdateCompany(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req companyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	company := &model.Company{ID: id, Name: strings.TrimSpace(req.Name), Email: strings.TrimSpace(req.Email)}
	if err := h.System.Admin().UpdateCompany(ctx, company); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toCompanyResp(company))
}

// DeleteCompany removes a company with its coupons and purchase records.
func (h *AdminHandler) DeleteCompany(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.System.Admin().RemoveCompany(ctx, id); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCompany fetches a single company.
func (h *AdminHandler) GetCompany(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	company, err := h.System.Admin().GetCompany(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toCompanyResp(company))
}

// ListCompanies lists every company.
func (h *AdminHandler) ListCompanies(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	companies, err := h.System.Admin().GetAllCompanies(ctx)
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]companyResp, 0, len(companies))
	for _, company := range companies {
		out = append(out, toCompanyResp(company))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateCustomer registers a new customer.
func (h *AdminHandler) CreateCustomer(c echo.Context) error {
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	customer := &model.Customer{Name: req.Name}
	if err := h.System.Admin().CreateCustomer(ctx, customer, req.Password); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toCustomerResp(customer))
}

// UpdateCustomer overwrites a stored customer; renames are rejected.
func (h *AdminHandler) UpdateCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	customer := &model.Customer{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := h.System.Admin().UpdateCustomer(ctx, customer); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toCustomerResp(customer))
}

// DeleteCustomer removes a customer and their purchase records.
func (h *AdminHandler) DeleteCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.System.Admin().RemoveCustomer(ctx, id); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCustomer fetches a single customer.
func (h *AdminHandler) GetCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	customer, err := h.System.Admin().GetCustomer(ctx, id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toCustomerResp(customer))
}

// ListCustomers lists every customer.
func (h *AdminHandler) ListCustomers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	customers, err := h.System.Admin().GetAllCustomers(ctx)
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]customerResp, 0, len(customers))
	for _, customer := range customers {
		out = append(out, toCustomerResp(customer))
	}
	return c.JSON(http.StatusOK, out)
}
