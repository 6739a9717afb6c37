package handler

import (
    "context"              // provides context with cancellation for DB calls
    "net/http"             // HTTP status codes and primitives
    "strings"              // string manipulation utilities
    "time"                 // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/alzablotsky/coupon-system/internal/config"     // app configuration
    "github.com/alzablotsky/coupon-system/internal/facade"     // domain entry point
    "github.com/alzablotsky/coupon-system/internal/model"      // principal types
    "github.com/alzablotsky/coupon-system/internal/repository" // refresh token storage
    "github.com/alzablotsky/coupon-system/internal/utils"      // helper functions (hashing, token issuing)
)

// AuthHandler bundles dependencies for auth endpoints. Authentication
// itself goes through the system facade; this layer only issues and
// rotates tokens.
type AuthHandler struct {
	Cfg    config.Config
	System *facade.System
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, sys *facade.System, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, System: sys, Tokens: t}
}

// ----- DTOs -----

type loginReq struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	ClientType string `json:"client_type"` // ADMIN | COMPANY | CUSTOMER
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type principalPart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Kind string `json:"client_type"`
}
type authResp struct {
	Principal principalPart `json:"principal"`
	Access    tokenPart     `json:"access"`
	Refresh   tokenPart     `json:"refresh"`
}

// Login authenticates a principal of the requested client type and
// returns a token pair. Unknown names and bad passwords both come back
// as 401 so the response does not reveal which part was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/password required"})
	}
	kind := model.ClientType(strings.ToUpper(strings.TrimSpace(req.ClientType)))
	switch kind {
	case model.ClientAdmin, model.ClientCompany, model.ClientCustomer:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_type must be ADMIN, COMPANY or CUSTOMER"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		id   uint64
		name = req.Name
	)
	switch kind {
	case model.ClientAdmin:
		if _, err := h.System.LoginAdmin(req.Name, req.Password); err != nil {
			return writeDomainError(c, err)
		}
	case model.ClientCompany:
		f, err := h.System.LoginCompany(ctx, req.Name, req.Password)
		if err != nil {
			return writeDomainError(c, err)
		}
		id = f.Session().Company.ID
		name = f.Session().Company.Name
	case model.ClientCustomer:
		f, err := h.System.LoginCustomer(ctx, req.Name, req.Password)
		if err != nil {
			return writeDomainError(c, err)
		}
		id = f.Session().Customer.ID
		name = f.Session().Customer.Name
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, string(kind), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, kind, id, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		Principal: principalPart{ID: id, Name: name, Kind: string(kind)},
		Access:    tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh:   tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Refresh: validate by hash, revoke old, issue new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	raw := strings.TrimSpace(req.RefreshToken)
	hash := utils.HashRefreshRaw(raw)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	kind, id, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, string(kind), h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, kind, id, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access":  tokenPart{Token: access.Token, Expires: access.Exp},
		"refresh": tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// Logout revokes a single session by its refresh token, or every
// session of the authenticated principal when called with a bearer
// token and no body.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	// No refresh token in the body: fall back to the bearer identity set
	// by the JWT middleware and revoke everything it holds.
	id, ok := principalID(c)
	kindStr, kindOK := c.Get("client_type").(string)
	if !ok || !kindOK {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide refresh_token or Authorization header"})
	}
	if err := h.Tokens.RevokeAllForPrincipal(ctx, model.ClientType(kindStr), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"principal_id": c.Get("principal_id"),
		"client_type":  c.Get("client_type"),
	})
}
