package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/alzablotsky/coupon-system/internal/handler"    // import the handlers that implement business logic
	"github.com/alzablotsky/coupon-system/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/alzablotsky/coupon-system/internal/model"      // import the client types checked by the role middleware
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (login, refresh).  Each of these
	// handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle login at /v1/auth/login.  The body
	// carries name, password and the client type (ADMIN, COMPANY, CUSTOMER).
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to log out using a refresh token.  Logout does
	// not require JWT authentication: the handler accepts a JSON body
	// containing a `refresh_token` and will invalidate that token.
	g.POST("/logout", a.Logout)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.  Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Register a GET endpoint at /v1/me that returns the authenticated principal's information.
	auth.GET("/me", a.Me)
	// Logout with a bearer token (and no body) revokes every session of the
	// authenticated principal.
	auth.POST("/logout", a.Logout)
}

// RegisterAdmin registers company and customer administration endpoints.
// Only principals whose token carries the ADMIN kind pass the middleware
// chain.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireClientType(model.ClientAdmin))

	// Company administration.
	g.POST("/companies", h.CreateCompany)
	g.GET("/companies", h.ListCompanies)
	g.GET("/companies/:id", h.GetCompany)
	g.PUT("/companies/:id", h.UpdateCompany)
	g.DELETE("/companies/:id", h.DeleteCompany)

	// Customer administration.
	g.POST("/customers", h.CreateCustomer)
	g.GET("/customers", h.ListCustomers)
	g.GET("/customers/:id", h.GetCustomer)
	g.PUT("/customers/:id", h.UpdateCustomer)
	g.DELETE("/customers/:id", h.DeleteCustomer)
}

// RegisterCompany registers the coupon management endpoints available to
// a logged‑in company.
func RegisterCompany(e *echo.Echo, h *handler.CompanyHandler, jwtSecret string) {
	g := e.Group("/v1/company")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireClientType(model.ClientCompany))

	g.POST("/coupons", h.CreateCoupon)
	g.GET("/coupons", h.ListCoupons)
	g.GET("/coupons/:id", h.GetCoupon)
	g.PUT("/coupons", h.UpdateCoupon)
	g.DELETE("/coupons/:id", h.DeleteCoupon)
}

// RegisterCustomer registers the purchase endpoints available to a
// logged‑in customer.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
	g := e.Group("/v1/customer")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireClientType(model.ClientCustomer))

	g.POST("/coupons/:id/purchase", h.PurchaseCoupon)
	g.GET("/coupons", h.ListPurchasedCoupons)
}
