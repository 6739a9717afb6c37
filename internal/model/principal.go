package model

// ClientType identifies which kind of principal is authenticated on a
// session. The value is carried in the JWT "kind" claim and checked by
// the role middleware.
type ClientType string

const (
	ClientAdmin    ClientType = "ADMIN"
	ClientCompany  ClientType = "COMPANY"
	ClientCustomer ClientType = "CUSTOMER"
)

// Session holds the principal authenticated for one session. Exactly
// one of Company/Customer is set for those client types; an admin
// session carries neither. Sessions are constructed at login and
// passed to the facade that scopes queries with them; they are never
// shared across sessions.
type Session struct {
	Type     ClientType
	Company  *Company  // set when Type == ClientCompany
	Customer *Customer // set when Type == ClientCustomer
}
