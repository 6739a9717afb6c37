package model

import "time"

// Customer represents a purchasing user as stored in the `customers`
// table. Purchased coupons are linked through the `purchases` join
// table; a customer may purchase a given coupon at most once.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – unique customer name, immutable after creation.
//  PasswordHash – bcrypt hashed login password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Customer struct {
	ID           uint64    // customers.id
	Name         string    // customers.name
	PasswordHash string    // customers.password_hash
	CreatedAt    time.Time // customers.created_at
	UpdatedAt    time.Time // customers.updated_at
}
