package model

import "time"

// Company represents a coupon-issuing tenant as stored in the
// `companies` table. A company owns the coupons it creates; removing
// the company removes its coupons and their purchase records.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – unique company name, immutable after creation.
//  PasswordHash – bcrypt hashed login password.
//  Email        – contact address.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Company struct {
	ID           uint64    // companies.id
	Name         string    // companies.name
	PasswordHash string    // companies.password_hash
	Email        string    // companies.email
	CreatedAt    time.Time // companies.created_at
	UpdatedAt    time.Time // companies.updated_at
}
