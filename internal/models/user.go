package models

import (
	"time"
)

// User represents an account identified by phone number. Accounts are created
// implicitly on first successful OTP verification.
type User struct {
	ID        int64     `bson:"_id" json:"id"`
	Phone     string    `bson:"phone" json:"phone"` // E.164, unique
	Name      string    `bson:"name" json:"name"`
	IsAdmin   bool      `bson:"is_admin" json:"is_admin"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	Deleted   bool      `bson:"deleted" json:"-"` // Soft delete flag
}
