package models

import "time"

type UserRole string

const (
	RoleRenter UserRole = "renter"
	RoleHost   UserRole = "host"
	RoleAdmin  UserRole = "admin"
)

// User is a read model synced from the identity service. CancellationCount is
// the one field this service writes: it flags hosts who cancel accepted bookings.
type User struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	Role              UserRole  `gorm:"type:varchar(16);not null;default:'renter'" json:"role"`
	CancellationCount int       `gorm:"not null;default:0" json:"cancellation_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
