package models

import (
	"strings"

	"github.com/google/uuid"
)

// Role gates access to admin operations.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Profile represents an account known to the identity adapter.
type Profile struct {
	BaseModel
	Email        string `gorm:"uniqueIndex" json:"email"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Role         Role   `gorm:"type:varchar(16);default:customer" json:"role"`
	PasswordHash string `json:"-"`
}

// Identity is the authenticated caller resolved from a token.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// IsAdmin reports whether the caller holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// CustomerDetails is the contact snapshot captured at checkout.
type CustomerDetails struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=10"`
	Address string `json:"address" validate:"required,min=10"`
	Notes   string `json:"notes"`
}

// WithDefaults fills blank fields from the caller's profile.
func (d CustomerDetails) WithDefaults(p Profile) CustomerDetails {
	if strings.TrimSpace(d.Name) == "" {
		d.Name = p.FullName
	}
	if strings.TrimSpace(d.Email) == "" {
		d.Email = p.Email
	}
	if strings.TrimSpace(d.Phone) == "" {
		d.Phone = p.Phone
	}
	if strings.TrimSpace(d.Address) == "" {
		d.Address = p.Address
	}
	return d
}

// CustomerSummary aggregates one customer's order history for the dashboard.
type CustomerSummary struct {
	Profile
	OrderCount int64 `json:"order_count"`
	TotalSpent int64 `json:"total_spent"`
}
