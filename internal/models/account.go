// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// Role defines the closed set of account roles.
type Role string

const (
	// RoleAdmin is a platform administrator created via the admin CLI.
	RoleAdmin Role = "admin"
	// RoleRealtor can create and manage property listings.
	RoleRealtor Role = "realtor"
	// RoleUser is a regular registered account.
	RoleUser Role = "user"
)

// ParseRole maps a case-insensitive string onto a known Role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleRealtor:
		return RoleRealtor, true
	case RoleUser:
		return RoleUser, true
	}
	return "", false
}

// Account represents a registered user of the Homestead platform.
// Email is stored lowercase; uniqueness is enforced by the database.
type Account struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Email       string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name        string `gorm:"size:230;not null" json:"name"`
	Role        Role   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Password    string `gorm:"not null" json:"-"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
	IsStaff     bool   `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser bool   `gorm:"not null;default:false" json:"-"`
	IsVerified  bool   `gorm:"not null;default:false" json:"is_verified"`

	RealtorProfile *RealtorProfile `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"realtor_profile,omitempty"`
	Listings       []Listing       `gorm:"foreignKey:RealtorID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Account) TableName() string {
	return "accounts"
}

// RealtorProfile is the one-to-one professional profile of a realtor
// account. It is created in the same transaction as the account.
type RealtorProfile struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AccountID   uint   `gorm:"uniqueIndex;not null" json:"account_id"`
	Phone       string `gorm:"size:20" json:"phone"`
	CompanyName string `gorm:"size:150" json:"company_name"`
	// LicenseNumber is nullable so freshly provisioned profiles do not
	// collide on the unique index before the realtor fills it in.
	LicenseNumber *string `gorm:"size:150;uniqueIndex" json:"license_number"`
	Bio           string  `gorm:"type:text" json:"bio"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (RealtorProfile) TableName() string {
	return "realtor_profiles"
}
