package models

import (
	"strings"
	"time"
)

// Category defines the closed set of listing categories.
type Category string

const (
	// CategoryForSale marks a property offered for sale.
	CategoryForSale Category = "FOR_SALE"
	// CategoryForRent marks a property offered for rent.
	CategoryForRent Category = "FOR_RENT"
	// CategoryForBuy marks a buyer-side request.
	CategoryForBuy Category = "FOR_BUY"
)

// ParseCategory maps a case-insensitive string onto a known Category.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryForSale:
		return CategoryForSale, true
	case CategoryForRent:
		return CategoryForRent, true
	case CategoryForBuy:
		return CategoryForBuy, true
	}
	return "", false
}

// Listing represents a property listing owned by a realtor account.
// The slug is derived from the title once at creation time and is
// never recomputed afterwards.
type Listing struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	RealtorID    uint   `gorm:"not null;index" json:"realtor"`
	RealtorEmail string `gorm:"size:255" json:"realtor_email"`

	Title       string   `gorm:"size:200;not null" json:"title"`
	Slug        string   `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Price       float64  `gorm:"type:decimal(12,2);not null" json:"price"`
	Location    string   `gorm:"size:255;not null" json:"location"`
	Bedrooms    int      `gorm:"not null;default:0" json:"bedrooms"`
	Bathrooms   float64  `gorm:"type:decimal(2,1);not null;default:0" json:"bathrooms"`
	Category    Category `gorm:"type:varchar(20);not null;default:'FOR_SALE'" json:"category"`

	// Blob-store keys; MainPhoto is required, the rest optional.
	MainPhoto string `gorm:"size:255;not null" json:"main_photo"`
	Photo1    string `gorm:"size:255" json:"photo_1"`
	Photo2    string `gorm:"size:255" json:"photo_2"`
	Photo3    string `gorm:"size:255" json:"photo_3"`

	IsPublished bool      `gorm:"not null;default:false" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Listing) TableName() string {
	return "listings"
}

// PhotoKeys returns the non-empty blob keys referenced by the listing.
func (l *Listing) PhotoKeys() []string {
	keys := make([]string, 0, 4)
	for _, k := range []string{l.MainPhoto, l.Photo1, l.Photo2, l.Photo3} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
