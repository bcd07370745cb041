package repository

import (
	"context"
	"errors"
	"strings"

	"homestead/internal/cache"
	"homestead/internal/models"

	"gorm.io/gorm"
)

// SearchCriteria holds the parsed, validated filters for a listing
// search. Nil/zero fields are ignored. All filters are ANDed together;
// Search itself is a disjunction over title, description, location and
// category.
type SearchCriteria struct {
	Search    string
	MaxPrice  *float64
	Bedrooms  *int
	Bathrooms *float64
	Location  string
	Category  models.Category
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetOwned(ctx context.Context, realtorID uint, slug string) (*models.Listing, error)
	ListOwned(ctx context.Context, realtorID uint) ([]models.Listing, error)
	GetPublished(ctx context.Context, slug string) (*models.Listing, error)
	ListPublished(ctx context.Context) ([]models.Listing, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, listing *models.Listing) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository returns a new ListingRepository implementation.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create inserts the listing. The single INSERT is atomic, so a slug
// collision surfaces as a clean ConflictError with no partial record.
func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewConflictError("A listing with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, listing.Slug, listing.RealtorID)
	return nil
}

func (r *listingRepository) GetOwned(ctx context.Context, realtorID uint, slug string) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Where("realtor_id = ? AND slug = ?", realtorID, slug).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Listing not found.")
		}
		return nil, models.NewInternalError(err)
	}
	return &listing, nil
}

func (r *listingRepository) ListOwned(ctx context.Context, realtorID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("realtor_id = ?", realtorID).
		Order("created_at DESC, id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *listingRepository) GetPublished(ctx context.Context, slug string) (*models.Listing, error) {
	var listing models.Listing
	key := cache.ListingKey(slug)

	err := cache.Aside(ctx, key, &listing, cache.ListingTTL, func() error {
		err := r.db.WithContext(ctx).
			Where("slug = ? AND is_published = ?", slug, true).
			First(&listing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Published listing with this slug does not exist")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) ListPublished(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	err := cache.Aside(ctx, cache.PublishedKey, &listings, cache.PublishedTTL, func() error {
		if err := r.db.WithContext(ctx).
			Where("is_published = ?", true).
			Order("created_at DESC, id DESC").
			Find(&listings).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// escapeLike neutralises LIKE metacharacters so user input is matched
// literally. Queries built with it must carry an ESCAPE '\' clause.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search composes the criteria into one query over published listings.
// LOWER(...) LIKE keeps substring matching case-insensitive on both
// Postgres and the sqlite test driver.
func (r *listingRepository) Search(ctx context.Context, criteria SearchCriteria) ([]models.Listing, error) {
	db := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("is_published = ?", true)

	if criteria.Search != "" {
		like := "%" + escapeLike(strings.ToLower(criteria.Search)) + "%"
		db = db.Where(
			r.db.Where(`LOWER(title) LIKE ? ESCAPE '\'`, like).
				Or(`LOWER(description) LIKE ? ESCAPE '\'`, like).
				Or(`LOWER(location) LIKE ? ESCAPE '\'`, like).
				Or(`LOWER(category) LIKE ? ESCAPE '\'`, like),
		)
	}
	if criteria.MaxPrice != nil {
		db = db.Where("price <= ?", *criteria.MaxPrice)
	}
	if criteria.Bedrooms != nil {
		db = db.Where("bedrooms >= ?", *criteria.Bedrooms)
	}
	if criteria.Bathrooms != nil {
		db = db.Where("bathrooms >= ?", *criteria.Bathrooms)
	}
	if criteria.Location != "" {
		db = db.Where(`LOWER(location) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(criteria.Location))+"%")
	}
	if criteria.Category != "" {
		db = db.Where("category = ?", criteria.Category)
	}

	var listings []models.Listing
	if err := db.Order("created_at DESC, id DESC").Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

// Update persists the listing row and drops the affected cache entries.
func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewConflictError("A listing with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, listing.Slug, listing.RealtorID)
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Delete(listing).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, listing.Slug, listing.RealtorID)
	return nil
}
