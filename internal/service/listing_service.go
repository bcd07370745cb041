package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"homestead/internal/cache"
	"homestead/internal/middleware"
	"homestead/internal/models"
	"homestead/internal/observability"
	"homestead/internal/repository"
)

// slugAttempts caps how many suffixed candidates are tried when the
// base slug is taken: base, base-1, ... base-99.
const slugAttempts = 100

type ListingService struct {
	listingRepo repository.ListingRepository
	accountRepo repository.AccountRepository
	blobs       BlobStore
}

type CreateListingInput struct {
	RealtorID   uint
	Title       string
	Description string
	Price       float64
	Location    string
	Bedrooms    int
	Bathrooms   float64
	Category    string
	MainPhoto   string
	Photo1      string
	Photo2      string
	Photo3      string
	IsPublished bool
}

// UpdateListingInput carries a partial update; nil fields are left
// unchanged. Slug and owner are never updatable.
type UpdateListingInput struct {
	Title       *string
	Description *string
	Price       *float64
	Location    *string
	Bedrooms    *int
	Bathrooms   *float64
	Category    *string
	MainPhoto   *string
	Photo1      *string
	Photo2      *string
	Photo3      *string
	IsPublished *bool
}

// SearchInput holds the raw, still-unparsed query parameters of a
// search request.
type SearchInput struct {
	Search    string
	MaxPrice  string
	Bedrooms  string
	Bathrooms string
	Location  string
	Category  string
}

func NewListingService(
	listingRepo repository.ListingRepository,
	accountRepo repository.AccountRepository,
	blobs BlobStore,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		accountRepo: accountRepo,
		blobs:       blobs,
	}
}

// Create validates the input, derives the slug from the title and
// inserts the listing, retrying with numeric suffixes while the slug
// collides with an existing one.
func (s *ListingService) Create(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	category, err := validateCategory(in.Category)
	if err != nil {
		return nil, err
	}
	if err := validateListingFields(in.Title, in.Description, in.Location, in.MainPhoto, in.Price, in.Bedrooms, in.Bathrooms); err != nil {
		return nil, err
	}

	base := Slugify(in.Title)
	if base == "" {
		return nil, models.NewValidationError("Title must contain at least one letter or digit")
	}

	account, err := s.accountRepo.GetByID(ctx, in.RealtorID)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		RealtorID:    in.RealtorID,
		RealtorEmail: account.Email,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Price:        in.Price,
		Location:     in.Location,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    roundBathrooms(in.Bathrooms),
		Category:     category,
		MainPhoto:    in.MainPhoto,
		Photo1:       in.Photo1,
		Photo2:       in.Photo2,
		Photo3:       in.Photo3,
		IsPublished:  in.IsPublished,
	}

	for attempt := 0; attempt < slugAttempts; attempt++ {
		if attempt == 0 {
			listing.Slug = base
		} else {
			listing.Slug = fmt.Sprintf("%s-%d", base, attempt)
		}
		err := s.listingRepo.Create(ctx, listing)
		if err == nil {
			observability.ListingsCreated.WithLabelValues(string(listing.Category)).Inc()
			return listing, nil
		}
		if !models.HasCode(err, models.CodeConflict) {
			return nil, err
		}
		observability.SlugRetries.Inc()
	}
	return nil, models.NewConflictError("could not generate a unique slug")
}

func (s *ListingService) GetOwned(ctx context.Context, realtorID uint, slug string) (*models.Listing, error) {
	return s.listingRepo.GetOwned(ctx, realtorID, slug)
}

func (s *ListingService) ListOwned(ctx context.Context, realtorID uint) ([]models.Listing, error) {
	return s.listingRepo.ListOwned(ctx, realtorID)
}

func (s *ListingService) GetPublished(ctx context.Context, slug string) (*models.Listing, error) {
	return s.listingRepo.GetPublished(ctx, slug)
}

func (s *ListingService) ListPublished(ctx context.Context) ([]models.Listing, error) {
	return s.listingRepo.ListPublished(ctx)
}

// Update applies the non-nil fields of in to the listing owned by
// realtorID under slug. The slug is never recomputed, even when the
// title changes.
func (s *ListingService) Update(ctx context.Context, realtorID uint, slug string, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.listingRepo.GetOwned(ctx, realtorID, slug)
	if err != nil {
		return nil, err
	}

	if in.Category != nil {
		category, err := validateCategory(*in.Category)
		if err != nil {
			return nil, err
		}
		listing.Category = category
	}
	if in.Title != nil {
		listing.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		listing.Description = *in.Description
	}
	if in.Price != nil {
		listing.Price = *in.Price
	}
	if in.Location != nil {
		listing.Location = *in.Location
	}
	if in.Bedrooms != nil {
		listing.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		listing.Bathrooms = roundBathrooms(*in.Bathrooms)
	}
	if in.MainPhoto != nil {
		listing.MainPhoto = *in.MainPhoto
	}
	if in.Photo1 != nil {
		listing.Photo1 = *in.Photo1
	}
	if in.Photo2 != nil {
		listing.Photo2 = *in.Photo2
	}
	if in.Photo3 != nil {
		listing.Photo3 = *in.Photo3
	}
	if in.IsPublished != nil {
		listing.IsPublished = *in.IsPublished
	}

	if err := validateListingFields(listing.Title, listing.Description, listing.Location, listing.MainPhoto, listing.Price, listing.Bedrooms, listing.Bathrooms); err != nil {
		return nil, err
	}
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes the photo blobs first, then the record. A blob
// deletion failure is logged and counted but does not abort the
// record delete.
func (s *ListingService) Delete(ctx context.Context, realtorID uint, slug string) error {
	listing, err := s.listingRepo.GetOwned(ctx, realtorID, slug)
	if err != nil {
		return err
	}
	s.deletePhotoBlobs(ctx, listing)
	return s.listingRepo.Delete(ctx, listing)
}

// Search parses the raw query parameters into criteria and runs the
// filter query over published listings. Malformed numeric values fail
// with a ValidationError; an unknown category is silently ignored.
func (s *ListingService) Search(ctx context.Context, in SearchInput) ([]models.Listing, error) {
	criteria, err := parseSearchInput(in)
	if err != nil {
		observability.SearchQueries.WithLabelValues("invalid").Inc()
		return nil, err
	}
	listings, err := s.listingRepo.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		observability.SearchQueries.WithLabelValues("miss").Inc()
	} else {
		observability.SearchQueries.WithLabelValues("hit").Inc()
	}
	return listings, nil
}

func parseSearchInput(in SearchInput) (repository.SearchCriteria, error) {
	criteria := repository.SearchCriteria{
		Search:   strings.TrimSpace(in.Search),
		Location: strings.TrimSpace(in.Location),
	}

	if v := strings.TrimSpace(in.MaxPrice); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return criteria, models.NewValidationError("Invalid price")
		}
		criteria.MaxPrice = &price
	}
	if v := strings.TrimSpace(in.Bedrooms); v != "" {
		bedrooms, err := strconv.Atoi(v)
		if err != nil {
			return criteria, models.NewValidationError("Invalid bedrooms")
		}
		criteria.Bedrooms = &bedrooms
	}
	if v := strings.TrimSpace(in.Bathrooms); v != "" {
		bathrooms, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return criteria, models.NewValidationError("Invalid bathrooms")
		}
		bathrooms = roundBathrooms(bathrooms)
		criteria.Bathrooms = &bathrooms
	}
	if v := strings.TrimSpace(in.Category); v != "" {
		if category, ok := models.ParseCategory(v); ok {
			criteria.Category = category
		}
	}
	return criteria, nil
}

func validateCategory(raw string) (models.Category, error) {
	if strings.TrimSpace(raw) == "" {
		return models.CategoryForSale, nil
	}
	category, ok := models.ParseCategory(raw)
	if !ok {
		return "", models.NewValidationError("Invalid category")
	}
	return category, nil
}

func validateListingFields(title, description, location, mainPhoto string, price float64, bedrooms int, bathrooms float64) error {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return models.NewValidationError("Title is required")
	case len(title) > 200:
		return models.NewValidationError("Title too long (max 200 characters)")
	case strings.TrimSpace(description) == "":
		return models.NewValidationError("Description is required")
	case strings.TrimSpace(location) == "":
		return models.NewValidationError("Location is required")
	case mainPhoto == "":
		return models.NewValidationError("Main photo is required")
	case price < 0:
		return models.NewValidationError("Price must not be negative")
	case bedrooms < 0:
		return models.NewValidationError("Bedrooms must not be negative")
	case bathrooms < 0:
		return models.NewValidationError("Bathrooms must not be negative")
	}
	return nil
}

// roundBathrooms clamps bathroom counts to one decimal place, matching
// the stored column precision.
func roundBathrooms(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *ListingService) deletePhotoBlobs(ctx context.Context, listing *models.Listing) {
	if s.blobs == nil {
		return
	}
	for _, key := range listing.PhotoKeys() {
		if err := s.blobs.Delete(ctx, key); err != nil {
			observability.PhotoCleanupFailures.Inc()
			middleware.Logger.WarnContext(ctx, "photo blob cleanup failed",
				"slug", listing.Slug, "key", key, "error", err)
		}
	}
	cache.InvalidateListing(ctx, listing.Slug, listing.RealtorID)
}
