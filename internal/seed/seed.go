// Package seed provides helpers to create demo data for the Homestead
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"homestead/internal/models"
	"homestead/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password assigned to every seeded account.
const DemoPassword = "homestead-demo"

var categories = []models.Category{
	models.CategoryForSale,
	models.CategoryForRent,
	models.CategoryForBuy,
}

var propertyKinds = []string{
	"House", "Condo", "Flat", "Bungalow", "Cottage", "Townhouse", "Loft", "Villa",
}

// Seeder populates the database with demo accounts and listings.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes listings and accounts. Order matters: listings hold a
// foreign key to accounts.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Listing{}).Error; err != nil {
		return fmt.Errorf("clearing listings: %w", err)
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.RealtorProfile{}).Error; err != nil {
		return fmt.Errorf("clearing realtor profiles: %w", err)
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Account{}).Error; err != nil {
		return fmt.Errorf("clearing accounts: %w", err)
	}
	return nil
}

// CreateRealtor persists a realtor account with a populated profile.
func (s *Seeder) CreateRealtor() (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	license := gofakeit.UUID()
	account := &models.Account{
		Email:    strings.ToLower(gofakeit.Email()),
		Name:     gofakeit.Name(),
		Role:     models.RoleRealtor,
		Password: string(hash),
		IsActive: true,
		RealtorProfile: &models.RealtorProfile{
			Phone:         gofakeit.Phone(),
			CompanyName:   gofakeit.Company(),
			LicenseNumber: &license,
			Bio:           gofakeit.Sentence(12),
		},
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, fmt.Errorf("creating realtor: %w", err)
	}
	return account, nil
}

// CreateUser persists a regular demo account.
func (s *Seeder) CreateUser() (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	account := &models.Account{
		Email:    strings.ToLower(gofakeit.Email()),
		Name:     gofakeit.Name(),
		Role:     models.RoleUser,
		Password: string(hash),
		IsActive: true,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return account, nil
}

// CreateListing persists a listing owned by the given realtor. Roughly
// four out of five seeded listings are published.
func (s *Seeder) CreateListing(realtor *models.Account) (*models.Listing, error) {
	title := fmt.Sprintf("%s %s %s",
		gofakeit.AdjectiveDescriptive(),
		propertyKinds[s.rand.Intn(len(propertyKinds))],
		gofakeit.City(),
	)
	slug := service.Slugify(title)
	// Seeded titles can repeat; a short random suffix keeps slugs unique
	// without replaying the collision loop.
	slug = fmt.Sprintf("%s-%s", slug, gofakeit.UUID()[:6])

	bedrooms := 1 + s.rand.Intn(5)
	listing := &models.Listing{
		RealtorID:    realtor.ID,
		RealtorEmail: realtor.Email,
		Title:        title,
		Slug:         slug,
		Description:  gofakeit.Paragraph(1, 4, 10, "\n"),
		Price:        float64(50000 + s.rand.Intn(950000)),
		Location:     fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.StateAbr()),
		Bedrooms:     bedrooms,
		Bathrooms:    float64(1+s.rand.Intn(bedrooms*2)) / 2,
		Category:     categories[s.rand.Intn(len(categories))],
		MainPhoto:    fmt.Sprintf("listings/%s.webp", gofakeit.UUID()),
		IsPublished:  s.rand.Intn(5) != 0,
		CreatedAt:    time.Now().Add(-time.Duration(s.rand.Intn(90*24)) * time.Hour),
	}
	if s.rand.Intn(2) == 0 {
		listing.Photo1 = fmt.Sprintf("listings/%s.webp", gofakeit.UUID())
	}
	if err := s.db.Create(listing).Error; err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}
	return listing, nil
}

// SeedDemo creates numRealtors realtor accounts, numUsers regular
// accounts and about listingsPerRealtor listings for each realtor.
func (s *Seeder) SeedDemo(numRealtors, numUsers, listingsPerRealtor int) error {
	log.Printf("Seeding %d realtors, %d users, ~%d listings each...",
		numRealtors, numUsers, listingsPerRealtor)

	for i := 0; i < numUsers; i++ {
		if _, err := s.CreateUser(); err != nil {
			return err
		}
	}
	for i := 0; i < numRealtors; i++ {
		realtor, err := s.CreateRealtor()
		if err != nil {
			return err
		}
		n := 1 + s.rand.Intn(listingsPerRealtor*2)
		for j := 0; j < n; j++ {
			if _, err := s.CreateListing(realtor); err != nil {
				return err
			}
		}
	}
	log.Println("Seeding complete.")
	return nil
}
