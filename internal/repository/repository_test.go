package repository

import (
	"context"
	"testing"
	"time"

	"homestead/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.RealtorProfile{}, &models.Listing{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func newRealtor(t *testing.T, db *gorm.DB, email string) *models.Account {
	t.Helper()
	account := &models.Account{
		Email:    email,
		Name:     "Test Realtor",
		Role:     models.RoleRealtor,
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, NewAccountRepository(db).CreateRealtor(context.Background(), account))
	return account
}

func TestAccountRepository_CreateDuplicateEmail(t *testing.T) {
	db := setupDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	first := &models.Account{Email: "jane@example.com", Name: "Jane", Role: models.RoleUser, Password: "h", IsActive: true}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.Account{Email: "jane@example.com", Name: "Other Jane", Role: models.RoleUser, Password: "h", IsActive: true}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestAccountRepository_CreateRealtorProvisionsProfile(t *testing.T) {
	db := setupDB(t)
	account := newRealtor(t, db, "realtor@example.com")

	var profiles []models.RealtorProfile
	require.NoError(t, db.Where("account_id = ?", account.ID).Find(&profiles).Error)
	require.Len(t, profiles, 1, "exactly one profile per realtor account")

	loaded, err := NewAccountRepository(db).GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.RealtorProfile)
	assert.Equal(t, account.ID, loaded.RealtorProfile.AccountID)
}

func TestAccountRepository_CreateRealtorKeepsAttachedProfile(t *testing.T) {
	db := setupDB(t)
	repo := NewAccountRepository(db)

	account := &models.Account{
		Email:    "agent@example.com",
		Name:     "Agent",
		Role:     models.RoleRealtor,
		Password: "hashed",
		IsActive: true,
		RealtorProfile: &models.RealtorProfile{
			Phone:       "0123456789",
			CompanyName: "Acme Homes",
			Bio:         "twenty years in the trade",
		},
	}
	require.NoError(t, repo.CreateRealtor(context.Background(), account))

	var profiles []models.RealtorProfile
	require.NoError(t, db.Where("account_id = ?", account.ID).Find(&profiles).Error)
	require.Len(t, profiles, 1, "exactly one profile per realtor account")
	assert.Equal(t, "Acme Homes", profiles[0].CompanyName)
	assert.Equal(t, "0123456789", profiles[0].Phone)
}

func TestAccountRepository_DeleteRemovesProfileAndListings(t *testing.T) {
	db := setupDB(t)
	realtor := newRealtor(t, db, "realtor@example.com")
	listings := NewListingRepository(db)
	ctx := context.Background()

	for _, slug := range []string{"loft", "flat"} {
		require.NoError(t, listings.Create(ctx, &models.Listing{
			RealtorID: realtor.ID, Title: slug, Slug: slug,
			Description: "d", Price: 100, Location: "Leeds",
			Category: models.CategoryForRent, MainPhoto: "m",
		}))
	}

	require.NoError(t, NewAccountRepository(db).Delete(ctx, realtor.ID))

	var listingCount, profileCount int64
	require.NoError(t, db.Model(&models.Listing{}).Where("realtor_id = ?", realtor.ID).Count(&listingCount).Error)
	assert.Zero(t, listingCount)
	require.NoError(t, db.Model(&models.RealtorProfile{}).Where("account_id = ?", realtor.ID).Count(&profileCount).Error)
	assert.Zero(t, profileCount)
}

func TestAccountRepository_GetByEmailMissingIsNil(t *testing.T) {
	db := setupDB(t)
	account, err := NewAccountRepository(db).GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestListingRepository_CreateSlugConflict(t *testing.T) {
	db := setupDB(t)
	realtor := newRealtor(t, db, "realtor@example.com")
	repo := NewListingRepository(db)
	ctx := context.Background()

	base := models.Listing{
		RealtorID:   realtor.ID,
		Title:       "Sea View Condo",
		Slug:        "sea-view-condo",
		Description: "ocean front",
		Price:       250000,
		Location:    "Brighton",
		Category:    models.CategoryForSale,
		MainPhoto:   "listings/a.webp",
	}
	first := base
	require.NoError(t, repo.Create(ctx, &first))

	second := base
	err := repo.Create(ctx, &second)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestListingRepository_OwnedScoping(t *testing.T) {
	db := setupDB(t)
	owner := newRealtor(t, db, "owner@example.com")
	other := newRealtor(t, db, "other@example.com")
	repo := NewListingRepository(db)
	ctx := context.Background()

	listing := &models.Listing{
		RealtorID: owner.ID, Title: "Loft", Slug: "loft",
		Description: "d", Price: 100, Location: "Leeds",
		Category: models.CategoryForRent, MainPhoto: "listings/l.webp",
	}
	require.NoError(t, repo.Create(ctx, listing))

	got, err := repo.GetOwned(ctx, owner.ID, "loft")
	require.NoError(t, err)
	assert.Equal(t, listing.ID, got.ID)

	_, err = repo.GetOwned(ctx, other.ID, "loft")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestListingRepository_PublishedVisibility(t *testing.T) {
	db := setupDB(t)
	realtor := newRealtor(t, db, "realtor@example.com")
	repo := NewListingRepository(db)
	ctx := context.Background()

	published := &models.Listing{
		RealtorID: realtor.ID, Title: "Visible", Slug: "visible",
		Description: "d", Price: 100, Location: "Hull",
		Category: models.CategoryForSale, MainPhoto: "m", IsPublished: true,
	}
	draft := &models.Listing{
		RealtorID: realtor.ID, Title: "Hidden", Slug: "hidden",
		Description: "d", Price: 100, Location: "Hull",
		Category: models.CategoryForSale, MainPhoto: "m",
	}
	require.NoError(t, repo.Create(ctx, published))
	require.NoError(t, repo.Create(ctx, draft))

	_, err := repo.GetPublished(ctx, "hidden")
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	got, err := repo.GetPublished(ctx, "visible")
	require.NoError(t, err)
	assert.Equal(t, published.ID, got.ID)

	all, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "visible", all[0].Slug)
}

func seedSearchListings(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	realtor := newRealtor(t, db, "realtor@example.com")
	repo := NewListingRepository(db)
	ctx := context.Background()
	now := time.Now()

	rows := []models.Listing{
		{Title: "Sea View Condo", Slug: "sea-view-condo", Description: "bright condo by the sea",
			Price: 250000, Location: "Brighton", Bedrooms: 2, Bathrooms: 1.5,
			Category: models.CategoryForSale, IsPublished: true, CreatedAt: now.Add(-3 * time.Hour)},
		{Title: "City Flat", Slug: "city-flat", Description: "compact flat",
			Price: 180000, Location: "Manchester", Bedrooms: 1, Bathrooms: 1,
			Category: models.CategoryForSale, IsPublished: true, CreatedAt: now.Add(-2 * time.Hour)},
		{Title: "Country House", Slug: "country-house", Description: "family home with garden",
			Price: 450000, Location: "York", Bedrooms: 4, Bathrooms: 2.5,
			Category: models.CategoryForRent, IsPublished: true, CreatedAt: now.Add(-1 * time.Hour)},
		{Title: "Unlisted Villa", Slug: "unlisted-villa", Description: "matches everything but unpublished",
			Price: 100000, Location: "Brighton", Bedrooms: 5, Bathrooms: 3,
			Category: models.CategoryForSale, IsPublished: false, CreatedAt: now},
	}
	for i := range rows {
		rows[i].RealtorID = realtor.ID
		rows[i].MainPhoto = "listings/" + rows[i].Slug + ".webp"
		require.NoError(t, repo.Create(ctx, &rows[i]))
	}
	return realtor
}

func TestListingRepository_SearchFilters(t *testing.T) {
	db := setupDB(t)
	realtor := seedSearchListings(t, db)
	repo := NewListingRepository(db)
	ctx := context.Background()

	t.Run("price and bedrooms are conjunctive", func(t *testing.T) {
		maxPrice := 300000.0
		bedrooms := 2
		got, err := repo.Search(ctx, SearchCriteria{MaxPrice: &maxPrice, Bedrooms: &bedrooms})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "sea-view-condo", got[0].Slug)
	})

	t.Run("unpublished listings never surface", func(t *testing.T) {
		got, err := repo.Search(ctx, SearchCriteria{Location: "brighton"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "sea-view-condo", got[0].Slug)
	})

	t.Run("free text matches any of the four fields", func(t *testing.T) {
		got, err := repo.Search(ctx, SearchCriteria{Search: "GARDEN"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "country-house", got[0].Slug)
	})

	t.Run("category filter is exact", func(t *testing.T) {
		got, err := repo.Search(ctx, SearchCriteria{Category: models.CategoryForRent})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "country-house", got[0].Slug)
	})

	t.Run("bathrooms lower bound", func(t *testing.T) {
		baths := 2.0
		got, err := repo.Search(ctx, SearchCriteria{Bathrooms: &baths})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "country-house", got[0].Slug)
	})

	t.Run("results are newest first", func(t *testing.T) {
		got, err := repo.Search(ctx, SearchCriteria{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "country-house", got[0].Slug)
		assert.Equal(t, "city-flat", got[1].Slug)
		assert.Equal(t, "sea-view-condo", got[2].Slug)
	})

	t.Run("no matches returns empty slice", func(t *testing.T) {
		price := 1.0
		got, err := repo.Search(ctx, SearchCriteria{MaxPrice: &price})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("like wildcards match literally", func(t *testing.T) {
		discounted := &models.Listing{
			RealtorID: realtor.ID, Title: "Discounted Cottage", Slug: "discounted-cottage",
			Description: "priced 10% under market", Price: 90000, Location: "Hull",
			Category: models.CategoryForSale, MainPhoto: "m", IsPublished: true,
		}
		require.NoError(t, repo.Create(ctx, discounted))

		got, err := repo.Search(ctx, SearchCriteria{Search: "10%"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "discounted-cottage", got[0].Slug)

		got, err = repo.Search(ctx, SearchCriteria{Search: "%"})
		require.NoError(t, err)
		require.Len(t, got, 1, "a bare percent only matches a literal percent sign")
		assert.Equal(t, "discounted-cottage", got[0].Slug)

		got, err = repo.Search(ctx, SearchCriteria{Location: "h_ll"})
		require.NoError(t, err)
		assert.Empty(t, got, "underscore is not a single-character wildcard")
	})
}
