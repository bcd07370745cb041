package seed

import (
	"testing"

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
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.RealtorProfile{}, &models.Listing{}))
	return db
}

func TestSeedDemo(t *testing.T) {
	db := setupDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.SeedDemo(3, 5, 2))

	var realtors, users, profiles, listings int64
	require.NoError(t, db.Model(&models.Account{}).Where("role = ?", models.RoleRealtor).Count(&realtors).Error)
	require.NoError(t, db.Model(&models.Account{}).Where("role = ?", models.RoleUser).Count(&users).Error)
	require.NoError(t, db.Model(&models.RealtorProfile{}).Count(&profiles).Error)
	require.NoError(t, db.Model(&models.Listing{}).Count(&listings).Error)

	assert.EqualValues(t, 3, realtors)
	assert.EqualValues(t, 5, users)
	assert.EqualValues(t, 3, profiles, "one profile per realtor")
	assert.GreaterOrEqual(t, listings, int64(3), "each realtor has at least one listing")

	var all []models.Listing
	require.NoError(t, db.Find(&all).Error)
	seen := map[string]bool{}
	for _, l := range all {
		assert.False(t, seen[l.Slug], "slugs are unique: %s", l.Slug)
		seen[l.Slug] = true
		assert.NotEmpty(t, l.MainPhoto)
		assert.NotZero(t, l.RealtorID)
	}
}

func TestClearAll(t *testing.T) {
	db := setupDB(t)
	s := NewSeeder(db)
	require.NoError(t, s.SeedDemo(2, 2, 1))
	require.NoError(t, s.ClearAll())

	var accounts, listings int64
	require.NoError(t, db.Model(&models.Account{}).Count(&accounts).Error)
	require.NoError(t, db.Model(&models.Listing{}).Count(&listings).Error)
	assert.Zero(t, accounts)
	assert.Zero(t, listings)
}
