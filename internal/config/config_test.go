package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// writeConfigFile marshals the given values into config.yml inside dir.
func writeConfigFile(t *testing.T, dir string, values map[string]any) {
	t.Helper()
	data, err := yaml.Marshal(values)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), data, 0o644))
}

func withWorkDir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(old)
		viper.Reset()
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	withWorkDir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8460", cfg.Port)
	assert.Equal(t, "homestead", cfg.DBName)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "homestead-photos", cfg.StorageBucket)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	writeConfigFile(t, dir, map[string]any{
		"PORT":           "9000",
		"DB_NAME":        "homestead_test",
		"STORAGE_BUCKET": "test-photos",
	})
	withWorkDir(t, dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "homestead_test", cfg.DBName)
	assert.Equal(t, "test-photos", cfg.StorageBucket)
}

func TestValidate_Production(t *testing.T) {
	t.Run("rejects default JWT secret", func(t *testing.T) {
		cfg := &Config{
			Port:             "8460",
			Env:              "production",
			JWTSecret:        "your-secret-key-change-in-production",
			DBPassword:       "s3cure-pass",
			StorageSecretKey: "s3cure-storage",
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects short JWT secret", func(t *testing.T) {
		cfg := &Config{
			Port:             "8460",
			Env:              "production",
			JWTSecret:        "short",
			DBPassword:       "s3cure-pass",
			StorageSecretKey: "s3cure-storage",
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects default storage secret", func(t *testing.T) {
		cfg := &Config{
			Port:             "8460",
			Env:              "production",
			JWTSecret:        "0123456789abcdef0123456789abcdef",
			DBPassword:       "s3cure-pass",
			StorageSecretKey: "minioadmin",
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("accepts strong settings", func(t *testing.T) {
		cfg := &Config{
			Port:             "8460",
			Env:              "production",
			JWTSecret:        "0123456789abcdef0123456789abcdef",
			DBPassword:       "s3cure-pass",
			StorageSecretKey: "s3cure-storage",
			DBSSLMode:        "require",
		}
		assert.NoError(t, cfg.Validate())
	})
}

func TestValidate_RequiredFields(t *testing.T) {
	assert.Error(t, (&Config{JWTSecret: "x"}).Validate(), "missing port")
	assert.Error(t, (&Config{Port: "8460"}).Validate(), "missing JWT secret")
}
