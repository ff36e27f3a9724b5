package migration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/affiliate/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add payout index", "add_payout_index"},
		{"Add-Payout-Index", "add_payout_index"},
		{"ADD__PAYOUT__INDEX", "add_payout_index"},
		{"  spaces  ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"café", "caf"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 6, 10, 30, 0, 0, time.UTC)

	mf, err := CreateMigration(dir, "add payout index", "Index payouts by method", now)
	require.NoError(t, err)

	assert.Equal(t, "20240306103000", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20240306103000_add_payout_index.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "20240306103000_add_payout_index.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Index payouts by method")
	assert.Contains(t, string(up), "BEGIN;")
	assert.Contains(t, string(up), "COMMIT;")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")

	t.Run("same version twice fails", func(t *testing.T) {
		_, err := CreateMigration(dir, "add payout index", "", now)
		assert.Error(t, err)
	})

	t.Run("unusable name", func(t *testing.T) {
		_, err := CreateMigration(dir, "!!!", "", now)
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("sorted pairs", func(t *testing.T) {
		dir := t.TempDir()
		_, err := CreateMigration(dir, "second", "", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = CreateMigration(dir, "first", "", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"20240301000000_first", "20240302000000_second"}, names)
	})

	t.Run("missing down file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "20240301000000_orphan.up.sql"), []byte("SELECT 1;"), 0o644))

		names, err := ListMigrations(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "20240301000000_orphan")
		assert.Equal(t, []string{"20240301000000_orphan"}, names)
	})

	t.Run("missing directory", func(t *testing.T) {
		names, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	up, err := migrations.FS.ReadFile("20240301000000_init_affiliate_schema.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"partner_profiles", "products", "referrals", "referral_timelines",
		"earnings", "payouts", "payout_referrals", "payout_timelines", "payout_settings"} {
		assert.Contains(t, string(up), "CREATE TABLE "+table+" (")
	}
	assert.Contains(t, string(up), "DEFERRABLE INITIALLY DEFERRED")

	_, err = migrations.FS.ReadFile("20240301000000_init_affiliate_schema.down.sql")
	assert.NoError(t, err)
}
