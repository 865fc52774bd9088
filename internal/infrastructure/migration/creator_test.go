package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add vendor mappings", "add_vendor_mappings"},
		{"Add-Vendor-Mappings", "add_vendor_mappings"},
		{"ADD_VENDOR_MAPPINGS", "add_vendor_mappings"},
		{"add__vendor__mappings", "add_vendor_mappings"},
		{"Add Column 123", "add_column_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	tmpDir := t.TempDir()

	mf, err := CreateMigration(tmpDir, "add vendor mappings", "vendor part codes per product")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// First migration in an empty directory gets version 000001
	assert.Equal(t, "000001", mf.Version)
	assert.True(t, strings.HasSuffix(mf.UpPath, "000001_add_vendor_mappings.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "000001_add_vendor_mappings.down.sql"))

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add vendor mappings")
	assert.Contains(t, string(upContent), "vendor part codes per product")

	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)
}

func TestCreateMigration_ContinuesNumbering(t *testing.T) {
	tmpDir := t.TempDir()

	for _, f := range []string{
		"000001_create_suppliers.up.sql",
		"000001_create_suppliers.down.sql",
		"000004_create_purchase_orders.up.sql",
		"000004_create_purchase_orders.down.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, f), []byte("-- test"), 0644))
	}

	mf, err := CreateMigration(tmpDir, "add lead time", "")
	require.NoError(t, err)

	// Picks up after the highest existing version, gaps included
	assert.Equal(t, "000005", mf.Version)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(nestedPath, "initial schema", "")
	require.NoError(t, err)
	require.NotNil(t, mf)

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		"000001_create_suppliers.up.sql",
		"000001_create_suppliers.down.sql",
		"000002_create_products.up.sql",
		"000002_create_products.down.sql",
		"000003_create_sales_orders.up.sql",
		"000003_create_sales_orders.down.sql",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, f), []byte("-- test"), 0644))
	}

	migrations, err := ListMigrations(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_create_suppliers",
		"000002_create_products",
		"000003_create_sales_orders",
	}, migrations)
}

func TestListMigrations_EmptyDirectory(t *testing.T) {
	migrations, err := ListMigrations(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	migrations, err := ListMigrations("/nonexistent/path/to/migrations")
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_IgnoresNonMigrationFiles(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		"000001_create_suppliers.up.sql",
		"000001_create_suppliers.down.sql",
		"README.md",
		".gitkeep",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, f), []byte("test"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "archive.up.sql"), 0755))

	migrations, err := ListMigrations(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_suppliers"}, migrations)
}
