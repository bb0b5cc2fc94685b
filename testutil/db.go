// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blog-cms/config"
	"blog-cms/logging"
	"blog-cms/models"
)

// NewDB opens a migrated sqlite database inside t.TempDir().
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.InitDB(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, logging.Discard())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with a placeholder hash.
func CreateUser(t *testing.T, db *gorm.DB, email, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: name, Role: role, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateCategory inserts a category.
func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, db.Create(c).Error)
	return c
}
