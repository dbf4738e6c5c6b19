// Package repotest opens throwaway sqlite databases for repository and
// service tests.
package repotest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// NewRepo returns a migrated repo backed by a sqlite file in t.TempDir().
// The pool is limited to one connection so transactions serialise the way
// row locks do on postgres.
func NewRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "storefront.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func SeedItem(t *testing.T, r *repo.GormRepo, slug, price string) *models.Item {
	t.Helper()

	item := &models.Item{
		Slug:        slug,
		Title:       slug,
		Category:    "S",
		Label:       "P",
		Description: "test item " + slug,
		Price:       decimal.RequireFromString(price),
	}
	require.NoError(t, r.CreateItem(context.Background(), item))
	return item
}

func SeedCoupon(t *testing.T, r *repo.GormRepo, code, amount string) *models.Coupon {
	t.Helper()

	coupon := &models.Coupon{Code: code, Amount: decimal.RequireFromString(amount)}
	require.NoError(t, r.CreateCoupon(context.Background(), coupon))
	return coupon
}

func SeedAddress(t *testing.T, r *repo.GormRepo, userID uuid.UUID, typ models.AddressType, makeDefault bool) *models.Address {
	t.Helper()

	addr := &models.Address{
		UserID:        userID,
		StreetAddress: "1 Main St",
		Country:       "US",
		Zip:           "10001",
		AddressType:   typ,
	}
	require.NoError(t, r.WithTx(context.Background(), func(tx *repo.GormRepo) error {
		return tx.CreateAddress(context.Background(), addr, makeDefault)
	}))
	return addr
}
