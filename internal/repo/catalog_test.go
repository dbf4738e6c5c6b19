package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo/repotest"
)

func TestListItems_Paginates(t *testing.T) {
	r := repotest.NewRepo(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		repotest.SeedItem(t, r, fmt.Sprintf("item-%02d", i), "1.00")
	}

	total, page, err := r.ListItems(ctx, 10, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	assert.Len(t, page, 2)
}

func TestGetItemBySlug(t *testing.T) {
	r := repotest.NewRepo(t)
	ctx := context.Background()
	seeded := repotest.SeedItem(t, r, "blue-shirt", "20.00")

	item, err := r.GetItemBySlug(ctx, "blue-shirt")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, item.ID)
	assert.Equal(t, "20.00", item.Price.StringFixed(2))

	_, err = r.GetItemBySlug(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSearchItems_Fallback(t *testing.T) {
	r := repotest.NewRepo(t)
	ctx := context.Background()
	repotest.SeedItem(t, r, "blue-shirt", "20.00")
	repotest.SeedItem(t, r, "red-hat", "5.00")

	total, items, err := r.SearchItems(ctx, "SHIRT", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "blue-shirt", items[0].Slug)
}
