package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo/repotest"
)

func TestCreateAddress_DefaultSwitching(t *testing.T) {
	r := repotest.NewRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	first := repotest.SeedAddress(t, r, userID, models.AddressShipping, true)
	second := repotest.SeedAddress(t, r, userID, models.AddressShipping, true)

	def, err := r.DefaultAddress(ctx, userID, models.AddressShipping)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)
	assert.True(t, def.Default)

	old, err := r.GetAddress(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, old.Default)
	assert.Nil(t, old.DefaultKey)
}

func TestDefaultAddress_PerType(t *testing.T) {
	r := repotest.NewRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	repotest.SeedAddress(t, r, userID, models.AddressShipping, true)
	repotest.SeedAddress(t, r, userID, models.AddressBilling, false)

	_, err := r.DefaultAddress(ctx, userID, models.AddressBilling)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = r.DefaultAddress(ctx, uuid.New(), models.AddressShipping)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
