package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) DefaultAddress(ctx context.Context, userID uuid.UUID, t models.AddressType) (*models.Address, error) {
	var addr models.Address
	if err := r.DB.WithContext(ctx).
		Where("default_key = ?", models.DefaultKeyFor(userID, t)).
		First(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *GormRepo) GetAddress(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var addr models.Address
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

// CreateAddress stores addr. When makeDefault is set the user's previous
// default of the same type is cleared first; call it inside WithTx so both
// statements commit together.
func (r *GormRepo) CreateAddress(ctx context.Context, addr *models.Address, makeDefault bool) error {
	db := r.DB.WithContext(ctx)

	addr.Default = false
	addr.DefaultKey = nil
	if makeDefault {
		key := models.DefaultKeyFor(addr.UserID, addr.AddressType)
		if err := db.Model(&models.Address{}).
			Where("default_key = ?", key).
			Updates(map[string]any{"is_default": false, "default_key": gorm.Expr("NULL")}).Error; err != nil {
			return err
		}
		addr.Default = true
		addr.DefaultKey = &key
	}

	return db.Create(addr).Error
}
