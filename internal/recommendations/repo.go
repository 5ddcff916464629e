package recommendations

import (
	"context"

	"gorm.io/gorm"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// Repository stores interaction signals.
type Repository interface {
	RecordInteraction(ctx context.Context, interaction *models.ProductInteraction) error
}

// NewRepository builds an interaction repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RecordInteraction(ctx context.Context, interaction *models.ProductInteraction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}
