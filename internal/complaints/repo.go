package complaints

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// Repository is the persistence surface for complaints.
type Repository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]models.Complaint, error)
	FindAll(ctx context.Context, status string) ([]models.Complaint, error)
	Update(ctx context.Context, complaint *models.Complaint) error
}

// NewRepository builds a complaint repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID) ([]models.Complaint, error) {
	var rows []models.Complaint
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindAll(ctx context.Context, status string) ([]models.Complaint, error) {
	q := r.db.WithContext(ctx).Model(&models.Complaint{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.Complaint
	err := q.Order("created_at DESC, id DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Save(complaint).Error
}
