package recommendations

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/internal/products"
	"github.com/localbasket/localbasket-backend/pkg/config"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/logger"
)

const defaultLimit = 10

type recommender interface {
	ForUser(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)
}

type productCatalog interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	FindRecent(ctx context.Context, limit int) ([]models.Product, error)
}

// RecordInteractionInput registers one behavioral signal.
type RecordInteractionInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Type      string    `json:"type" validate:"required"`
}

// Service serves personalized product lists and records the signals that
// feed them.
type Service interface {
	RecordInteraction(ctx context.Context, userID uuid.UUID, input RecordInteractionInput) error
	Get(ctx context.Context, userID uuid.UUID) ([]products.ProductDTO, error)
}

type service struct {
	repo        Repository
	recommender recommender
	catalog     productCatalog
	limit       int
	logg        *logger.Logger
}

// NewService builds the recommendation service. The recommender may be nil;
// every request then serves the recent-products fallback.
func NewService(repo Repository, rec recommender, catalog productCatalog, cfg config.RecommendationsConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("interaction repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return &service{repo: repo, recommender: rec, catalog: catalog, limit: limit, logg: logg}, nil
}

func (s *service) RecordInteraction(ctx context.Context, userID uuid.UUID, input RecordInteractionInput) error {
	interactionType, err := enums.ParseInteractionType(input.Type)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	interaction := &models.ProductInteraction{
		UserID:          userID,
		ProductID:       input.ProductID,
		InteractionType: interactionType,
	}
	if err := s.repo.RecordInteraction(ctx, interaction); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record interaction")
	}
	return nil
}

// Get returns ranked products for the user. A failing or unconfigured
// recommendation service degrades to the most recent listings; the
// dependency error is logged, never surfaced.
func (s *service) Get(ctx context.Context, userID uuid.UUID) ([]products.ProductDTO, error) {
	if s.recommender != nil {
		ids, err := s.recommender.ForUser(ctx, userID, s.limit)
		if err == nil && len(ids) > 0 {
			ranked, err := s.rankedProducts(ctx, ids)
			if err != nil {
				return nil, err
			}
			if len(ranked) > 0 {
				return ranked, nil
			}
		} else if err != nil && s.logg != nil {
			s.logg.Error(ctx, "recommendations.fetch.failed", err)
		}
	}
	return s.recentFallback(ctx)
}

// rankedProducts loads the recommended listings and restores the
// recommender's ordering, dropping IDs that no longer resolve.
func (s *service) rankedProducts(ctx context.Context, ids []uuid.UUID) ([]products.ProductDTO, error) {
	rows, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recommended products")
	}

	byID := make(map[uuid.UUID]*models.Product, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	dtos := make([]products.ProductDTO, 0, len(ids))
	for _, id := range ids {
		product, ok := byID[id]
		if !ok || product.IsCollected {
			continue
		}
		dtos = append(dtos, products.NewProductDTO(product))
	}
	return dtos, nil
}

func (s *service) recentFallback(ctx context.Context) ([]products.ProductDTO, error) {
	rows, err := s.catalog.FindRecent(ctx, s.limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent products")
	}
	dtos := make([]products.ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, products.NewProductDTO(&rows[i]))
	}
	return dtos, nil
}
