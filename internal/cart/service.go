package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
)

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service defines cart operations for the authenticated user.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo        Repository
	productRepo productFinder
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, productRepo productFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo, productRepo: productRepo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	items, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	dto := NewCartDTO(items)
	return &dto, nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.IsCollected {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is no longer available")
	}

	quantity, err := capQuantity(input.Quantity, product.Quantity)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  quantity,
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart item")
	}
	return s.List(ctx, userID)
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*CartDTO, error) {
	item, err := s.repo.FindItem(ctx, userID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	stock := 0
	if item.Product != nil {
		stock = item.Product.Quantity
	}
	quantity, err := capQuantity(input.Quantity, stock)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.UpdateQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return s.List(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	removed, err := s.repo.Remove(ctx, userID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.List(ctx, userID)
}

// capQuantity bounds the requested quantity by the available stock.
func capQuantity(requested, stock int) (int, error) {
	if requested <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if stock <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock")
	}
	if requested > stock {
		return stock, nil
	}
	return requested, nil
}
