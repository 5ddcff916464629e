package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/localbasket/localbasket-backend/internal/cart"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/logger"
)

const orderCreatedEvent = "order.created"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventPublisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, event any) error
}

// Service places and tracks orders.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error)
}

type service struct {
	tx        txRunner
	repo      Repository
	cartRepo  cart.Repository
	publisher eventPublisher
	logg      *logger.Logger
}

// NewService builds an order service. The publisher may be nil when event
// publishing is not configured.
func NewService(tx txRunner, repo Repository, cartRepo cart.Repository, publisher eventPublisher, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &service{tx: tx, repo: repo, cartRepo: cartRepo, publisher: publisher, logg: logg}, nil
}

// PlaceOrder converts the user's cart into an order inside one transaction:
// stock is reserved line by line, the cart is cleared, and the product
// snapshot (title, unit price) is captured so later listing edits do not
// rewrite order history.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error) {
	var placed *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		items, err := cartRepo.FindByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		repo := s.repo.WithTx(tx)
		order := &models.Order{
			ID:     uuid.New(),
			UserID: userID,
			Status: enums.OrderStatusPending,
			Total:  decimal.Zero,
		}

		for i := range items {
			item := &items[i]
			product := item.Product
			if product == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "cart references a removed product")
			}
			if product.IsCollected {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s is no longer available", product.Title))
			}

			reserved, err := repo.DecrementStock(ctx, product.ID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve stock")
			}
			if !reserved {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %s", product.Title))
			}

			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			order.Items = append(order.Items, models.OrderLineItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Title:     product.Title,
				UnitPrice: product.Price,
				Quantity:  item.Quantity,
			})
			order.Total = order.Total.Add(lineTotal)
		}

		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		if err := cartRepo.Clear(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id", placed.ID.String()), "orders.placed")
	}
	s.publishCreated(ctx, placed)

	dto := NewOrderDTO(placed)
	return &dto, nil
}

// publishCreated emits order.created best-effort; the order stands even when
// the event bus is down.
func (s *service) publishCreated(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		ItemCount: len(order.Items),
		CreatedAt: order.CreatedAt,
	}
	if err := s.publisher.PublishOrderEvent(ctx, orderCreatedEvent, event); err != nil && s.logg != nil {
		s.logg.Error(ctx, "orders.publish_created.failed", err)
	}
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, NewOrderDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	if _, err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	order.Status = next

	if s.logg != nil {
		fields := s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID.String(),
			"status":   next.String(),
		})
		s.logg.Info(fields, "orders.status.updated")
	}
	dto := NewOrderDTO(order)
	return &dto, nil
}
