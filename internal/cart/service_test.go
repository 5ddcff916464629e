package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
)

// stubCartRepo keeps lines in memory and attaches products the way the
// real repository's Preload does.
type stubCartRepo struct {
	items    map[uuid.UUID]*models.CartItem
	products map[uuid.UUID]*models.Product
	upserts  int
}

func newStubCartRepo(products ...*models.Product) *stubCartRepo {
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &stubCartRepo{items: map[uuid.UUID]*models.CartItem{}, products: byID}
}

func (s *stubCartRepo) WithTx(*gorm.DB) Repository { return s }

func (s *stubCartRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products[id], nil
}

func (s *stubCartRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range s.items {
		if item.UserID != userID {
			continue
		}
		copied := *item
		copied.Product = s.products[item.ProductID]
		out = append(out, copied)
	}
	return out, nil
}

func (s *stubCartRepo) FindItem(_ context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	item, ok := s.items[itemID]
	if !ok || item.UserID != userID {
		return nil, nil
	}
	copied := *item
	copied.Product = s.products[item.ProductID]
	return &copied, nil
}

func (s *stubCartRepo) Upsert(_ context.Context, item *models.CartItem) error {
	s.upserts++
	for _, existing := range s.items {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			existing.Quantity = item.Quantity
			return nil
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *stubCartRepo) UpdateQuantity(_ context.Context, userID, itemID uuid.UUID, quantity int) (bool, error) {
	item, ok := s.items[itemID]
	if !ok || item.UserID != userID {
		return false, nil
	}
	item.Quantity = quantity
	return true, nil
}

func (s *stubCartRepo) Remove(_ context.Context, userID, itemID uuid.UUID) (bool, error) {
	item, ok := s.items[itemID]
	if !ok || item.UserID != userID {
		return false, nil
	}
	delete(s.items, itemID)
	return true, nil
}

func (s *stubCartRepo) Clear(_ context.Context, userID uuid.UUID) error {
	for id, item := range s.items {
		if item.UserID == userID {
			delete(s.items, id)
		}
	}
	return nil
}

func testProduct(title string, price string, stock int) *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Title:    title,
		Category: "grocery",
		Quantity: stock,
		Price:    decimal.RequireFromString(price),
	}
}

func newTestService(t *testing.T, repo *stubCartRepo) Service {
	t.Helper()
	svc, err := NewService(repo, repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestAddItemCapsQuantityByStock(t *testing.T) {
	product := testProduct("Tomatoes", "3.50", 4)
	repo := newStubCartRepo(product)
	svc := newTestService(t, repo)

	cart, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 10})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity capped at 4, got %+v", cart.Items)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc := newTestService(t, newStubCartRepo())

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: uuid.New(), Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAddItemCollectedProduct(t *testing.T) {
	product := testProduct("Bread", "2.00", 5)
	product.IsCollected = true
	svc := newTestService(t, newStubCartRepo(product))

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestAddItemOutOfStock(t *testing.T) {
	product := testProduct("Eggs", "4.00", 0)
	svc := newTestService(t, newStubCartRepo(product))

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestAddItemReplacesExistingLine(t *testing.T) {
	product := testProduct("Milk", "1.20", 20)
	repo := newStubCartRepo(product)
	svc := newTestService(t, repo)

	userID := uuid.New()
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 5})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", cart.Items[0].Quantity)
	}
	if repo.upserts != 2 {
		t.Fatalf("expected 2 upserts, got %d", repo.upserts)
	}
}

func TestCartTotalsSumLines(t *testing.T) {
	milk := testProduct("Milk", "1.20", 20)
	bread := testProduct("Bread", "2.50", 10)
	svc := newTestService(t, newStubCartRepo(milk, bread))

	userID := uuid.New()
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: milk.ID, Quantity: 3}); err != nil {
		t.Fatalf("add milk: %v", err)
	}
	if _, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: bread.ID, Quantity: 2}); err != nil {
		t.Fatalf("add bread: %v", err)
	}

	cart, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := decimal.RequireFromString("8.60"); !cart.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, cart.Total)
	}
}

func TestUpdateItemRechecksStock(t *testing.T) {
	product := testProduct("Milk", "1.20", 3)
	repo := newStubCartRepo(product)
	svc := newTestService(t, repo)

	userID := uuid.New()
	ctx := context.Background()
	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	updated, err := svc.UpdateItem(ctx, userID, cart.Items[0].ID, UpdateItemInput{Quantity: 9})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity capped at 3, got %d", updated.Items[0].Quantity)
	}
}

func TestUpdateItemMissingLine(t *testing.T) {
	svc := newTestService(t, newStubCartRepo())

	_, err := svc.UpdateItem(context.Background(), uuid.New(), uuid.New(), UpdateItemInput{Quantity: 2})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestRemoveItemMissingLine(t *testing.T) {
	svc := newTestService(t, newStubCartRepo())

	_, err := svc.RemoveItem(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
