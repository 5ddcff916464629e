package recommendations

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/config"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
)

type stubInteractionRepo struct {
	recorded []models.ProductInteraction
}

func (s *stubInteractionRepo) RecordInteraction(_ context.Context, interaction *models.ProductInteraction) error {
	s.recorded = append(s.recorded, *interaction)
	return nil
}

type stubRecommender struct {
	ids   []uuid.UUID
	err   error
	calls int
}

func (s *stubRecommender) ForUser(context.Context, uuid.UUID, int) ([]uuid.UUID, error) {
	s.calls++
	return s.ids, s.err
}

type stubCatalog struct {
	byID   map[uuid.UUID]models.Product
	recent []models.Product
}

func (s *stubCatalog) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if product, ok := s.byID[id]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

func (s *stubCatalog) FindRecent(context.Context, int) ([]models.Product, error) {
	return s.recent, nil
}

func catalogProduct(title string) models.Product {
	return models.Product{ID: uuid.New(), Title: title, Category: "grocery"}
}

func TestGetPreservesRecommenderOrder(t *testing.T) {
	first := catalogProduct("Cheese")
	second := catalogProduct("Wine")
	catalog := &stubCatalog{byID: map[uuid.UUID]models.Product{first.ID: first, second.ID: second}}
	rec := &stubRecommender{ids: []uuid.UUID{second.ID, first.ID}}

	svc, err := NewService(&stubInteractionRepo{}, rec, catalog, config.RecommendationsConfig{Limit: 10}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dtos, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(dtos) != 2 || dtos[0].Title != "Wine" || dtos[1].Title != "Cheese" {
		t.Fatalf("unexpected order %+v", dtos)
	}
}

func TestGetFallsBackWhenRecommenderFails(t *testing.T) {
	recent := catalogProduct("Fresh bread")
	catalog := &stubCatalog{recent: []models.Product{recent}}
	rec := &stubRecommender{err: pkgerrors.New(pkgerrors.CodeDependency, "service down")}

	svc, err := NewService(&stubInteractionRepo{}, rec, catalog, config.RecommendationsConfig{Limit: 10}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dtos, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("dependency failure must not surface: %v", err)
	}
	if len(dtos) != 1 || dtos[0].Title != "Fresh bread" {
		t.Fatalf("expected recent fallback, got %+v", dtos)
	}
	if rec.calls != 1 {
		t.Fatalf("expected 1 recommender call, got %d", rec.calls)
	}
}

func TestGetFallsBackWithoutRecommender(t *testing.T) {
	recent := catalogProduct("Apples")
	catalog := &stubCatalog{recent: []models.Product{recent}}

	svc, err := NewService(&stubInteractionRepo{}, nil, catalog, config.RecommendationsConfig{Limit: 10}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dtos, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(dtos) != 1 || dtos[0].Title != "Apples" {
		t.Fatalf("expected recent fallback, got %+v", dtos)
	}
}

func TestGetSkipsCollectedAndMissingProducts(t *testing.T) {
	kept := catalogProduct("Olives")
	collected := catalogProduct("Sold out")
	collected.IsCollected = true
	catalog := &stubCatalog{byID: map[uuid.UUID]models.Product{kept.ID: kept, collected.ID: collected}}
	rec := &stubRecommender{ids: []uuid.UUID{uuid.New(), collected.ID, kept.ID}}

	svc, err := NewService(&stubInteractionRepo{}, rec, catalog, config.RecommendationsConfig{Limit: 10}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dtos, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(dtos) != 1 || dtos[0].Title != "Olives" {
		t.Fatalf("unexpected results %+v", dtos)
	}
}

func TestRecordInteraction(t *testing.T) {
	repo := &stubInteractionRepo{}
	svc, err := NewService(repo, nil, &stubCatalog{}, config.RecommendationsConfig{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	userID := uuid.New()
	productID := uuid.New()
	if err := svc.RecordInteraction(context.Background(), userID, RecordInteractionInput{
		ProductID: productID,
		Type:      "view",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	if len(repo.recorded) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(repo.recorded))
	}
	got := repo.recorded[0]
	if got.UserID != userID || got.ProductID != productID || got.InteractionType != enums.InteractionTypeView {
		t.Fatalf("unexpected interaction %+v", got)
	}
}

func TestRecordInteractionRejectsUnknownType(t *testing.T) {
	svc, err := NewService(&stubInteractionRepo{}, nil, &stubCatalog{}, config.RecommendationsConfig{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.RecordInteraction(context.Background(), uuid.New(), RecordInteractionInput{
		ProductID: uuid.New(),
		Type:      "hover",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
