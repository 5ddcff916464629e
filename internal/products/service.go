package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/enums"
	pkgerrors "github.com/localbasket/localbasket-backend/pkg/errors"
	"github.com/localbasket/localbasket-backend/pkg/geo"
	"github.com/localbasket/localbasket-backend/pkg/logger"
	"github.com/localbasket/localbasket-backend/pkg/pagination"
)

// Service defines listing operations for both the public catalog and the
// back office.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	MarkCollected(ctx context.Context, id uuid.UUID, collected bool) error
	BulkImport(ctx context.Context, rows []ImportRow) (*ImportResult, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a product service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	product, err := buildProduct(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if input.Image != nil {
		product.Image = input.Image
	}
	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Tags != nil {
		product.Tags = append([]string{}, (*input.Tags)...)
	}
	if input.ExpirationDate != nil {
		product.ExpirationDate = input.ExpirationDate
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.Unit != nil {
		unit, err := enums.ParseProductUnit(*input.Unit)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
		}
		product.Unit = unit
	}
	if input.Price != nil {
		price, err := parsePrice(*input.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}
	if input.StoreLocation != nil {
		product.StoreLocation = *input.StoreLocation
	}
	if input.Coordinates != nil {
		if len(*input.Coordinates) == 0 {
			product.ClearStorePoint()
		} else {
			point, err := geo.ParseStorage(*input.Coordinates)
			if err != nil {
				return nil, err
			}
			product.SetStorePoint(point)
		}
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Pagination.Cursor != "" && input.Sort != "" && input.Sort != SortNewest {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cursor pagination requires the newest sort")
	}

	rows, err := s.repo.List(ctx, input)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	limit := input.Pagination.Normalized()
	result := &ListResult{Items: make([]ProductDTO, 0, len(rows))}
	for i := range rows {
		if i >= limit {
			break
		}
		result.Items = append(result.Items, NewProductDTO(&rows[i]))
	}
	if len(rows) > limit && (input.Sort == "" || input.Sort == SortNewest) {
		last := rows[limit-1]
		result.NextCursor = pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		}.Encode()
	}
	return result, nil
}

func (s *service) MarkCollected(ctx context.Context, id uuid.UUID, collected bool) error {
	updated, err := s.repo.SetCollected(ctx, id, collected)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) BulkImport(ctx context.Context, rows []ImportRow) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import requires at least one row")
	}

	result := &ImportResult{}
	batch := make([]*models.Product, 0, len(rows))
	for i, row := range rows {
		product, err := buildProductFromImport(row)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: i, Message: err.Error()})
			continue
		}
		batch = append(batch, product)
	}

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "import products")
	}
	result.Imported = len(batch)

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"imported": result.Imported,
			"failed":   result.Failed,
		})
		s.logg.Info(ctx, "products.import.complete")
	}
	return result, nil
}

func buildProduct(input CreateProductInput) (*models.Product, error) {
	unit, err := enums.ParseProductUnit(input.Unit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
	}
	price, err := parsePrice(input.Price)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Image:          input.Image,
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		Brand:          input.Brand,
		Tags:           append([]string{}, input.Tags...),
		ExpirationDate: input.ExpirationDate,
		Quantity:       input.Quantity,
		Unit:           unit,
		Price:          price,
		StoreLocation:  input.StoreLocation,
	}

	if len(input.Coordinates) > 0 {
		point, err := geo.ParseStorage(input.Coordinates)
		if err != nil {
			return nil, err
		}
		product.SetStorePoint(point)
	}
	return product, nil
}

func buildProductFromImport(row ImportRow) (*models.Product, error) {
	if (row.Longitude == nil) != (row.Latitude == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "row supplies only one of longitude/latitude")
	}

	input := CreateProductInput{
		Image:          row.Image,
		Title:          row.Title,
		Description:    row.Description,
		Category:       row.Category,
		Brand:          row.Brand,
		Tags:           row.Tags,
		ExpirationDate: row.ExpirationDate,
		Quantity:       row.Quantity,
		Unit:           row.Unit,
		Price:          row.Price,
		StoreLocation:  row.StoreLocation,
	}
	if row.Longitude != nil && row.Latitude != nil {
		input.Coordinates = []float64{*row.Longitude, *row.Latitude}
	}
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	return buildProduct(input)
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return price, nil
}
