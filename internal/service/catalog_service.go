package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/util"
)

// CatalogStore is the slice of the store the catalog service needs.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductInput carries the parsed fields of a create/update request.
// Image is nil when no new image was uploaded.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Active      bool
	Image       *string
}

// CatalogService handles product catalog CRUD.
type CatalogService struct {
	store  CatalogStore
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ListProducts returns all products, newest first.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

// GetProduct returns a product by id, or ErrNotFound.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return product, nil
}

// CreateProduct creates a product from parsed input.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		Active:      input.Active,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", zap.Int64("product_id", product.ID))
	return product, nil
}

// UpdateProduct updates a product. When input.Image is nil the stored
// image is kept; otherwise the previous image path is returned so the
// caller can remove the file.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*models.Product, *string, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var replacedImage *string
	image := existing.Image
	if input.Image != nil {
		replacedImage = existing.Image
		image = input.Image
	}

	product := &models.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       image,
		Active:      input.Active,
		CreatedAt:   existing.CreatedAt,
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, replacedImage, nil
}

// DeleteProduct deletes a product and returns the image path of the
// deleted row, if any, so the caller can remove the file.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) (*string, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return existing.Image, nil
}
