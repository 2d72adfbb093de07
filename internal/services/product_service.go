package services

import (
	"context"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/rs/zerolog"
)

// EventPublisher delivers product change events. *rabbitmq.Client implements it.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	logger    zerolog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil to disable events.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, logger zerolog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("service", "product").Logger(),
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CountProducts returns the number of stored products.
func (s *ProductService) CountProducts(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// CreateProduct stores a new product and returns the stored row.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	product := input.ToModel()
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, models.NewProductEvent(models.ProductCreated, product.ID, product))
	return product, nil
}

// UpdateProduct overwrites all mutable fields of the product with the given ID.
func (s *ProductService) UpdateProduct(ctx context.Context, id int, input models.ProductInput) (*models.Product, error) {
	product := input.ToModel()
	product.ID = id
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, models.NewProductEvent(models.ProductUpdated, product.ID, product))
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, models.NewProductEvent(models.ProductDeleted, id, nil))
	return nil
}

// publish never fails the request; the change is already committed.
func (s *ProductService) publish(ctx context.Context, event models.ProductEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(ctx, event); err != nil {
		s.logger.Warn().Err(err).
			Str("event_type", event.Type).
			Int("product_id", event.ProductID).
			Msg("failed to publish product event")
		return
	}
	s.logger.Debug().
		Str("event_id", event.EventID).
		Str("event_type", event.Type).
		Int("product_id", event.ProductID).
		Msg("product event published")
}
